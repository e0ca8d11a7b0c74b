package middleware

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/3bube/EduConnect-sub001/internal/utils"
)

// RateLimitMiddleware caps the request rate on the REST surface. One shared
// limiter for the whole process, matching how the upstream proxy sizes us.
func RateLimitMiddleware(requestRate float64, burst int, logger *zap.Logger) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(requestRate), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.Warn("request rate limited",
					zap.String("path", r.URL.Path),
					zap.String("ip", utils.GetIPAddress(r)))
				utils.ErrorResponse(w, http.StatusTooManyRequests, "Server is at max capacity. Try again later!")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
