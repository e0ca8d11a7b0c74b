package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client wraps one live websocket connection. The hub writes outbound
// payloads into send; writePump drains it onto the wire.
type Client struct {
	id      string
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	logger  *zap.Logger

	closeOnce sync.Once
}

// closeSend is safe to call from multiple cleanup paths; only the first call
// closes the channel.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// enqueue hands a payload to the write pump without blocking. Reports whether
// the client's buffer had room.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) sendError(err error) {
	if !c.enqueue(mustMarshal(errorEvent{Event: EventError, Message: err.Error()})) {
		c.logger.Warn("error event dropped, client buffer full", zap.String("connection", c.id))
	}
}

// readPump pumps inbound events from the connection into the router. Runs as
// one goroutine per connection; exiting tears the connection down and resolves
// it back to a roster removal.
func (c *Client) readPump() {
	defer func() {
		c.hub.router.Disconnect(c)
		c.closeSend()
		c.conn.Close()
		c.logger.Debug("read pump stopped", zap.String("connection", c.id))
	}()

	cfg := c.hub.cfg
	c.conn.SetReadLimit(cfg.MaxMessageBytes)
	c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait()))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait()))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", zap.String("connection", c.id), zap.Error(err))
			}
			break
		}

		if !c.limiter.Allow() {
			c.sendError(ErrRateLimited)
			continue
		}

		evt, err := parseInbound(data)
		if err != nil {
			c.sendError(err)
			continue
		}
		if err := c.hub.router.Dispatch(c, evt); err != nil {
			c.sendError(err)
		}
	}
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval())
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.Debug("write pump stopped", zap.String("connection", c.id))
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait()))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			writer, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			writer.Write(payload)
			if err := writer.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait()))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
