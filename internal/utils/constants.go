package utils

// api layout
var APIPrefix string = "/api/v1"

// websocket query/path names used by clients
var LiveWebSocketPath string = "/live/ws"
