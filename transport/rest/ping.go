package rest

import (
	"log/slog"
	"net/http"
)

type PingHandler interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)
}

type pingHandler struct {
	logger *slog.Logger
}

type pingResponse struct {
	Status string `json:"status"`
}

func NewPingHandler(logger *slog.Logger) PingHandler {
	return &pingHandler{logger: logger.With("component", "rest", "method", "ping")}
}

// PingHandler reports that the server is up; it does not touch Redis.
func (that *pingHandler) PingHandler(w http.ResponseWriter, _ *http.Request) {
	if err := writeJSON(w, http.StatusOK, pingResponse{Status: "pong"}); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
