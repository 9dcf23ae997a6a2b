package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-variants/internal/entity"
)

const (
	writeWait       = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type gameUseCase interface {
	NewGame(ctx context.Context, variant entity.Variant) (entity.Game, error)
	GetGame(ctx context.Context, id string) (entity.Game, error)
	MakeTurn(ctx context.Context, id string, cell int) (entity.Game, error)
	UsePowerUp(ctx context.Context, id string, kind entity.PowerUp) (entity.Game, error)
	Restart(ctx context.Context, id string) (entity.Game, error)
	Leave(ctx context.Context, id string) error
	Subscribe(ctx context.Context, id string) (<-chan entity.Game, func(), error)
}

type handlerFunc func(ctx context.Context, conn *connection, msg *Message) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionGameState] = server.handleGameState
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGamePowerUp] = server.handlePowerUp
	server.handlers[actionGameRestart] = server.handleRestart
	server.handlers[actionGameLeave] = server.handleGameLeave

	return server
}

// Handler serves the websocket endpoint at /ws.
func (that *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		that.upgradeToWebSocket(ctx, w, req)
	})

	return r
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx) //nolint: contextcheck // parent is already canceled
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	ws, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := &connection{ws: ws}
	defer func() {
		conn.detach()
		_ = ws.Close()
	}()

	// hijacked connections outlive the request context
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-connCtx.Done()
		_ = ws.Close()
	}()

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	if err = that.handleMessages(connCtx, conn); err != nil {
		log.Debug("connection closed", "error", err)
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			if err = conn.sendError(actionError, reasonBadRequest, "invalid message"); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err = conn.sendError(message.Action, reasonBadRequest, "unknown action"); err != nil {
				return err
			}
			continue
		}

		if err = handler(ctx, conn, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// connection is one client socket. Writes are serialised because game updates
// are pushed from a separate goroutine.
type connection struct {
	ws *websocket.Conn

	writeMu sync.Mutex

	mu          sync.Mutex
	gameID      string
	unsubscribe func()
}

func (that *connection) send(action string, payload ResponsePayload) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	_ = that.ws.SetWriteDeadline(time.Now().Add(writeWait))

	if err := that.ws.WriteJSON(newMessage(action, payload)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *connection) sendGame(action string, game entity.Game) error {
	view := game.View()
	return that.send(action, ResponsePayload{Game: &view})
}

func (that *connection) sendError(action, reason, message string) error {
	return that.send(action, ResponsePayload{Error: reason, Message: message})
}

func (that *connection) currentGameID() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.gameID
}

// attach makes id the connection's game; the previous subscription is dropped.
func (that *connection) attach(id string, unsubscribe func()) {
	that.mu.Lock()
	prev := that.unsubscribe
	that.gameID = id
	that.unsubscribe = unsubscribe
	that.mu.Unlock()

	if prev != nil {
		prev()
	}
}

func (that *connection) detach() {
	that.attach("", nil)
}
