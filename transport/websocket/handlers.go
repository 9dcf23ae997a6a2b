package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-variants/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-variants/internal/entity"
)

func (that *Server) handleNewGame(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleNewGame")

	payload, ok := that.decodePayload(conn, msg)
	if !ok {
		return nil
	}

	game, err := that.gameUseCase.NewGame(ctx, payload.Variant)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	if err = that.follow(ctx, conn, game.ID); err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	log.Info("new game started", "gameID", game.ID, "variant", game.Variant)

	return conn.sendGame(msg.Action, game)
}

// handleGameState attaches the connection to an existing game, e.g. after a reconnect.
func (that *Server) handleGameState(ctx context.Context, conn *connection, msg *Message) error {
	id, ok := that.gameIDFrom(conn, msg)
	if !ok {
		return nil
	}

	game, err := that.gameUseCase.GetGame(ctx, id)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	if id != conn.currentGameID() {
		if err = that.follow(ctx, conn, id); err != nil {
			return that.sendUseCaseError(conn, msg.Action, err)
		}
	}

	return conn.sendGame(msg.Action, game)
}

func (that *Server) handleGameTurn(ctx context.Context, conn *connection, msg *Message) error {
	payload, ok := that.decodePayload(conn, msg)
	if !ok {
		return nil
	}

	if payload.Cell == nil {
		return conn.sendError(msg.Action, reasonBadRequest, "cell is required")
	}

	id, ok := that.resolveGameID(conn, msg.Action, payload)
	if !ok {
		return nil
	}

	game, err := that.gameUseCase.MakeTurn(ctx, id, *payload.Cell)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	return conn.sendGame(msg.Action, game)
}

func (that *Server) handlePowerUp(ctx context.Context, conn *connection, msg *Message) error {
	payload, ok := that.decodePayload(conn, msg)
	if !ok {
		return nil
	}

	kind, err := entity.ParsePowerUp(payload.Kind)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	id, ok := that.resolveGameID(conn, msg.Action, payload)
	if !ok {
		return nil
	}

	game, err := that.gameUseCase.UsePowerUp(ctx, id, kind)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	return conn.sendGame(msg.Action, game)
}

func (that *Server) handleRestart(ctx context.Context, conn *connection, msg *Message) error {
	id, ok := that.gameIDFrom(conn, msg)
	if !ok {
		return nil
	}

	game, err := that.gameUseCase.Restart(ctx, id)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	return conn.sendGame(msg.Action, game)
}

func (that *Server) handleGameLeave(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleGameLeave")

	id, ok := that.gameIDFrom(conn, msg)
	if !ok {
		return nil
	}

	if id == conn.currentGameID() {
		conn.detach()
	}

	if err := that.gameUseCase.Leave(ctx, id); err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	log.Info("player left the game", "gameID", id)

	return conn.send(msg.Action, ResponsePayload{})
}

// follow subscribes the connection to game updates; they are pushed as game:update.
func (that *Server) follow(ctx context.Context, conn *connection, id string) error {
	log := that.logger.With("method", "follow", "gameID", id)

	updates, unsubscribe, err := that.gameUseCase.Subscribe(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	conn.attach(id, unsubscribe)

	go func() {
		for game := range updates {
			if err := conn.sendGame(actionGameUpdate, game); err != nil {
				log.Debug("failed to push game update", "error", err)
				unsubscribe()
				return
			}
		}
	}()

	return nil
}

func (that *Server) decodePayload(conn *connection, msg *Message) (Payload, bool) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return payload, true
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.logger.Warn("failed to unmarshal payload", "action", msg.Action, "error", err)
		if sendErr := conn.sendError(msg.Action, reasonBadRequest, "invalid payload"); sendErr != nil {
			that.logger.Debug("failed to send error", "error", sendErr)
		}
		return payload, false
	}

	return payload, true
}

func (that *Server) gameIDFrom(conn *connection, msg *Message) (string, bool) {
	payload, ok := that.decodePayload(conn, msg)
	if !ok {
		return "", false
	}

	return that.resolveGameID(conn, msg.Action, payload)
}

func (that *Server) resolveGameID(conn *connection, action string, payload Payload) (string, bool) {
	if payload.GameID != "" {
		return payload.GameID, true
	}

	if id := conn.currentGameID(); id != "" {
		return id, true
	}

	if err := conn.sendError(action, reasonNoGame, "no game started on this connection"); err != nil {
		that.logger.Debug("failed to send error", "error", err)
	}

	return "", false
}

func (that *Server) sendUseCaseError(conn *connection, action string, err error) error {
	reason := apperror.Reason(err)
	message := err.Error()

	if reason == apperror.ReasonInternal {
		that.logger.Error("request failed", "action", action, "error", err)
		message = "internal error"
	}

	return conn.sendError(action, reason, message)
}
