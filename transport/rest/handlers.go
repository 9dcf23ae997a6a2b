package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-variants/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-variants/internal/entity"
)

const reasonBadRequest = "bad_request"

type gameUseCase interface {
	NewGame(ctx context.Context, variant entity.Variant) (entity.Game, error)
	GetGame(ctx context.Context, id string) (entity.Game, error)
	MakeTurn(ctx context.Context, id string, cell int) (entity.Game, error)
	UsePowerUp(ctx context.Context, id string, kind entity.PowerUp) (entity.Game, error)
	Restart(ctx context.Context, id string) (entity.Game, error)
	Leave(ctx context.Context, id string) error
}

type GameHandlers interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	MakeTurn(w http.ResponseWriter, r *http.Request)
	UsePowerUp(w http.ResponseWriter, r *http.Request)
	Restart(w http.ResponseWriter, r *http.Request)
	Leave(w http.ResponseWriter, r *http.Request)
}

type gameHandlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
}

func NewGameHandlers(logger *slog.Logger, gameUseCase gameUseCase) GameHandlers {
	return &gameHandlers{
		logger:      logger.With("component", "rest"),
		gameUseCase: gameUseCase,
	}
}

type newGameRequest struct {
	Variant entity.Variant `json:"variant"`
}

type turnRequest struct {
	Cell *int `json:"cell"`
}

type powerUpRequest struct {
	Kind string `json:"kind"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (that *gameHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req newGameRequest
	if !that.decode(w, r, &req) {
		return
	}

	game, err := that.gameUseCase.NewGame(r.Context(), req.Variant)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, game.View())
}

func (that *gameHandlers) Get(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game.View())
}

func (that *gameHandlers) MakeTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if !that.decode(w, r, &req) {
		return
	}

	if req.Cell == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: reasonBadRequest, Message: "cell is required"})
		return
	}

	game, err := that.gameUseCase.MakeTurn(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game.View())
}

func (that *gameHandlers) UsePowerUp(w http.ResponseWriter, r *http.Request) {
	var req powerUpRequest
	if !that.decode(w, r, &req) {
		return
	}

	kind, err := entity.ParsePowerUp(req.Kind)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	game, err := that.gameUseCase.UsePowerUp(r.Context(), chi.URLParam(r, "id"), kind)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game.View())
}

func (that *gameHandlers) Restart(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.Restart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game.View())
}

func (that *gameHandlers) Leave(w http.ResponseWriter, r *http.Request) {
	if err := that.gameUseCase.Leave(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *gameHandlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: reasonBadRequest, Message: "invalid JSON body"})
		return false
	}

	return true
}

// statusCode maps a use case error to the HTTP status sent to the client.
func statusCode(reason string) int {
	switch reason {
	case apperror.ReasonGameFinished, apperror.ReasonCellOccupied,
		apperror.ReasonNotYourTurn, apperror.ReasonPowerUpUnavailable:
		return http.StatusConflict
	case apperror.ReasonInvalidCell, apperror.ReasonUnknownVariant, apperror.ReasonUnknownPowerUp:
		return http.StatusBadRequest
	case apperror.ReasonGameNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (that *gameHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := that.logger.With("method", r.Method, "path", r.URL.Path)

	reason := apperror.Reason(err)
	message := err.Error()

	if reason == apperror.ReasonInternal {
		log.Error("request failed", "error", err)
		message = http.StatusText(http.StatusInternalServerError)
	} else {
		log.Debug("request rejected", "reason", reason, "error", err)
	}

	that.writeJSON(w, statusCode(reason), errorResponse{Error: reason, Message: message})
}

func (that *gameHandlers) writeJSON(w http.ResponseWriter, status int, body any) {
	if err := writeJSON(w, status, body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
