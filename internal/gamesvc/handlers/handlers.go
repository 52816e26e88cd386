package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/avvvet/memory-services/internal/comm"
	"github.com/avvvet/memory-services/internal/gamesvc/models"
	"github.com/avvvet/memory-services/internal/gamesvc/service"
	"github.com/avvvet/memory-services/internal/theme"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

const (
	defaultResultLimit = 10
	maxResultLimit     = 100
)

// ResultLister reads the results history.
type ResultLister interface {
	Top(ctx context.Context, theme string, limit int) ([]*models.GameResult, error)
}

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	games     *service.GameService
	results   ResultLister
	port      string
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

// NewHandler wires the HTTP API to the game service. results may be nil.
func NewHandler(games *service.GameService, results ResultLister, port string) *Handler {
	return &Handler{games: games, results: results, port: port}
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "game service is running at port " + h.port,
		Code:    http.StatusOK,
	})
}

func (h *Handler) ThemesHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{Message: "themes", Code: http.StatusOK, Data: h.games.Themes()})
}

func (h *Handler) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req comm.NewGameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.CreateResponse(w, Response{Message: "invalid request body", Code: http.StatusBadRequest, Error: err.Error()})
			return
		}
	}

	view, err := h.games.Create(r.Context(), req.Theme)
	if err != nil {
		h.errorResponse(w, "unable to create game", err)
		return
	}
	h.CreateResponse(w, Response{Message: "game created", Code: http.StatusCreated, Data: view})
}

func (h *Handler) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.games.View(chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, "unable to get game", err)
		return
	}
	h.CreateResponse(w, Response{Message: "game", Code: http.StatusOK, Data: view})
}

func (h *Handler) SelectCardHandler(w http.ResponseWriter, r *http.Request) {
	var req comm.SelectCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Message: "invalid request body", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}

	view, err := h.games.Select(r.Context(), chi.URLParam(r, "id"), req.CardId)
	if err != nil {
		h.errorResponse(w, "unable to select card", err)
		return
	}
	h.CreateResponse(w, Response{Message: "card selected", Code: http.StatusOK, Data: view})
}

func (h *Handler) ShuffleHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.games.Shuffle(chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, "unable to shuffle", err)
		return
	}
	h.CreateResponse(w, Response{Message: "cards shuffled", Code: http.StatusOK, Data: view})
}

func (h *Handler) NewGameHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.games.StartNewGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, "unable to start new game", err)
		return
	}
	h.CreateResponse(w, Response{Message: "new game started", Code: http.StatusOK, Data: view})
}

func (h *Handler) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultResultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			h.CreateResponse(w, Response{Message: "invalid limit", Code: http.StatusBadRequest, Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxResultLimit)
	}

	results := []*models.GameResult{}
	if h.results != nil {
		var err error
		results, err = h.results.Top(r.Context(), r.URL.Query().Get("theme"), limit)
		if err != nil {
			log.Errorf("Error [ResultStore.Top]: %s", err)
			h.CreateResponse(w, Response{Message: "unable to list results", Code: http.StatusInternalServerError, Error: "internal error"})
			return
		}
	}
	h.CreateResponse(w, Response{Message: "results", Code: http.StatusOK, Data: results})
}

func (h *Handler) errorResponse(w http.ResponseWriter, msg string, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		code = http.StatusNotFound
	case errors.Is(err, theme.ErrUnknownTheme):
		code = http.StatusBadRequest
	default:
		log.Errorf("%s: %s", msg, err)
	}
	h.CreateResponse(w, Response{Message: msg, Code: code, Error: err.Error()})
}
