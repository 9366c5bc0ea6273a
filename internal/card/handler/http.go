package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/example/ridecard/internal/card/domain"
	"github.com/example/ridecard/internal/card/service"
)

// Guards are per-route middlewares, applied in order.
type Guards struct {
	Query     []func(http.Handler) http.Handler
	Configure []func(http.Handler) http.Handler
}

// HTTP exposes the card host endpoints.
type HTTP struct {
	svc    *service.Service
	guards Guards
}

// NewHTTP constructs a handler.
func NewHTTP(svc *service.Service, guards Guards) *HTTP {
	return &HTTP{svc: svc, guards: guards}
}

// maxConfigureBody caps the configure request body.
const maxConfigureBody = 64 << 10

// Router builds the chi router with the card endpoints and their guards.
// Request-wide middlewares belong to the mounting router.
func (h *HTTP) Router() http.Handler {
	r := chi.NewRouter()
	r.With(h.guards.Query...).Get("/v1/cards/chrome-policy", h.chromePolicy)
	r.With(h.guards.Query...).Get("/v1/cards/assets/{key}", h.asset)
	r.With(h.guards.Configure...).Post("/v1/cards/configure", h.configureCard)
	return r
}

type configureRequest struct {
	Request domain.RequestDescription `json:"request"`
	Context domain.RenderContext      `json:"context"`
	MaxSize domain.Size               `json:"max_size"`
}

func (h *HTTP) configureCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxConfigureBody)
	var payload configureRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, err.Error(), status)
		return
	}
	if payload.Context == "" {
		payload.Context = domain.ContextConfirmation
	}

	presentation, err := h.svc.Present(r.Context(), service.PresentRequest{
		Request: payload.Request,
		Context: payload.Context,
		MaxSize: payload.MaxSize,
	})
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, presentation)
}

func (h *HTTP) chromePolicy(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"suppress_auxiliary_chrome": h.svc.SuppressesAuxiliaryChrome(),
	})
}

func (h *HTTP) asset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.svc.Asset(chi.URLParam(r, "key"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", asset.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(asset.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(asset.Data)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCategoryResolution):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidSize):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConfigureTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
