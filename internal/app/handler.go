package app

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cabs-service/internal/rides"
	"cabs-service/internal/sharing"
	"cabs-service/internal/users"
	"cabs-service/internal/views"
	"cabs-service/pkg/jwt"
)

// Handler exposes the app over HTTP.
type Handler struct {
	reg *Registry
	log *slog.Logger
}

// NewHandler wires a handler to the device registry.
func NewHandler(reg *Registry, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{reg: reg, log: log.With("component", "http")}
}

// DeviceRoutes returns the unauthenticated /devices routes.
func (h *Handler) DeviceRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateDevice)
	return r
}

// Routes returns a chi.Router with all app routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(jwt.RequireDevice)

	r.Get("/", h.Get)

	r.Post("/login/phone", h.SetPhone)
	r.Post("/login/otp", h.RequestOTP)
	r.Post("/otp/verify", h.VerifyOTP)
	r.Post("/otp/back", h.BackToLogin)
	r.Post("/emergency", h.SaveContact)

	r.Post("/booking/find", h.FindDriver)
	r.Post("/booking/vehicles/{id}", h.SelectVehicle)
	r.Post("/booking/back", h.BackToInput)
	r.Post("/booking/confirm", h.Confirm)
	r.Post("/booking/end", h.EndRide)

	r.Post("/sharing/toggle", h.ToggleSharing)
	r.Post("/sharing/mode", h.ChooseSharing)
	r.Post("/sharing/cancel", h.CancelSharing)
	r.Post("/sharing/stop", h.StopSharing)

	r.Post("/rides/open", h.OpenRides)
	r.Post("/rides/close", h.CloseRides)
	r.Get("/rides", h.ListRides)

	r.Post("/logout", h.Logout)
	return r
}

// ---- request bodies ----

type phoneRequest struct {
	Mobile string `json:"mobile"`
}

type otpRequest struct {
	Code string `json:"code"`
}

type contactRequest struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

type routeRequest struct {
	Start string `json:"start"`
	Dest  string `json:"dest"`
}

type toggleRequest struct {
	On bool `json:"on"`
}

type modeRequest struct {
	Mode sharing.Mode `json:"mode"`
}

type logoutRequest struct {
	Confirm bool `json:"confirm"`
}

// ---- handlers ----

func (h *Handler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	a, err := h.reg.Create(r.Context())
	if err != nil {
		h.log.Error("create device", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not create device"})
		return
	}
	token, err := jwt.Generate(a.ID())
	if err != nil {
		h.log.Error("sign device token", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not issue token"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"device_id": a.ID(),
		"token":     token,
		"view":      a.View(),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if a, ok := h.app(w, r); ok {
		writeJSON(w, http.StatusOK, a.View())
	}
}

func (h *Handler) SetPhone(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	h.act(w, r, &req, func(a *App) (View, error) { return a.SetPhone(req.Mobile) })
}

func (h *Handler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, nil, func(a *App) (View, error) { return a.RequestOTP(r.Context()) })
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	h.act(w, r, &req, func(a *App) (View, error) { return a.VerifyOTP(r.Context(), req.Code) })
}

func (h *Handler) BackToLogin(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, nil, func(a *App) (View, error) { return a.BackToLogin(r.Context()) })
}

func (h *Handler) SaveContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	h.act(w, r, &req, func(a *App) (View, error) { return a.SaveContact(r.Context(), req.Name, req.Number) })
}

func (h *Handler) FindDriver(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	h.act(w, r, &req, func(a *App) (View, error) { return a.FindDriver(req.Start, req.Dest) })
}

func (h *Handler) SelectVehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.act(w, r, nil, func(a *App) (View, error) { return a.SelectVehicle(id) })
}

func (h *Handler) BackToInput(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, nil, func(a *App) (View, error) { return a.BackToInput() })
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, nil, func(a *App) (View, error) { return a.ConfirmBooking() })
}

func (h *Handler) EndRide(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, nil, func(a *App) (View, error) { return a.EndRide(r.Context()) })
}

func (h *Handler) ToggleSharing(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	h.act(w, r, &req, func(a *App) (View, error) { return a.ToggleSharing(req.On) })
}

func (h *Handler) ChooseSharing(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	h.act(w, r, &req, func(a *App) (View, error) { return a.ChooseSharing(req.Mode) })
}

func (h *Handler) CancelSharing(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, nil, func(a *App) (View, error) { return a.CancelSharing() })
}

func (h *Handler) StopSharing(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, nil, func(a *App) (View, error) { return a.StopSharing() })
}

func (h *Handler) OpenRides(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, nil, func(a *App) (View, error) { return a.OpenRides(r.Context()) })
}

func (h *Handler) CloseRides(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, nil, func(a *App) (View, error) { return a.CloseRides(r.Context()) })
}

func (h *Handler) ListRides(w http.ResponseWriter, r *http.Request) {
	a, ok := h.app(w, r)
	if !ok {
		return
	}
	list, err := a.Rides(r.Context())
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	if list == nil {
		list = []rides.RideRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rides": list})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	h.act(w, r, &req, func(a *App) (View, error) { return a.Logout(r.Context(), req.Confirm) })
}

// ---- helpers ----

// app resolves the caller's device from its token.
func (h *Handler) app(w http.ResponseWriter, r *http.Request) (*App, bool) {
	claims := jwt.GetClaims(r.Context())
	a, err := h.reg.Get(r.Context(), claims.DeviceID)
	if err != nil {
		if errors.Is(err, ErrUnknownDevice) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return nil, false
		}
		h.log.Error("open device", "device_id", claims.DeviceID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "device unavailable"})
		return nil, false
	}
	return a, true
}

// act decodes body into req when req is non-nil, runs fn and writes the
// resulting view. Failed actions still return the unchanged view.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, req any, fn func(*App) (View, error)) {
	if req != nil {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
			return
		}
	}
	a, ok := h.app(w, r)
	if !ok {
		return
	}
	v, err := fn(a)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error("action failed", "device_id", a.ID(), "path", r.URL.Path, "err", err)
		}
		writeJSON(w, status, map[string]any{"error": err.Error(), "view": v})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func statusFor(err error) int {
	var verr *views.ValidationError
	var aerr *users.AuthMismatchError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &aerr):
		return http.StatusUnauthorized
	case errors.Is(err, views.ErrWrongScreen), errors.Is(err, rides.ErrWrongStep):
		return http.StatusConflict
	case errors.Is(err, ErrNotConfirmed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
