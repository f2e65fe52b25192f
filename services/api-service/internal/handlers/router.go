package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Abhishek-Jatav/bookMyCare/libs/auth"
	"github.com/Abhishek-Jatav/bookMyCare/libs/httpx"
	"github.com/Abhishek-Jatav/bookMyCare/libs/runtime"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/model"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type AuthAPI interface {
	Register(ctx context.Context, in service.RegisterInput) (service.AuthResult, error)
	Login(ctx context.Context, email, password string) (service.AuthResult, error)
	Profile(ctx context.Context, caller auth.Identity) (model.PublicUser, error)
}

type AvailabilityAPI interface {
	Authorize(caller auth.Identity) error
	CreateSlot(ctx context.Context, caller auth.Identity, date, timeSlot string) (model.Slot, error)
	GetSlots(ctx context.Context, providerID int64, date string) ([]model.Slot, error)
}

type BookingsAPI interface {
	CreateBooking(ctx context.Context, caller auth.Identity, in service.CreateBookingInput) (model.Booking, error)
	CancelBooking(ctx context.Context, caller auth.Identity, bookingID int64) (model.Booking, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]model.Booking, error)
	ListByProvider(ctx context.Context, caller auth.Identity, providerID int64) ([]model.Booking, error)
}

type ProvidersAPI interface {
	List(ctx context.Context) ([]model.Provider, error)
}

type Deps struct {
	Logger       *slog.Logger
	Verifier     auth.Verifier
	Auth         AuthAPI
	Availability AvailabilityAPI
	Bookings     BookingsAPI
	Providers    ProvidersAPI
	ReadyChecks  []runtime.ReadyCheck
}

type handler struct {
	logger       *slog.Logger
	auth         AuthAPI
	availability AvailabilityAPI
	bookings     BookingsAPI
	providers    ProvidersAPI
}

func NewRouter(d Deps) http.Handler {
	h := &handler{
		logger:       d.Logger,
		auth:         d.Auth,
		availability: d.Availability,
		bookings:     d.Bookings,
		providers:    d.Providers,
	}
	requireAuth := auth.RequireAuth(d.Verifier)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, http.StatusNotFound, httpx.CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, http.StatusMethodNotAllowed, httpx.CodeBadRequest, "method not allowed")
	})

	r.Get("/", h.root)
	r.Get("/healthz", runtime.Healthz)
	r.Get("/readyz", runtime.Readyz(d.ReadyChecks...))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.With(requireAuth).Get("/profile", h.profile)
	})

	r.Route("/availability", func(r chi.Router) {
		r.With(requireAuth).Post("/", h.createSlot)
		r.Get("/{providerId}", h.listSlots)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.With(requireAuth).Post("/", h.createBooking)
		r.With(requireAuth).Patch("/{id}/cancel", h.cancelBooking)
		r.With(requireAuth).Post("/{id}/cancel", h.cancelBooking)
		r.With(requireAuth, auth.RequireRole(string(model.RoleProvider), string(model.RoleAdmin))).
			Get("/provider/{providerId}", h.providerBookings)
		// {id} is the customer's user id here; readable without a token.
		r.Get("/{id}", h.customerBookings)
	})

	r.Get("/providers", h.listProviders)
	return r
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "BookMyCare backend is running",
	})
}
