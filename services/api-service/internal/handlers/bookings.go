package handlers

import (
	"net/http"

	"github.com/Abhishek-Jatav/bookMyCare/libs/httpx"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/service"
)

type createBookingRequest struct {
	ProviderID int64  `json:"providerId" validate:"required,gt=0"`
	Date       string `json:"date" validate:"required"`
	TimeSlot   string `json:"timeSlot" validate:"required,max=64"`
}

func (h *handler) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	booking, err := h.bookings.CreateBooking(r.Context(), caller(r), service.CreateBookingInput{
		ProviderID: req.ProviderID,
		Date:       req.Date,
		TimeSlot:   req.TimeSlot,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, booking)
}

func (h *handler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	booking, err := h.bookings.CancelBooking(r.Context(), caller(r), bookingID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, booking)
}

func (h *handler) customerBookings(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	bookings, err := h.bookings.ListByCustomer(r.Context(), customerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, bookings)
}

func (h *handler) providerBookings(w http.ResponseWriter, r *http.Request) {
	providerID, err := pathID(r, "providerId")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	bookings, err := h.bookings.ListByProvider(r.Context(), caller(r), providerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, bookings)
}

func (h *handler) listProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.providers.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, providers)
}
