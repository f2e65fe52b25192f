package handlers

import (
	"net/http"

	"github.com/Abhishek-Jatav/bookMyCare/libs/httpx"
)

type createSlotRequest struct {
	Date     string `json:"date" validate:"required"`
	TimeSlot string `json:"timeSlot" validate:"required,max=64"`
}

func (h *handler) createSlot(w http.ResponseWriter, r *http.Request) {
	id := caller(r)
	if err := h.availability.Authorize(id); err != nil {
		h.fail(w, r, err)
		return
	}

	var req createSlotRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	slot, err := h.availability.CreateSlot(r.Context(), id, req.Date, req.TimeSlot)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, slot)
}

func (h *handler) listSlots(w http.ResponseWriter, r *http.Request) {
	providerID, err := pathID(r, "providerId")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	slots, err := h.availability.GetSlots(r.Context(), providerID, r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, slots)
}
