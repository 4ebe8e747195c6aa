package http

import (
	"encoding/json"
	"net/http"
	"time"

	"lavarenta-backend/internal/service"
)

func (s *Server) handleGetRent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rent id")
		return
	}
	rent, err := s.store.Rents().GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rent)
}

func (s *Server) handleExtendRent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rent id")
		return
	}
	var req struct {
		Weeks        int   `json:"weeks"`
		PaymentCents int64 `json:"payment_cents"`
		UseFreeWeeks bool  `json:"use_free_weeks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rent, err := s.extension.ExtendRentData(r.Context(), service.ExtendRentInput{
		RentID:       id,
		Weeks:        req.Weeks,
		PaymentCents: req.PaymentCents,
		UseFreeWeeks: req.UseFreeWeeks,
		ActingUser:   actingUser(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rent)
}

func (s *Server) handleChangePayDay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rent id")
		return
	}
	var req struct {
		NewPayDay    int   `json:"new_pay_day"` // 0 = Sunday … 6 = Saturday
		PaymentCents int64 `json:"payment_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rent, err := s.extension.ChangeRentPayDayData(r.Context(), service.ChangePayDayInput{
		RentID:       id,
		NewPayDay:    time.Weekday(req.NewPayDay),
		PaymentCents: req.PaymentCents,
		ActingUser:   actingUser(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rent)
}

func (s *Server) handleListCustomerMovements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	movements, err := s.store.Movements().ListCustomerMovements(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movements)
}

func (s *Server) handleListPartnerPayouts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid partner id")
		return
	}
	payouts, err := s.store.Payouts().ListByPartner(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payouts)
}
