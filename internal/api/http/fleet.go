package http

import (
	"encoding/json"
	"net/http"
	"time"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/service"
)

func (s *Server) handleRegisterRent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerName  string `json:"customer_name"`
		CustomerPhone string `json:"customer_phone"`
		MapsURL       string `json:"maps_url"`
		Level         int    `json:"level"`
		InitialWeeks  int    `json:"initial_weeks"`
		PayDay        int    `json:"pay_day"` // 0 = Sunday … 6 = Saturday
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rent, err := s.admin.RegisterRentData(r.Context(), service.RegisterRentInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		MapsURL:       req.MapsURL,
		Level:         req.Level,
		InitialWeeks:  req.InitialWeeks,
		PayDay:        time.Weekday(req.PayDay),
		ActingUser:    actingUser(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rent)
}

func (s *Server) handleRegisterMachine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Num         int64  `json:"num"`
		PartnerID   *int64 `json:"partner_id,omitempty"`
		WarehouseID int64  `json:"warehouse_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	machine, err := s.admin.RegisterMachineData(r.Context(), service.RegisterMachineInput{
		Num:         req.Num,
		PartnerID:   req.PartnerID,
		WarehouseID: req.WarehouseID,
		ActingUser:  actingUser(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, machine)
}

func (s *Server) handleListMachinesByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.MachineStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.MachineStatusListo
	}
	machines, err := s.store.Machines().ListByStatus(r.Context(), status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, machines)
}

func (s *Server) handleListVehicleMachines(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	ids, err := s.store.Vehicles().ListMachinesOn(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}
