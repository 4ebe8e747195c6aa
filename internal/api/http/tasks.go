package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/service"
)

func taskKind(name string) domain.TaskKind {
	switch name {
	case "pickups":
		return domain.TaskKindPickup
	case "changes":
		return domain.TaskKindChange
	default:
		return domain.TaskKindDelivery
	}
}

type saveTaskRequest struct {
	RentID     int64  `json:"rent_id"`
	Date       string `json:"date"`
	TimeOption string `json:"time_option"`
	FromTime   string `json:"from_time"`
	EndTime    string `json:"end_time"`
}

func (req *saveTaskRequest) toInput(user int64) (service.SaveTaskInput, error) {
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return service.SaveTaskInput{}, domain.NewError(domain.CodeMissingField, "fecha inválida")
	}
	in := service.SaveTaskInput{
		RentID:     req.RentID,
		Date:       date,
		TimeOption: domain.TimeOption(req.TimeOption),
		ActingUser: user,
	}
	if in.TimeOption == domain.TimeOptionSpecific {
		if in.FromTime, err = time.Parse(time.RFC3339, req.FromTime); err != nil {
			return service.SaveTaskInput{}, domain.NewError(domain.CodeMissingField, "hora inicial inválida")
		}
		if in.EndTime, err = time.Parse(time.RFC3339, req.EndTime); err != nil {
			return service.SaveTaskInput{}, domain.NewError(domain.CodeMissingField, "hora final inválida")
		}
	}
	return in, nil
}

func (s *Server) handleSaveTask(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		in, err := req.toInput(actingUser(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		var task *domain.Task
		switch taskKind(kind) {
		case domain.TaskKindPickup:
			task, err = s.pickup.SavePickupData(r.Context(), in)
		case domain.TaskKindChange:
			task, err = s.change.SaveChangeData(r.Context(), in)
		default:
			task, err = s.delivery.SaveDeliveryData(r.Context(), in)
		}
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, task)
	}
}

func (s *Server) handleListTasksByDay(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := time.Parse("2006-01-02", r.URL.Query().Get("day"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "day query parameter required (YYYY-MM-DD)")
			return
		}
		tasks, err := s.store.Tasks().ListByDay(r.Context(), taskKind(kind), day)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)
	}
}

func (s *Server) handleAssignTask(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid task id")
			return
		}
		var req struct {
			OperatorID int64 `json:"operator_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user := actingUser(r)
		switch taskKind(kind) {
		case domain.TaskKindPickup:
			err = s.pickup.AssignPickupOperator(r.Context(), taskID, req.OperatorID, user)
		case domain.TaskKindChange:
			err = s.change.AssignChangeOperator(r.Context(), taskID, req.OperatorID, user)
		default:
			err = s.delivery.AssignDeliveryOperator(r.Context(), taskID, req.OperatorID, user)
		}
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}
}

// maxEvidenceMemory bounds the in-memory part of multipart parsing
const maxEvidenceMemory = 32 << 20

// evidenceFiles extracts the uploaded completion photos from the multipart
// form
func evidenceFiles(r *http.Request) ([]service.EvidenceFile, error) {
	if r.MultipartForm == nil || r.MultipartForm.File == nil {
		return nil, nil
	}
	var files []service.EvidenceFile
	for _, headers := range r.MultipartForm.File {
		for _, h := range headers {
			f, err := h.Open()
			if err != nil {
				return nil, err
			}
			files = append(files, service.EvidenceFile{
				Name:        h.Filename,
				ContentType: h.Header.Get("Content-Type"),
				Data:        f,
			})
		}
	}
	return files, nil
}

func formBoolMap(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	m := map[string]bool{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}
	return m
}

func (s *Server) handleCompleteTask(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid task id")
			return
		}
		if err := r.ParseMultipartForm(maxEvidenceMemory); err != nil {
			writeError(w, http.StatusBadRequest, "multipart form required")
			return
		}
		evidence, err := evidenceFiles(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable evidence file")
			return
		}

		user := actingUser(r)
		var rent *domain.Rent
		switch taskKind(kind) {
		case domain.TaskKindPickup:
			rent, err = s.pickup.MarkCompletePickupData(r.Context(), service.CompletePickupInput{
				TaskID:              taskID,
				AccessoriesReturned: formBoolMap(r.FormValue("accessories_returned")),
				Evidence:            evidence,
				ActingUser:          user,
			})
		case domain.TaskKindChange:
			replacementID, _ := strconv.ParseInt(r.FormValue("replacement_machine_id"), 10, 64)
			rent, err = s.change.MarkCompleteChangeData(r.Context(), service.CompleteChangeInput{
				TaskID:               taskID,
				WasFixed:             r.FormValue("was_fixed") == "true",
				AccessoriesConfirmed: formBoolMap(r.FormValue("accessories_confirmed")),
				ReplacementMachineID: replacementID,
				Evidence:             evidence,
				ActingUser:           user,
			})
		default:
			machineID, _ := strconv.ParseInt(r.FormValue("machine_id"), 10, 64)
			payment, _ := strconv.ParseInt(r.FormValue("payment_cents"), 10, 64)
			rent, err = s.delivery.MarkCompleteDeliveryData(r.Context(), service.CompleteDeliveryInput{
				TaskID:        taskID,
				MachineID:     machineID,
				PaymentCents:  payment,
				CustomerName:  r.FormValue("customer_name"),
				CustomerPhone: r.FormValue("customer_phone"),
				MapsURL:       r.FormValue("maps_url"),
				SamePerson:    r.FormValue("same_person") == "true",
				Accessories:   formBoolMap(r.FormValue("accessories")),
				Evidence:      evidence,
				ActingUser:    user,
			})
		}
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rent)
	}
}

func (s *Server) handleCancelTask(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid task id")
			return
		}
		var req struct {
			Reason     string `json:"reason"`
			CancelRent bool   `json:"cancel_rent"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		in := service.CancelTaskInput{
			TaskID:     taskID,
			Reason:     req.Reason,
			CancelRent: req.CancelRent,
			ActingUser: actingUser(r),
		}

		switch taskKind(kind) {
		case domain.TaskKindPickup:
			err = s.pickup.CancelPickupData(r.Context(), in)
		case domain.TaskKindChange:
			err = s.change.CancelChangeData(r.Context(), in)
		default:
			err = s.delivery.CancelDeliveryData(r.Context(), in)
		}
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}
}

func (s *Server) handleUpdateTaskTime(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid task id")
			return
		}
		var req saveTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		saveIn, err := req.toInput(actingUser(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		in := service.UpdateTimeInput{
			TaskID:     taskID,
			Date:       saveIn.Date,
			TimeOption: saveIn.TimeOption,
			FromTime:   saveIn.FromTime,
			EndTime:    saveIn.EndTime,
			ActingUser: saveIn.ActingUser,
		}

		var task *domain.Task
		switch taskKind(kind) {
		case domain.TaskKindPickup:
			task, err = s.pickup.UpdatePickupTimeData(r.Context(), in)
		case domain.TaskKindChange:
			task, err = s.change.UpdateChangeTimeData(r.Context(), in)
		default:
			task, err = s.delivery.UpdateDeliveryTimeData(r.Context(), in)
		}
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}
