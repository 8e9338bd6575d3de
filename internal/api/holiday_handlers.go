package api

import (
	"context"
	"encoding/json"
	"net/http"

	"sprintcap/internal/schedule"
)

type HolidayRequest struct {
	SprintID int64  `json:"sprint_id"`
	MemberID int64  `json:"member_id"`
	Date     string `json:"date"`
}

// ToggleHolidayResponse answers a toggle with the action taken
type ToggleHolidayResponse struct {
	Action   string `json:"action"` // "added" or "removed"
	SprintID int64  `json:"sprint_id"`
	MemberID int64  `json:"member_id"`
	Date     string `json:"date"`
}

func (s *Server) validateHolidayRequest(ctx context.Context, w http.ResponseWriter, req HolidayRequest) bool {
	if _, err := schedule.ParseDate(req.Date); err != nil {
		respondError(w, http.StatusBadRequest, "date must be a YYYY-MM-DD date", "validation_error")
		return false
	}
	if _, err := s.db.GetSprint(ctx, req.SprintID); err != nil {
		s.respondStoreError(w, err, "sprint")
		return false
	}
	if _, err := s.db.GetMember(ctx, req.MemberID); err != nil {
		s.respondStoreError(w, err, "member")
		return false
	}
	return true
}

// HandleGetSprintHolidays returns all holidays recorded for a sprint
func (s *Server) HandleGetSprintHolidays(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	sprintID, err := urlID(r, "sprintId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sprint id", "invalid_input")
		return
	}

	holidays, err := s.db.HolidaysBySprint(ctx, sprintID)
	if err != nil {
		s.respondStoreError(w, err, "holidays")
		return
	}

	respondJSON(w, http.StatusOK, holidays)
}

// HandleGetMemberSprintHolidays returns one member's holidays within a sprint
func (s *Server) HandleGetMemberSprintHolidays(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	sprintID, err := urlID(r, "sprintId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sprint id", "invalid_input")
		return
	}
	memberID, err := urlID(r, "memberId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid member id", "invalid_input")
		return
	}

	holidays, err := s.db.HolidaysBySprintAndMember(ctx, sprintID, memberID)
	if err != nil {
		s.respondStoreError(w, err, "holidays")
		return
	}

	respondJSON(w, http.StatusOK, holidays)
}

// HandleCreateHoliday records one absence day. Recording the same day twice
// yields a conflict.
func (s *Server) HandleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	var req HolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}

	if !s.validateHolidayRequest(ctx, w, req) {
		return
	}

	holiday, err := s.db.CreateHoliday(ctx, req.SprintID, req.MemberID, req.Date)
	if err != nil {
		s.respondStoreError(w, err, "holiday")
		return
	}

	respondJSON(w, http.StatusCreated, holiday)
}

// HandleToggleHoliday flips an absence day on or off
func (s *Server) HandleToggleHoliday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	var req HolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}

	if !s.validateHolidayRequest(ctx, w, req) {
		return
	}

	added, err := s.db.ToggleHoliday(ctx, req.SprintID, req.MemberID, req.Date)
	if err != nil {
		s.respondStoreError(w, err, "holiday")
		return
	}

	action := "removed"
	if added {
		action = "added"
	}
	respondJSON(w, http.StatusOK, ToggleHolidayResponse{
		Action:   action,
		SprintID: req.SprintID,
		MemberID: req.MemberID,
		Date:     req.Date,
	})
}

// HandleDeleteHoliday removes an absence by id
func (s *Server) HandleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid holiday id", "invalid_input")
		return
	}

	if err := s.db.DeleteHoliday(ctx, id); err != nil {
		s.respondStoreError(w, err, "holiday")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "holiday deleted"})
}
