package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"sprintcap/internal/capacity"
	"sprintcap/internal/db"
	"sprintcap/internal/schedule"
)

type CreateSprintRequest struct {
	TeamID     *int64   `json:"team_id"`
	Name       string   `json:"name"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	IsCurrent  bool     `json:"is_current"`
	LoadFactor *float64 `json:"load_factor"`
}

// teamIDQuery parses the optional teamId query parameter
func teamIDQuery(r *http.Request) (*int64, error) {
	raw := r.URL.Query().Get("teamId")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// HandleListSprints returns sprints newest first, optionally for one team
func (s *Server) HandleListSprints(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	teamID, err := teamIDQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid teamId", "invalid_input")
		return
	}

	sprints, err := s.db.ListSprints(ctx, teamID)
	if err != nil {
		s.respondStoreError(w, err, "sprints")
		return
	}

	respondJSON(w, http.StatusOK, sprints)
}

// HandleGetCurrentSprint returns the sprint flagged current, optionally for
// one team
func (s *Server) HandleGetCurrentSprint(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	teamID, err := teamIDQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid teamId", "invalid_input")
		return
	}

	sprint, err := s.db.CurrentSprint(ctx, teamID)
	if err != nil {
		s.respondStoreError(w, err, "current sprint")
		return
	}

	respondJSON(w, http.StatusOK, sprint)
}

// HandleGetSprint returns one sprint by id
func (s *Server) HandleGetSprint(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sprint id", "invalid_input")
		return
	}

	sprint, err := s.db.GetSprint(ctx, id)
	if err != nil {
		s.respondStoreError(w, err, "sprint")
		return
	}

	respondJSON(w, http.StatusOK, sprint)
}

// validSprintDates checks both dates parse and the window is not inverted
func validSprintDates(start, end string) bool {
	s, err := schedule.ParseDate(start)
	if err != nil {
		return false
	}
	e, err := schedule.ParseDate(end)
	if err != nil {
		return false
	}
	return !e.Before(s)
}

// HandleCreateSprint creates a sprint. A sprint created as current demotes the
// team's previous current sprint.
func (s *Server) HandleCreateSprint(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	var req CreateSprintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", "validation_error")
		return
	}
	if !validSprintDates(req.StartDate, req.EndDate) {
		respondError(w, http.StatusBadRequest, "start_date and end_date must be YYYY-MM-DD dates with start_date <= end_date", "validation_error")
		return
	}

	teamID := int64(db.DefaultTeamID)
	if req.TeamID != nil {
		teamID = *req.TeamID
	}
	if _, err := s.db.GetTeam(ctx, teamID); err != nil {
		s.respondStoreError(w, err, "team")
		return
	}

	loadFactor := db.DefaultLoadFactor
	if req.LoadFactor != nil {
		if *req.LoadFactor <= 0 || *req.LoadFactor > 1 {
			respondError(w, http.StatusBadRequest, "load_factor must be in (0, 1]", "validation_error")
			return
		}
		loadFactor = *req.LoadFactor
	}

	sprint, err := s.db.CreateSprint(ctx, db.NewSprint{
		TeamID:     teamID,
		Name:       req.Name,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		IsCurrent:  req.IsCurrent,
		LoadFactor: loadFactor,
	})
	if err != nil {
		s.respondStoreError(w, err, "sprint")
		return
	}

	respondJSON(w, http.StatusCreated, sprint)
}

// HandleUpdateSprint applies a partial update to a sprint
func (s *Server) HandleUpdateSprint(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sprint id", "invalid_input")
		return
	}

	var patch db.SprintPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}

	if patch.StartDate != nil {
		if _, err := schedule.ParseDate(*patch.StartDate); err != nil {
			respondError(w, http.StatusBadRequest, "start_date must be a YYYY-MM-DD date", "validation_error")
			return
		}
	}
	if patch.EndDate != nil {
		if _, err := schedule.ParseDate(*patch.EndDate); err != nil {
			respondError(w, http.StatusBadRequest, "end_date must be a YYYY-MM-DD date", "validation_error")
			return
		}
	}
	if patch.LoadFactor != nil && (*patch.LoadFactor <= 0 || *patch.LoadFactor > 1) {
		respondError(w, http.StatusBadRequest, "load_factor must be in (0, 1]", "validation_error")
		return
	}

	if err := s.db.UpdateSprint(ctx, id, patch); err != nil {
		s.respondStoreError(w, err, "sprint")
		return
	}

	sprint, err := s.db.GetSprint(ctx, id)
	if err != nil {
		s.respondStoreError(w, err, "sprint")
		return
	}

	respondJSON(w, http.StatusOK, sprint)
}

// HandleDeleteSprint removes a sprint and its dependent rows
func (s *Server) HandleDeleteSprint(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sprint id", "invalid_input")
		return
	}

	if err := s.db.DeleteSprint(ctx, id); err != nil {
		s.respondStoreError(w, err, "sprint")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "sprint deleted"})
}

// buildCapacityReport loads a sprint, its team's members and its holidays, and
// runs the capacity computation
func (s *Server) buildCapacityReport(ctx context.Context, sprintID int64) (*capacity.Report, error) {
	sprint, err := s.db.GetSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	start, err := schedule.ParseDate(sprint.StartDate)
	if err != nil {
		return nil, fmt.Errorf("sprint %d has malformed start_date %q: %w", sprint.ID, sprint.StartDate, err)
	}
	end, err := schedule.ParseDate(sprint.EndDate)
	if err != nil {
		return nil, fmt.Errorf("sprint %d has malformed end_date %q: %w", sprint.ID, sprint.EndDate, err)
	}

	members, err := s.db.TeamMembers(ctx, sprint.TeamID)
	if err != nil {
		return nil, err
	}

	holidayCounts, err := s.db.HolidayCounts(ctx, sprint.ID)
	if err != nil {
		return nil, err
	}

	inputs := make([]capacity.MemberInput, 0, len(members))
	for _, m := range members {
		inputs = append(inputs, capacity.MemberInput{
			ID:              m.ID,
			Name:            m.Name,
			DefaultCapacity: m.DefaultCapacity,
		})
	}

	report := capacity.Compute(sprint.ID, sprint.Name, start, end, sprint.LoadFactor, inputs, holidayCounts)
	return &report, nil
}

// HandleGetSprintCapacity returns the capacity report for a sprint
func (s *Server) HandleGetSprintCapacity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sprint id", "invalid_input")
		return
	}

	report, err := s.buildCapacityReport(ctx, id)
	if err != nil {
		s.respondStoreError(w, err, "sprint")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// HandleExportSprintCapacityCSV streams the capacity report as a CSV download
func (s *Server) HandleExportSprintCapacityCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sprint id", "invalid_input")
		return
	}

	report, err := s.buildCapacityReport(ctx, id)
	if err != nil {
		s.respondStoreError(w, err, "sprint")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("sprint-%d-capacity.csv", id)))

	cw := csv.NewWriter(w)
	cw.Write([]string{"member", "default_capacity", "working_days", "holidays", "available_days", "capacity"})
	for _, m := range report.Members {
		cw.Write([]string{
			m.MemberName,
			strconv.Itoa(m.DefaultCapacity),
			strconv.Itoa(m.TotalWorkingDays),
			strconv.Itoa(m.Holidays),
			strconv.Itoa(m.AvailableDays),
			strconv.FormatFloat(m.Capacity, 'f', 1, 64),
		})
	}
	cw.Write([]string{"total", "", "", "", "", strconv.FormatFloat(report.TotalCapacity, 'f', 1, 64)})
	cw.Flush()
}
