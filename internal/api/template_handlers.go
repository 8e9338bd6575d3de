package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sprintcap/internal/db"
	"sprintcap/internal/schedule"
)

type CreateTemplateRequest struct {
	Year          int      `json:"year"`
	Quarter       int      `json:"quarter"`
	SprintNumber  int      `json:"sprint_number"`
	Name          string   `json:"name"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	DurationWeeks int      `json:"duration_weeks"`
	LoadFactor    *float64 `json:"load_factor"`
}

type GenerateTemplatesRequest struct {
	Year             int    `json:"year"`
	Quarter          int    `json:"quarter"`
	DurationWeeks    int    `json:"duration_weeks"`
	FirstSprintStart string `json:"first_sprint_start"`
}

type AdoptTemplateRequest struct {
	TeamID    *int64  `json:"team_id"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// HandleListTemplates returns all sprint templates, newest quarter first
func (s *Server) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	templates, err := s.db.ListTemplates(ctx)
	if err != nil {
		s.respondStoreError(w, err, "templates")
		return
	}

	respondJSON(w, http.StatusOK, templates)
}

// HandleGetTemplateQuarters lists quarters that have templates
func (s *Server) HandleGetTemplateQuarters(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	quarters, err := s.db.AvailableQuarters(ctx)
	if err != nil {
		s.respondStoreError(w, err, "template quarters")
		return
	}

	respondJSON(w, http.StatusOK, quarters)
}

// HandleGetQuarterTemplates returns one quarter's templates in sprint order
func (s *Server) HandleGetQuarterTemplates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid year", "invalid_input")
		return
	}
	quarter, err := strconv.Atoi(chi.URLParam(r, "quarter"))
	if err != nil || quarter < 1 || quarter > 4 {
		respondError(w, http.StatusBadRequest, "quarter must be between 1 and 4", "validation_error")
		return
	}

	templates, err := s.db.TemplatesByQuarter(ctx, year, quarter)
	if err != nil {
		s.respondStoreError(w, err, "templates")
		return
	}

	respondJSON(w, http.StatusOK, templates)
}

// HandleGetTemplate returns one template by id
func (s *Server) HandleGetTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid template id", "invalid_input")
		return
	}

	template, err := s.db.GetTemplate(ctx, id)
	if err != nil {
		s.respondStoreError(w, err, "template")
		return
	}

	respondJSON(w, http.StatusOK, template)
}

// HandleCreateTemplate creates a single template row
func (s *Server) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}

	if req.Quarter < 1 || req.Quarter > 4 {
		respondError(w, http.StatusBadRequest, "quarter must be between 1 and 4", "validation_error")
		return
	}
	if req.DurationWeeks < 1 || req.DurationWeeks > 8 {
		respondError(w, http.StatusBadRequest, "duration_weeks must be between 1 and 8", "validation_error")
		return
	}
	if req.SprintNumber < 1 {
		respondError(w, http.StatusBadRequest, "sprint_number must be positive", "validation_error")
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

	loadFactor := db.DefaultLoadFactor
	if req.LoadFactor != nil {
		if *req.LoadFactor <= 0 || *req.LoadFactor > 1 {
			respondError(w, http.StatusBadRequest, "load_factor must be in (0, 1]", "validation_error")
			return
		}
		loadFactor = *req.LoadFactor
	}

	template, err := s.db.CreateTemplate(ctx, db.NewTemplate{
		Year:          req.Year,
		Quarter:       req.Quarter,
		SprintNumber:  req.SprintNumber,
		Name:          req.Name,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		DurationWeeks: req.DurationWeeks,
		LoadFactor:    loadFactor,
	})
	if err != nil {
		s.respondStoreError(w, err, "template")
		return
	}

	respondJSON(w, http.StatusCreated, template)
}

// HandleUpdateTemplate applies a partial update to a template
func (s *Server) HandleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid template id", "invalid_input")
		return
	}

	var patch db.TemplatePatch
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

	if err := s.db.UpdateTemplate(ctx, id, patch); err != nil {
		s.respondStoreError(w, err, "template")
		return
	}

	template, err := s.db.GetTemplate(ctx, id)
	if err != nil {
		s.respondStoreError(w, err, "template")
		return
	}

	respondJSON(w, http.StatusOK, template)
}

// HandleDeleteTemplate removes a template
func (s *Server) HandleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid template id", "invalid_input")
		return
	}

	if err := s.db.DeleteTemplate(ctx, id); err != nil {
		s.respondStoreError(w, err, "template")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "template deleted"})
}

// HandleGenerateTemplates lays out a whole quarter of sprint templates in one
// transactional batch
func (s *Server) HandleGenerateTemplates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*s.config.DBQueryTimeout())
	defer cancel()

	var req GenerateTemplatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}

	if req.Quarter < 1 || req.Quarter > 4 {
		respondError(w, http.StatusBadRequest, "quarter must be between 1 and 4", "validation_error")
		return
	}
	if req.DurationWeeks < 1 || req.DurationWeeks > 8 {
		respondError(w, http.StatusBadRequest, "duration_weeks must be between 1 and 8", "validation_error")
		return
	}
	firstStart, err := schedule.ParseDate(req.FirstSprintStart)
	if err != nil {
		respondError(w, http.StatusBadRequest, "first_sprint_start must be a YYYY-MM-DD date", "validation_error")
		return
	}

	templates, err := s.db.GenerateQuarter(ctx, req.Year, req.Quarter, req.DurationWeeks, firstStart)
	if err != nil {
		s.respondStoreError(w, err, "templates")
		return
	}

	respondJSON(w, http.StatusCreated, templates)
}

// HandleAdoptTemplate creates a team sprint from a template
func (s *Server) HandleAdoptTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid template id", "invalid_input")
		return
	}

	var req AdoptTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}

	template, err := s.db.GetTemplate(ctx, id)
	if err != nil {
		s.respondStoreError(w, err, "template")
		return
	}

	// The sprint's window is the template's dates with any overrides applied;
	// it must hold together as a whole, not field by field.
	start := template.StartDate
	if req.StartDate != nil {
		start = *req.StartDate
	}
	end := template.EndDate
	if req.EndDate != nil {
		end = *req.EndDate
	}
	if !validSprintDates(start, end) {
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

	sprint, err := s.db.AdoptTemplate(ctx, id, teamID, req.StartDate, req.EndDate)
	if err != nil {
		s.respondStoreError(w, err, "template")
		return
	}

	respondJSON(w, http.StatusCreated, sprint)
}
