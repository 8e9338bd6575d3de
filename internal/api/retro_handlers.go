package api

import (
	"encoding/json"
	"net/http"

	"sprintcap/internal/db"
)

type CreateRetroItemRequest struct {
	SprintID int64  `json:"sprint_id"`
	MemberID int64  `json:"member_id"`
	TeamID   int64  `json:"team_id"`
	Type     string `json:"type"`
	Content  string `json:"content"`
}

// HandleGetSprintRetroItems returns a sprint's retro board
func (s *Server) HandleGetSprintRetroItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	sprintID, err := urlID(r, "sprintId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sprint id", "invalid_input")
		return
	}

	items, err := s.db.RetroItemsBySprint(ctx, sprintID)
	if err != nil {
		s.respondStoreError(w, err, "retro items")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// HandleGetTeamRetroItems returns a team's retro items across sprints
func (s *Server) HandleGetTeamRetroItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	teamID, err := urlID(r, "teamId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid team id", "invalid_input")
		return
	}

	items, err := s.db.RetroItemsByTeam(ctx, teamID)
	if err != nil {
		s.respondStoreError(w, err, "retro items")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// HandleCreateRetroItem adds a card to a sprint's retro board
func (s *Server) HandleCreateRetroItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	var req CreateRetroItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}

	if !db.ValidRetroType(req.Type) {
		respondError(w, http.StatusBadRequest, "type must be one of what_went_well, what_went_wrong, lesson_learned, todo", "validation_error")
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "content is required", "validation_error")
		return
	}

	if _, err := s.db.GetSprint(ctx, req.SprintID); err != nil {
		s.respondStoreError(w, err, "sprint")
		return
	}
	if _, err := s.db.GetMember(ctx, req.MemberID); err != nil {
		s.respondStoreError(w, err, "member")
		return
	}
	if _, err := s.db.GetTeam(ctx, req.TeamID); err != nil {
		s.respondStoreError(w, err, "team")
		return
	}

	item, err := s.db.CreateRetroItem(ctx, req.SprintID, req.MemberID, req.TeamID, req.Type, req.Content)
	if err != nil {
		s.respondStoreError(w, err, "retro item")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// HandleUpdateRetroItem updates a card's type or content
func (s *Server) HandleUpdateRetroItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid retro item id", "invalid_input")
		return
	}

	var patch db.RetroItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}

	if patch.Type != nil && !db.ValidRetroType(*patch.Type) {
		respondError(w, http.StatusBadRequest, "type must be one of what_went_well, what_went_wrong, lesson_learned, todo", "validation_error")
		return
	}
	if patch.Content != nil && *patch.Content == "" {
		respondError(w, http.StatusBadRequest, "content cannot be empty", "validation_error")
		return
	}

	if err := s.db.UpdateRetroItem(ctx, id, patch); err != nil {
		s.respondStoreError(w, err, "retro item")
		return
	}

	item, err := s.db.GetRetroItem(ctx, id)
	if err != nil {
		s.respondStoreError(w, err, "retro item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// HandleDeleteRetroItem removes a card
func (s *Server) HandleDeleteRetroItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid retro item id", "invalid_input")
		return
	}

	if err := s.db.DeleteRetroItem(ctx, id); err != nil {
		s.respondStoreError(w, err, "retro item")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "retro item deleted"})
}
