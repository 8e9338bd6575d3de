package api

import (
	"encoding/json"
	"net/http"

	"sprintcap/internal/db"
)

type CreateMemberRequest struct {
	Name            string `json:"name"`
	Role            string `json:"role"`
	DefaultCapacity *int   `json:"default_capacity"`
}

// HandleListMembers returns all team members ordered by name
func (s *Server) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	members, err := s.db.ListMembers(ctx)
	if err != nil {
		s.respondStoreError(w, err, "members")
		return
	}

	respondJSON(w, http.StatusOK, members)
}

// HandleGetMember returns one member by id
func (s *Server) HandleGetMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid member id", "invalid_input")
		return
	}

	member, err := s.db.GetMember(ctx, id)
	if err != nil {
		s.respondStoreError(w, err, "member")
		return
	}

	respondJSON(w, http.StatusOK, member)
}

// HandleCreateMember creates a team member
func (s *Server) HandleCreateMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	var req CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", "validation_error")
		return
	}
	if req.DefaultCapacity == nil || *req.DefaultCapacity < 0 {
		respondError(w, http.StatusBadRequest, "default_capacity must be a non-negative number", "validation_error")
		return
	}

	member, err := s.db.CreateMember(ctx, req.Name, req.Role, *req.DefaultCapacity)
	if err != nil {
		s.respondStoreError(w, err, "member")
		return
	}

	respondJSON(w, http.StatusCreated, member)
}

// HandleUpdateMember applies a partial update to a member
func (s *Server) HandleUpdateMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid member id", "invalid_input")
		return
	}

	var patch db.MemberPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}

	if patch.DefaultCapacity != nil && *patch.DefaultCapacity < 0 {
		respondError(w, http.StatusBadRequest, "default_capacity must be a non-negative number", "validation_error")
		return
	}

	if err := s.db.UpdateMember(ctx, id, patch); err != nil {
		s.respondStoreError(w, err, "member")
		return
	}

	member, err := s.db.GetMember(ctx, id)
	if err != nil {
		s.respondStoreError(w, err, "member")
		return
	}

	respondJSON(w, http.StatusOK, member)
}

// HandleDeleteMember removes a member and their dependent rows
func (s *Server) HandleDeleteMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid member id", "invalid_input")
		return
	}

	if err := s.db.DeleteMember(ctx, id); err != nil {
		s.respondStoreError(w, err, "member")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "member deleted"})
}
