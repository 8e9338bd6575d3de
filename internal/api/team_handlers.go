package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"sprintcap/internal/db"
)

type CreateTeamRequest struct {
	Name    string  `json:"name"`
	LogoURL *string `json:"logo_url"`
}

type AddTeamMemberRequest struct {
	MemberID int64 `json:"member_id"`
}

// HandleListTeams returns all teams ordered by name
func (s *Server) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	teams, err := s.db.ListTeams(ctx)
	if err != nil {
		s.respondStoreError(w, err, "teams")
		return
	}

	respondJSON(w, http.StatusOK, teams)
}

// HandleGetTeam returns one team by id
func (s *Server) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid team id", "invalid_input")
		return
	}

	team, err := s.db.GetTeam(ctx, id)
	if err != nil {
		s.respondStoreError(w, err, "team")
		return
	}

	respondJSON(w, http.StatusOK, team)
}

// HandleCreateTeam creates a team
func (s *Server) HandleCreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", "validation_error")
		return
	}

	team, err := s.db.CreateTeam(ctx, req.Name, req.LogoURL)
	if err != nil {
		s.respondStoreError(w, err, "team")
		return
	}

	respondJSON(w, http.StatusCreated, team)
}

// HandleUpdateTeam applies a partial update to a team
func (s *Server) HandleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid team id", "invalid_input")
		return
	}

	var patch db.TeamPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}

	if patch.Name != nil && *patch.Name == "" {
		respondError(w, http.StatusBadRequest, "name cannot be empty", "validation_error")
		return
	}

	if err := s.db.UpdateTeam(ctx, id, patch); err != nil {
		s.respondStoreError(w, err, "team")
		return
	}

	team, err := s.db.GetTeam(ctx, id)
	if err != nil {
		s.respondStoreError(w, err, "team")
		return
	}

	respondJSON(w, http.StatusOK, team)
}

// HandleDeleteTeam removes a team. The seeded default team is protected.
func (s *Server) HandleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid team id", "invalid_input")
		return
	}

	if id == db.DefaultTeamID {
		respondError(w, http.StatusBadRequest, "the default team cannot be deleted", "validation_error")
		return
	}

	if err := s.db.DeleteTeam(ctx, id); err != nil {
		s.respondStoreError(w, err, "team")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "team deleted"})
}

// HandleGetTeamMembers returns the members of one team
func (s *Server) HandleGetTeamMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid team id", "invalid_input")
		return
	}

	if _, err := s.db.GetTeam(ctx, id); err != nil {
		s.respondStoreError(w, err, "team")
		return
	}

	members, err := s.db.TeamMembers(ctx, id)
	if err != nil {
		s.respondStoreError(w, err, "team members")
		return
	}

	respondJSON(w, http.StatusOK, members)
}

// HandleAddTeamMember links a member to a team
func (s *Server) HandleAddTeamMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	teamID, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid team id", "invalid_input")
		return
	}

	var req AddTeamMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}

	if _, err := s.db.GetTeam(ctx, teamID); err != nil {
		s.respondStoreError(w, err, "team")
		return
	}
	if _, err := s.db.GetMember(ctx, req.MemberID); err != nil {
		s.respondStoreError(w, err, "member")
		return
	}

	if err := s.db.AddTeamMember(ctx, teamID, req.MemberID); err != nil {
		s.respondStoreError(w, err, "team member")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"message": "member added to team"})
}

// HandleRemoveTeamMember unlinks a member from a team
func (s *Server) HandleRemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryCtx(r)
	defer cancel()

	teamID, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid team id", "invalid_input")
		return
	}
	memberID, err := urlID(r, "memberId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid member id", "invalid_input")
		return
	}

	if err := s.db.RemoveTeamMember(ctx, teamID, memberID); err != nil {
		s.respondStoreError(w, err, "team membership")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "member removed from team"})
}

// HandleUploadTeamLogo accepts a multipart logo file, pushes it to the image
// host and stores the hosted URL on the team
func (s *Server) HandleUploadTeamLogo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	teamID, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid team id", "invalid_input")
		return
	}

	if !s.imgbb.Configured() {
		respondError(w, http.StatusServiceUnavailable, "logo uploads are not configured", "uploads_disabled")
		return
	}

	if _, err := s.db.GetTeam(ctx, teamID); err != nil {
		s.respondStoreError(w, err, "team")
		return
	}

	data, header, err := readLogoFile(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "a logo file is required", "invalid_input")
		return
	}

	logoURL, err := s.imgbb.Upload(ctx, base64.StdEncoding.EncodeToString(data))
	if err != nil {
		s.logger.Error("Logo upload failed",
			zap.Int64("team_id", teamID),
			zap.String("filename", header.Filename),
			zap.Error(err))
		respondError(w, http.StatusBadGateway, "failed to upload logo", "upload_failed")
		return
	}

	if err := s.db.UpdateTeam(ctx, teamID, db.TeamPatch{LogoURL: &logoURL}); err != nil {
		s.respondStoreError(w, err, "team")
		return
	}

	team, err := s.db.GetTeam(ctx, teamID)
	if err != nil {
		s.respondStoreError(w, err, "team")
		return
	}

	respondJSON(w, http.StatusOK, team)
}
