package api

import (
	"net/http"
	"strconv"
	"testing"

	"sprintcap/internal/db"
)

func TestDefaultTeamIsSeeded(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	rec, req := MakeRequest(t, http.MethodGet, "/api/teams", nil)
	ts.HandleListTeams(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var teams []db.Team
	DecodeJSON(t, rec, &teams)
	if len(teams) != 1 {
		t.Fatalf("got %d teams, want the seeded default", len(teams))
	}
	if teams[0].ID != db.DefaultTeamID || teams[0].Name != "Default Team" {
		t.Errorf("seeded team = %+v", teams[0])
	}
}

func TestDefaultTeamCannotBeDeleted(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	rec, req := MakeRequest(t, http.MethodDelete, "/api/teams/1", nil)
	req = WithURLParams(req, map[string]string{"id": "1"})
	ts.HandleDeleteTeam(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestCreateTeamDuplicateNameConflicts(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	rec, req := MakeRequest(t, http.MethodPost, "/api/teams", CreateTeamRequest{Name: "Platform"})
	ts.HandleCreateTeam(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusCreated)

	rec, req = MakeRequest(t, http.MethodPost, "/api/teams", CreateTeamRequest{Name: "Platform"})
	ts.HandleCreateTeam(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusConflict)
}

func TestTeamMembership(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	team := ts.CreateTestTeam(t, "Platform")
	m1 := ts.CreateTestMember(t, "Noa", "engineer", 5)
	m2 := ts.CreateTestMember(t, "Avi", "engineer", 8)

	for _, id := range []int64{m1.ID, m2.ID} {
		rec, req := MakeRequest(t, http.MethodPost, "/api/teams/2/members", AddTeamMemberRequest{MemberID: id})
		req = WithURLParams(req, map[string]string{"id": strconv.FormatInt(team.ID, 10)})
		ts.HandleAddTeamMember(rec, req)
		AssertStatusCode(t, rec.Code, http.StatusCreated)
	}

	// Re-adding is a no-op, not an error.
	rec, req := MakeRequest(t, http.MethodPost, "/api/teams/2/members", AddTeamMemberRequest{MemberID: m1.ID})
	req = WithURLParams(req, map[string]string{"id": strconv.FormatInt(team.ID, 10)})
	ts.HandleAddTeamMember(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusCreated)

	rec, req = MakeRequest(t, http.MethodGet, "/api/teams/2/members", nil)
	req = WithURLParams(req, map[string]string{"id": strconv.FormatInt(team.ID, 10)})
	ts.HandleGetTeamMembers(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var members []db.Member
	DecodeJSON(t, rec, &members)
	if len(members) != 2 {
		t.Fatalf("got %d team members, want 2", len(members))
	}
	if members[0].Name != "Avi" || members[1].Name != "Noa" {
		t.Errorf("members not ordered by name: %q, %q", members[0].Name, members[1].Name)
	}

	rec, req = MakeRequest(t, http.MethodDelete, "/api/teams/2/members/1", nil)
	req = WithURLParams(req, map[string]string{
		"id":       strconv.FormatInt(team.ID, 10),
		"memberId": strconv.FormatInt(m1.ID, 10),
	})
	ts.HandleRemoveTeamMember(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	rec, req = MakeRequest(t, http.MethodGet, "/api/teams/2/members", nil)
	req = WithURLParams(req, map[string]string{"id": strconv.FormatInt(team.ID, 10)})
	ts.HandleGetTeamMembers(rec, req)

	DecodeJSON(t, rec, &members)
	if len(members) != 1 {
		t.Errorf("got %d team members after removal, want 1", len(members))
	}
}

func TestUploadTeamLogoUnconfigured(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	rec, req := MakeRequest(t, http.MethodPost, "/api/teams/1/logo", nil)
	req = WithURLParams(req, map[string]string{"id": "1"})
	ts.HandleUploadTeamLogo(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusServiceUnavailable)
}
