package api

import (
	"net/http"
	"strconv"
	"testing"

	"sprintcap/internal/db"
)

func TestCreateMember(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	capacity := 8
	rec, req := MakeRequest(t, http.MethodPost, "/api/members", CreateMemberRequest{
		Name:            "Avi",
		Role:            "engineer",
		DefaultCapacity: &capacity,
	})
	ts.HandleCreateMember(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusCreated)

	var m db.Member
	DecodeJSON(t, rec, &m)
	if m.Name != "Avi" || m.Role != "engineer" || m.DefaultCapacity != 8 {
		t.Errorf("unexpected member: %+v", m)
	}
}

func TestCreateMemberValidation(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	capacity := 8
	rec, req := MakeRequest(t, http.MethodPost, "/api/members", CreateMemberRequest{
		Role: "engineer", DefaultCapacity: &capacity,
	})
	ts.HandleCreateMember(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusBadRequest)

	negative := -1
	rec, req = MakeRequest(t, http.MethodPost, "/api/members", CreateMemberRequest{
		Name: "Avi", Role: "engineer", DefaultCapacity: &negative,
	})
	ts.HandleCreateMember(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusBadRequest)

	rec, req = MakeRequest(t, http.MethodPost, "/api/members", CreateMemberRequest{
		Name: "Avi", Role: "engineer",
	})
	ts.HandleCreateMember(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestListMembersOrderedByName(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestMember(t, "Noa", "engineer", 5)
	ts.CreateTestMember(t, "Avi", "engineer", 8)
	ts.CreateTestMember(t, "Dana", "qa", 6)

	rec, req := MakeRequest(t, http.MethodGet, "/api/members", nil)
	ts.HandleListMembers(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var members []db.Member
	DecodeJSON(t, rec, &members)
	if len(members) != 3 {
		t.Fatalf("got %d members, want 3", len(members))
	}
	want := []string{"Avi", "Dana", "Noa"}
	for i, m := range members {
		if m.Name != want[i] {
			t.Errorf("member %d = %q, want %q", i, m.Name, want[i])
		}
	}
}

func TestUpdateMember(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	m := ts.CreateTestMember(t, "Avi", "engineer", 8)

	newCapacity := 6
	rec, req := MakeRequest(t, http.MethodPut, "/api/members/1", db.MemberPatch{DefaultCapacity: &newCapacity})
	req = WithURLParams(req, map[string]string{"id": strconv.FormatInt(m.ID, 10)})
	ts.HandleUpdateMember(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var updated db.Member
	DecodeJSON(t, rec, &updated)
	if updated.DefaultCapacity != 6 {
		t.Errorf("DefaultCapacity = %d, want 6", updated.DefaultCapacity)
	}
	if updated.Name != "Avi" {
		t.Errorf("Name changed unexpectedly to %q", updated.Name)
	}
}

func TestUpdateMemberEmptyPatch(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	m := ts.CreateTestMember(t, "Avi", "engineer", 8)

	rec, req := MakeRequest(t, http.MethodPut, "/api/members/1", db.MemberPatch{})
	req = WithURLParams(req, map[string]string{"id": strconv.FormatInt(m.ID, 10)})
	ts.HandleUpdateMember(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestDeleteMemberNotFound(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	rec, req := MakeRequest(t, http.MethodDelete, "/api/members/42", nil)
	req = WithURLParams(req, map[string]string{"id": "42"})
	ts.HandleDeleteMember(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusNotFound)
}
