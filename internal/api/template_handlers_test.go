package api

import (
	"net/http"
	"strconv"
	"testing"

	"sprintcap/internal/db"
)

func TestGenerateTemplatesForQuarter(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	rec, req := MakeRequest(t, http.MethodPost, "/api/templates/generate", GenerateTemplatesRequest{
		Year:             2025,
		Quarter:          1,
		DurationWeeks:    2,
		FirstSprintStart: "2025-01-01",
	})
	ts.HandleGenerateTemplates(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusCreated)

	var templates []db.Template
	DecodeJSON(t, rec, &templates)

	// Q1 2025 is 90 days: six two-week sprints fit, the partial seventh is
	// dropped.
	if len(templates) != 6 {
		t.Fatalf("got %d templates, want 6", len(templates))
	}
	if templates[0].Name != "2025 Q1 Sprint 1" {
		t.Errorf("first name = %q, want %q", templates[0].Name, "2025 Q1 Sprint 1")
	}
	if templates[5].EndDate != "2025-03-25" {
		t.Errorf("last end = %s, want 2025-03-25", templates[5].EndDate)
	}
	for i, tpl := range templates {
		if tpl.SprintNumber != i+1 {
			t.Errorf("template %d has sprint_number %d", i, tpl.SprintNumber)
		}
		if tpl.DurationWeeks != 2 {
			t.Errorf("template %d has duration_weeks %d, want 2", i, tpl.DurationWeeks)
		}
		if tpl.LoadFactor != 0.8 {
			t.Errorf("template %d has load_factor %v, want 0.8", i, tpl.LoadFactor)
		}
	}
}

func TestGenerateTemplatesValidation(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	tests := []struct {
		name string
		req  GenerateTemplatesRequest
	}{
		{"quarter too small", GenerateTemplatesRequest{Year: 2025, Quarter: 0, DurationWeeks: 2, FirstSprintStart: "2025-01-01"}},
		{"quarter too large", GenerateTemplatesRequest{Year: 2025, Quarter: 5, DurationWeeks: 2, FirstSprintStart: "2025-01-01"}},
		{"zero duration", GenerateTemplatesRequest{Year: 2025, Quarter: 1, DurationWeeks: 0, FirstSprintStart: "2025-01-01"}},
		{"duration too long", GenerateTemplatesRequest{Year: 2025, Quarter: 1, DurationWeeks: 9, FirstSprintStart: "2025-01-01"}},
		{"bad date", GenerateTemplatesRequest{Year: 2025, Quarter: 1, DurationWeeks: 2, FirstSprintStart: "January 1st"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, req := MakeRequest(t, http.MethodPost, "/api/templates/generate", tt.req)
			ts.HandleGenerateTemplates(rec, req)
			AssertStatusCode(t, rec.Code, http.StatusBadRequest)
		})
	}
}

func TestCreateTemplateRejectsLoadFactorOutOfRange(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	for _, lf := range []float64{0, -0.2, 1.5} {
		rec, req := MakeRequest(t, http.MethodPost, "/api/templates", CreateTemplateRequest{
			Year: 2025, Quarter: 1, SprintNumber: 1, Name: "2025 Q1 Sprint 1",
			StartDate: "2025-01-01", EndDate: "2025-01-14", DurationWeeks: 2,
			LoadFactor: &lf,
		})
		ts.HandleCreateTemplate(rec, req)
		AssertStatusCode(t, rec.Code, http.StatusBadRequest)

		var errResp ErrorResponse
		DecodeJSON(t, rec, &errResp)
		if errResp.Code != "validation_error" {
			t.Errorf("load_factor %v: error code = %q, want validation_error", lf, errResp.Code)
		}
	}
}

func TestUpdateTemplateRejectsLoadFactorOutOfRange(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	rec, req := MakeRequest(t, http.MethodPost, "/api/templates", CreateTemplateRequest{
		Year: 2025, Quarter: 1, SprintNumber: 1, Name: "2025 Q1 Sprint 1",
		StartDate: "2025-01-01", EndDate: "2025-01-14", DurationWeeks: 2,
	})
	ts.HandleCreateTemplate(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusCreated)

	var tpl db.Template
	DecodeJSON(t, rec, &tpl)

	bad := 1.2
	rec, req = MakeRequest(t, http.MethodPut, "/api/templates/1", db.TemplatePatch{LoadFactor: &bad})
	req = WithURLParams(req, map[string]string{"id": strconv.FormatInt(tpl.ID, 10)})
	ts.HandleUpdateTemplate(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestGenerateTemplatesTwiceConflictsAtomically(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	rec, req := MakeRequest(t, http.MethodPost, "/api/templates/generate", GenerateTemplatesRequest{
		Year: 2025, Quarter: 1, DurationWeeks: 2, FirstSprintStart: "2025-01-01",
	})
	ts.HandleGenerateTemplates(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusCreated)

	// The second batch collides with (year, quarter, sprint_number) uniqueness
	// on its first row; the transaction must leave no partial rows behind.
	rec, req = MakeRequest(t, http.MethodPost, "/api/templates/generate", GenerateTemplatesRequest{
		Year: 2025, Quarter: 1, DurationWeeks: 2, FirstSprintStart: "2025-01-01",
	})
	ts.HandleGenerateTemplates(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusConflict)

	rec, req = MakeRequest(t, http.MethodGet, "/api/templates", nil)
	ts.HandleListTemplates(rec, req)

	var templates []db.Template
	DecodeJSON(t, rec, &templates)
	if len(templates) != 6 {
		t.Errorf("got %d templates after failed regeneration, want 6", len(templates))
	}
}

func TestAdoptTemplate(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	rec, req := MakeRequest(t, http.MethodPost, "/api/templates/generate", GenerateTemplatesRequest{
		Year: 2025, Quarter: 2, DurationWeeks: 2, FirstSprintStart: "2025-04-01",
	})
	ts.HandleGenerateTemplates(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusCreated)

	var templates []db.Template
	DecodeJSON(t, rec, &templates)
	tpl := templates[0]

	rec, req = MakeRequest(t, http.MethodPost, "/api/templates/1/adopt", AdoptTemplateRequest{})
	req = WithURLParams(req, map[string]string{"id": strconv.FormatInt(tpl.ID, 10)})
	ts.HandleAdoptTemplate(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusCreated)

	var sprint db.Sprint
	DecodeJSON(t, rec, &sprint)

	if sprint.TemplateID == nil || *sprint.TemplateID != tpl.ID {
		t.Errorf("TemplateID = %v, want %d", sprint.TemplateID, tpl.ID)
	}
	if sprint.Name != tpl.Name {
		t.Errorf("Name = %q, want %q", sprint.Name, tpl.Name)
	}
	if sprint.Year == nil || *sprint.Year != 2025 || sprint.Quarter == nil || *sprint.Quarter != 2 {
		t.Errorf("sprint quarter ref = %v/%v, want 2025/2", sprint.Year, sprint.Quarter)
	}
	if sprint.StartDate != tpl.StartDate || sprint.EndDate != tpl.EndDate {
		t.Errorf("sprint window = %s..%s, want %s..%s", sprint.StartDate, sprint.EndDate, tpl.StartDate, tpl.EndDate)
	}
	if sprint.IsCurrent {
		t.Error("adopted sprint must not start as current")
	}
	if sprint.LoadFactor != tpl.LoadFactor {
		t.Errorf("LoadFactor = %v, want %v", sprint.LoadFactor, tpl.LoadFactor)
	}
}

func TestAdoptTemplateWithDateOverride(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	rec, req := MakeRequest(t, http.MethodPost, "/api/templates/generate", GenerateTemplatesRequest{
		Year: 2025, Quarter: 2, DurationWeeks: 2, FirstSprintStart: "2025-04-01",
	})
	ts.HandleGenerateTemplates(rec, req)

	var templates []db.Template
	DecodeJSON(t, rec, &templates)
	tpl := templates[0]

	start := "2025-04-02"
	rec, req = MakeRequest(t, http.MethodPost, "/api/templates/1/adopt", AdoptTemplateRequest{StartDate: &start})
	req = WithURLParams(req, map[string]string{"id": strconv.FormatInt(tpl.ID, 10)})
	ts.HandleAdoptTemplate(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusCreated)

	var sprint db.Sprint
	DecodeJSON(t, rec, &sprint)

	if sprint.StartDate != start {
		t.Errorf("StartDate = %s, want override %s", sprint.StartDate, start)
	}
	if sprint.EndDate != tpl.EndDate {
		t.Errorf("EndDate = %s, want template's %s", sprint.EndDate, tpl.EndDate)
	}
}

func TestAdoptTemplateRejectsInvertedOverride(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	rec, req := MakeRequest(t, http.MethodPost, "/api/templates/generate", GenerateTemplatesRequest{
		Year: 2025, Quarter: 2, DurationWeeks: 2, FirstSprintStart: "2025-04-01",
	})
	ts.HandleGenerateTemplates(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusCreated)

	var templates []db.Template
	DecodeJSON(t, rec, &templates)
	tpl := templates[0]

	// Moving just the start past the template's end would invert the window.
	start := "2025-05-01"
	rec, req = MakeRequest(t, http.MethodPost, "/api/templates/1/adopt", AdoptTemplateRequest{StartDate: &start})
	req = WithURLParams(req, map[string]string{"id": strconv.FormatInt(tpl.ID, 10)})
	ts.HandleAdoptTemplate(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusBadRequest)

	var errResp ErrorResponse
	DecodeJSON(t, rec, &errResp)
	if errResp.Code != "validation_error" {
		t.Errorf("error code = %q, want validation_error", errResp.Code)
	}

	// No sprint was minted for the rejected window.
	rec, req = MakeRequest(t, http.MethodGet, "/api/sprints", nil)
	ts.HandleListSprints(rec, req)
	var sprints []db.Sprint
	DecodeJSON(t, rec, &sprints)
	if len(sprints) != 0 {
		t.Errorf("got %d sprints after rejected adoption, want 0", len(sprints))
	}
}

func TestAdoptMissingTemplate(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	rec, req := MakeRequest(t, http.MethodPost, "/api/templates/99/adopt", AdoptTemplateRequest{})
	req = WithURLParams(req, map[string]string{"id": "99"})
	ts.HandleAdoptTemplate(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestTemplateQuarterListing(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	for _, g := range []GenerateTemplatesRequest{
		{Year: 2024, Quarter: 4, DurationWeeks: 2, FirstSprintStart: "2024-10-01"},
		{Year: 2025, Quarter: 1, DurationWeeks: 2, FirstSprintStart: "2025-01-01"},
	} {
		rec, req := MakeRequest(t, http.MethodPost, "/api/templates/generate", g)
		ts.HandleGenerateTemplates(rec, req)
		AssertStatusCode(t, rec.Code, http.StatusCreated)
	}

	rec, req := MakeRequest(t, http.MethodGet, "/api/templates/quarters", nil)
	ts.HandleGetTemplateQuarters(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var quarters []db.QuarterRef
	DecodeJSON(t, rec, &quarters)
	if len(quarters) != 2 {
		t.Fatalf("got %d quarters, want 2", len(quarters))
	}
	if quarters[0].Year != 2025 || quarters[0].Quarter != 1 {
		t.Errorf("first quarter = %+v, want 2025 Q1", quarters[0])
	}

	rec, req = MakeRequest(t, http.MethodGet, "/api/templates/quarter/2024/4", nil)
	req = WithURLParams(req, map[string]string{"year": "2024", "quarter": "4"})
	ts.HandleGetQuarterTemplates(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var templates []db.Template
	DecodeJSON(t, rec, &templates)
	for _, tpl := range templates {
		if tpl.Year != 2024 || tpl.Quarter != 4 {
			t.Errorf("template %d belongs to %d Q%d, want 2024 Q4", tpl.ID, tpl.Year, tpl.Quarter)
		}
	}
}
