package db

import (
	"context"
	"strings"
	"time"

	"sprintcap/internal/schedule"
)

// DefaultLoadFactor is applied to generated templates and the sprints adopted
// from them.
const DefaultLoadFactor = 0.8

// Template is a reusable sprint definition inside a quarter. The trio
// (year, quarter, sprint_number) is unique. Templates are team-agnostic; a
// team adopts one to create its own sprint.
type Template struct {
	ID            int64     `json:"id"`
	Year          int       `json:"year"`
	Quarter       int       `json:"quarter"`
	SprintNumber  int       `json:"sprint_number"`
	Name          string    `json:"name"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	DurationWeeks int       `json:"duration_weeks"`
	LoadFactor    float64   `json:"load_factor"`
	CreatedAt     time.Time `json:"created_at"`
}

// TemplatePatch carries optional field updates; nil fields are left untouched.
type TemplatePatch struct {
	Name       *string  `json:"name"`
	StartDate  *string  `json:"start_date"`
	EndDate    *string  `json:"end_date"`
	LoadFactor *float64 `json:"load_factor"`
}

// QuarterRef identifies a quarter that has templates defined.
type QuarterRef struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

func scanTemplate(r rowScanner) (Template, error) {
	var t Template
	err := r.Scan(&t.ID, &t.Year, &t.Quarter, &t.SprintNumber, &t.Name,
		&t.StartDate, &t.EndDate, &t.DurationWeeks, &t.LoadFactor, &t.CreatedAt)
	return t, err
}

const templateColumns = "id, year, quarter, sprint_number, name, start_date, end_date, duration_weeks, load_factor, created_at"

// ListTemplates returns all templates, newest quarter first, ordered within a
// quarter by sprint number.
func (db *DB) ListTemplates(ctx context.Context) ([]Template, error) {
	return queryAll(ctx, db, scanTemplate,
		"SELECT "+templateColumns+" FROM sprint_templates ORDER BY year DESC, quarter DESC, sprint_number ASC")
}

// GetTemplate returns one template or ErrNotFound.
func (db *DB) GetTemplate(ctx context.Context, id int64) (*Template, error) {
	return queryOne(ctx, db, scanTemplate,
		"SELECT "+templateColumns+" FROM sprint_templates WHERE id = ?", id)
}

// TemplatesByQuarter returns one quarter's templates in sprint order.
func (db *DB) TemplatesByQuarter(ctx context.Context, year, quarter int) ([]Template, error) {
	return queryAll(ctx, db, scanTemplate,
		"SELECT "+templateColumns+" FROM sprint_templates WHERE year = ? AND quarter = ? ORDER BY sprint_number ASC",
		year, quarter)
}

// AvailableQuarters lists the quarters that have at least one template,
// newest first.
func (db *DB) AvailableQuarters(ctx context.Context) ([]QuarterRef, error) {
	return queryAll(ctx, db, func(r rowScanner) (QuarterRef, error) {
		var q QuarterRef
		err := r.Scan(&q.Year, &q.Quarter)
		return q, err
	}, "SELECT DISTINCT year, quarter FROM sprint_templates ORDER BY year DESC, quarter DESC")
}

// NewTemplate holds the fields accepted when creating a template directly.
type NewTemplate struct {
	Year          int
	Quarter       int
	SprintNumber  int
	Name          string
	StartDate     string
	EndDate       string
	DurationWeeks int
	LoadFactor    float64
}

// CreateTemplate inserts a single template row.
func (db *DB) CreateTemplate(ctx context.Context, nt NewTemplate) (*Template, error) {
	id, err := insertReturning(ctx, db,
		`INSERT INTO sprint_templates (year, quarter, sprint_number, name, start_date, end_date, duration_weeks, load_factor)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		nt.Year, nt.Quarter, nt.SprintNumber, nt.Name, nt.StartDate, nt.EndDate, nt.DurationWeeks, nt.LoadFactor)
	if err != nil {
		return nil, err
	}
	return db.GetTemplate(ctx, id)
}

// UpdateTemplate applies a partial update.
func (db *DB) UpdateTemplate(ctx context.Context, id int64, p TemplatePatch) error {
	fields := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if p.Name != nil {
		fields = append(fields, "name = ?")
		args = append(args, *p.Name)
	}
	if p.StartDate != nil {
		fields = append(fields, "start_date = ?")
		args = append(args, *p.StartDate)
	}
	if p.EndDate != nil {
		fields = append(fields, "end_date = ?")
		args = append(args, *p.EndDate)
	}
	if p.LoadFactor != nil {
		fields = append(fields, "load_factor = ?")
		args = append(args, *p.LoadFactor)
	}

	if len(fields) == 0 {
		return ErrNoFields
	}

	args = append(args, id)
	affected, err := queryRun(ctx, db,
		"UPDATE sprint_templates SET "+strings.Join(fields, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTemplate removes a template. Sprints adopted from it keep their dates;
// their template reference is nulled by the schema.
func (db *DB) DeleteTemplate(ctx context.Context, id int64) error {
	affected, err := queryRun(ctx, db, "DELETE FROM sprint_templates WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GenerateQuarter lays out back-to-back sprint templates across a quarter and
// persists the whole batch in one transaction, so a mid-batch failure (such as
// colliding with an already-generated quarter) leaves nothing behind. Names
// follow the "<year> Q<quarter> Sprint <n>" convention.
func (db *DB) GenerateQuarter(ctx context.Context, year, quarter, weeks int, firstStart time.Time) ([]Template, error) {
	windows := schedule.Windows(year, quarter, weeks, firstStart)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(windows))
	for _, w := range windows {
		var id int64
		err := tx.QueryRowContext(ctx,
			db.rebind(`INSERT INTO sprint_templates (year, quarter, sprint_number, name, start_date, end_date, duration_weeks, load_factor)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
			year, quarter, w.Number, schedule.SprintName(year, quarter, w.Number),
			w.Start.Format(schedule.DateLayout), w.End.Format(schedule.DateLayout),
			weeks, DefaultLoadFactor).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	out := make([]Template, 0, len(ids))
	for _, id := range ids {
		t, err := db.GetTemplate(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

// AdoptTemplate creates a team sprint from a template in a single insert. The
// sprint keeps a reference to the template and its quarter, inherits the
// template's load factor, and starts non-current. Start and end dates may be
// overridden.
func (db *DB) AdoptTemplate(ctx context.Context, templateID, teamID int64, startOverride, endOverride *string) (*Sprint, error) {
	t, err := db.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	start := t.StartDate
	if startOverride != nil {
		start = *startOverride
	}
	end := t.EndDate
	if endOverride != nil {
		end = *endOverride
	}

	id, err := insertReturning(ctx, db,
		`INSERT INTO sprints (team_id, template_id, name, year, quarter, start_date, end_date, is_current, load_factor)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		teamID, t.ID, t.Name, t.Year, t.Quarter, start, end, false, t.LoadFactor)
	if err != nil {
		return nil, err
	}
	return db.GetSprint(ctx, id)
}
