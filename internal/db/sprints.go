package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Sprint is a team's fixed planning window. Dates are inclusive calendar dates
// in YYYY-MM-DD form. At most one sprint per team carries IsCurrent.
type Sprint struct {
	ID         int64     `json:"id"`
	TeamID     int64     `json:"team_id"`
	TemplateID *int64    `json:"template_id"`
	Name       string    `json:"name"`
	Year       *int      `json:"year"`
	Quarter    *int      `json:"quarter"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	IsCurrent  bool      `json:"is_current"`
	LoadFactor float64   `json:"load_factor"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewSprint holds the fields accepted when creating a sprint directly.
type NewSprint struct {
	TeamID     int64
	Name       string
	StartDate  string
	EndDate    string
	IsCurrent  bool
	LoadFactor float64
}

// SprintPatch carries optional field updates; nil fields are left untouched.
type SprintPatch struct {
	Name       *string  `json:"name"`
	StartDate  *string  `json:"start_date"`
	EndDate    *string  `json:"end_date"`
	IsCurrent  *bool    `json:"is_current"`
	LoadFactor *float64 `json:"load_factor"`
}

func scanSprint(r rowScanner) (Sprint, error) {
	var s Sprint
	err := r.Scan(&s.ID, &s.TeamID, &s.TemplateID, &s.Name, &s.Year, &s.Quarter,
		&s.StartDate, &s.EndDate, &s.IsCurrent, &s.LoadFactor, &s.CreatedAt)
	return s, err
}

const sprintColumns = "id, team_id, template_id, name, year, quarter, start_date, end_date, is_current, load_factor, created_at"

// ListSprints returns sprints ordered by start date, newest first, optionally
// filtered to one team.
func (db *DB) ListSprints(ctx context.Context, teamID *int64) ([]Sprint, error) {
	if teamID != nil {
		return queryAll(ctx, db, scanSprint,
			"SELECT "+sprintColumns+" FROM sprints WHERE team_id = ? ORDER BY start_date DESC", *teamID)
	}
	return queryAll(ctx, db, scanSprint,
		"SELECT "+sprintColumns+" FROM sprints ORDER BY start_date DESC")
}

// GetSprint returns one sprint or ErrNotFound.
func (db *DB) GetSprint(ctx context.Context, id int64) (*Sprint, error) {
	return queryOne(ctx, db, scanSprint,
		"SELECT "+sprintColumns+" FROM sprints WHERE id = ?", id)
}

// CurrentSprint returns the sprint flagged current, optionally scoped to a team.
func (db *DB) CurrentSprint(ctx context.Context, teamID *int64) (*Sprint, error) {
	if teamID != nil {
		return queryOne(ctx, db, scanSprint,
			"SELECT "+sprintColumns+" FROM sprints WHERE is_current = ? AND team_id = ? LIMIT 1", true, *teamID)
	}
	return queryOne(ctx, db, scanSprint,
		"SELECT "+sprintColumns+" FROM sprints WHERE is_current = ? LIMIT 1", true)
}

// CreateSprint inserts a sprint. When the new sprint is current, the current
// flag is cleared on the team's other sprints in the same transaction.
func (db *DB) CreateSprint(ctx context.Context, ns NewSprint) (*Sprint, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if ns.IsCurrent {
		if _, err := tx.ExecContext(ctx,
			db.rebind("UPDATE sprints SET is_current = ? WHERE team_id = ?"),
			false, ns.TeamID); err != nil {
			return nil, err
		}
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		db.rebind(`INSERT INTO sprints (team_id, name, start_date, end_date, is_current, load_factor)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		ns.TeamID, ns.Name, ns.StartDate, ns.EndDate, ns.IsCurrent, ns.LoadFactor).Scan(&id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return db.GetSprint(ctx, id)
}

// UpdateSprint applies a partial update. Setting IsCurrent to true clears the
// flag on the team's sibling sprints atomically with the update itself.
func (db *DB) UpdateSprint(ctx context.Context, id int64, p SprintPatch) error {
	fields := make([]string, 0, 5)
	args := make([]any, 0, 6)

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
	if p.IsCurrent != nil {
		fields = append(fields, "is_current = ?")
		args = append(args, *p.IsCurrent)
	}
	if p.LoadFactor != nil {
		fields = append(fields, "load_factor = ?")
		args = append(args, *p.LoadFactor)
	}

	if len(fields) == 0 {
		return ErrNoFields
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if p.IsCurrent != nil && *p.IsCurrent {
		var teamID int64
		err := tx.QueryRowContext(ctx,
			db.rebind("SELECT team_id FROM sprints WHERE id = ?"), id).Scan(&teamID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			db.rebind("UPDATE sprints SET is_current = ? WHERE team_id = ? AND id <> ?"),
			false, teamID, id); err != nil {
			return err
		}
	}

	args = append(args, id)
	res, err := tx.ExecContext(ctx,
		db.rebind("UPDATE sprints SET "+strings.Join(fields, ", ")+" WHERE id = ?"), args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// DeleteSprint removes a sprint; its holidays and retro items cascade. Deleting
// the current sprint leaves the team with no current sprint.
func (db *DB) DeleteSprint(ctx context.Context, id int64) error {
	affected, err := queryRun(ctx, db, "DELETE FROM sprints WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
