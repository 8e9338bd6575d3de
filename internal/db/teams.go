package db

import (
	"context"
	"strings"
	"time"
)

// DefaultTeamID is seeded by the initial migration and cannot be deleted.
const DefaultTeamID = 1

// Team owns sprints and references members through the membership relation.
type Team struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	LogoURL   *string   `json:"logo_url"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamPatch carries optional field updates; nil fields are left untouched.
type TeamPatch struct {
	Name    *string `json:"name"`
	LogoURL *string `json:"logo_url"`
}

func scanTeam(r rowScanner) (Team, error) {
	var t Team
	err := r.Scan(&t.ID, &t.Name, &t.LogoURL, &t.CreatedAt)
	return t, err
}

const teamColumns = "id, name, logo_url, created_at"

// ListTeams returns all teams ordered by name.
func (db *DB) ListTeams(ctx context.Context) ([]Team, error) {
	return queryAll(ctx, db, scanTeam,
		"SELECT "+teamColumns+" FROM teams ORDER BY name")
}

// GetTeam returns one team or ErrNotFound.
func (db *DB) GetTeam(ctx context.Context, id int64) (*Team, error) {
	return queryOne(ctx, db, scanTeam,
		"SELECT "+teamColumns+" FROM teams WHERE id = ?", id)
}

// CreateTeam inserts a new team and returns it.
func (db *DB) CreateTeam(ctx context.Context, name string, logoURL *string) (*Team, error) {
	id, err := insertReturning(ctx, db,
		"INSERT INTO teams (name, logo_url) VALUES (?, ?) RETURNING id",
		name, logoURL)
	if err != nil {
		return nil, err
	}
	return db.GetTeam(ctx, id)
}

// UpdateTeam applies a partial update.
func (db *DB) UpdateTeam(ctx context.Context, id int64, p TeamPatch) error {
	fields := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if p.Name != nil {
		fields = append(fields, "name = ?")
		args = append(args, *p.Name)
	}
	if p.LogoURL != nil {
		fields = append(fields, "logo_url = ?")
		args = append(args, *p.LogoURL)
	}

	if len(fields) == 0 {
		return ErrNoFields
	}

	args = append(args, id)
	affected, err := queryRun(ctx, db,
		"UPDATE teams SET "+strings.Join(fields, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTeam removes a team; its sprints and their holidays cascade.
func (db *DB) DeleteTeam(ctx context.Context, id int64) error {
	affected, err := queryRun(ctx, db, "DELETE FROM teams WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// TeamMembers returns the members of one team ordered by name.
func (db *DB) TeamMembers(ctx context.Context, teamID int64) ([]Member, error) {
	return queryAll(ctx, db, scanMember,
		`SELECT tm.id, tm.name, tm.role, tm.default_capacity, tm.created_at
		 FROM team_members tm
		 INNER JOIN team_members_teams tmt ON tm.id = tmt.member_id
		 WHERE tmt.team_id = ?
		 ORDER BY tm.name`, teamID)
}

// AddTeamMember links a member to a team. Adding twice is a no-op.
func (db *DB) AddTeamMember(ctx context.Context, teamID, memberID int64) error {
	var query string
	if db.driver == "postgres" {
		query = "INSERT INTO team_members_teams (team_id, member_id) VALUES (?, ?) ON CONFLICT (team_id, member_id) DO NOTHING"
	} else {
		query = "INSERT OR IGNORE INTO team_members_teams (team_id, member_id) VALUES (?, ?)"
	}
	_, err := queryRun(ctx, db, query, teamID, memberID)
	return err
}

// RemoveTeamMember unlinks a member from a team.
func (db *DB) RemoveTeamMember(ctx context.Context, teamID, memberID int64) error {
	affected, err := queryRun(ctx, db,
		"DELETE FROM team_members_teams WHERE team_id = ? AND member_id = ?",
		teamID, memberID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
