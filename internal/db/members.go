package db

import (
	"context"
	"strings"
	"time"
)

// Member is a person who can belong to any number of teams. DefaultCapacity is
// story points per two-working-week sprint at full availability.
type Member struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	DefaultCapacity int       `json:"default_capacity"`
	CreatedAt       time.Time `json:"created_at"`
}

// MemberPatch carries optional field updates; nil fields are left untouched.
type MemberPatch struct {
	Name            *string `json:"name"`
	Role            *string `json:"role"`
	DefaultCapacity *int    `json:"default_capacity"`
}

func scanMember(r rowScanner) (Member, error) {
	var m Member
	err := r.Scan(&m.ID, &m.Name, &m.Role, &m.DefaultCapacity, &m.CreatedAt)
	return m, err
}

const memberColumns = "id, name, role, default_capacity, created_at"

// ListMembers returns all team members ordered by name.
func (db *DB) ListMembers(ctx context.Context) ([]Member, error) {
	return queryAll(ctx, db, scanMember,
		"SELECT "+memberColumns+" FROM team_members ORDER BY name")
}

// GetMember returns one member or ErrNotFound.
func (db *DB) GetMember(ctx context.Context, id int64) (*Member, error) {
	return queryOne(ctx, db, scanMember,
		"SELECT "+memberColumns+" FROM team_members WHERE id = ?", id)
}

// CreateMember inserts a new member and returns it.
func (db *DB) CreateMember(ctx context.Context, name, role string, defaultCapacity int) (*Member, error) {
	id, err := insertReturning(ctx, db,
		"INSERT INTO team_members (name, role, default_capacity) VALUES (?, ?, ?) RETURNING id",
		name, role, defaultCapacity)
	if err != nil {
		return nil, err
	}
	return db.GetMember(ctx, id)
}

// UpdateMember applies a partial update. Returns ErrNoFields for an empty
// patch and ErrNotFound if the member does not exist.
func (db *DB) UpdateMember(ctx context.Context, id int64, p MemberPatch) error {
	fields := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if p.Name != nil {
		fields = append(fields, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Role != nil {
		fields = append(fields, "role = ?")
		args = append(args, *p.Role)
	}
	if p.DefaultCapacity != nil {
		fields = append(fields, "default_capacity = ?")
		args = append(args, *p.DefaultCapacity)
	}

	if len(fields) == 0 {
		return ErrNoFields
	}

	args = append(args, id)
	affected, err := queryRun(ctx, db,
		"UPDATE team_members SET "+strings.Join(fields, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMember removes a member; dependent holidays, retro items and
// memberships cascade in the schema.
func (db *DB) DeleteMember(ctx context.Context, id int64) error {
	affected, err := queryRun(ctx, db, "DELETE FROM team_members WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
