package db

import (
	"context"
	"strings"
	"time"
)

// Retro item types, enforced by a CHECK constraint in the schema.
const (
	RetroWentWell      = "what_went_well"
	RetroWentWrong     = "what_went_wrong"
	RetroLessonLearned = "lesson_learned"
	RetroTodo          = "todo"
)

// ValidRetroType reports whether t is one of the four retro columns.
func ValidRetroType(t string) bool {
	switch t {
	case RetroWentWell, RetroWentWrong, RetroLessonLearned, RetroTodo:
		return true
	}
	return false
}

// RetroItem is one card on a sprint's retrospective board.
type RetroItem struct {
	ID        int64     `json:"id"`
	SprintID  int64     `json:"sprint_id"`
	MemberID  int64     `json:"member_id"`
	TeamID    int64     `json:"team_id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// RetroItemPatch carries optional field updates; nil fields are left untouched.
type RetroItemPatch struct {
	Type    *string `json:"type"`
	Content *string `json:"content"`
}

func scanRetroItem(r rowScanner) (RetroItem, error) {
	var ri RetroItem
	err := r.Scan(&ri.ID, &ri.SprintID, &ri.MemberID, &ri.TeamID, &ri.Type, &ri.Content, &ri.CreatedAt)
	return ri, err
}

const retroColumns = "id, sprint_id, member_id, team_id, type, content, created_at"

// RetroItemsBySprint returns a sprint's retro items in creation order.
func (db *DB) RetroItemsBySprint(ctx context.Context, sprintID int64) ([]RetroItem, error) {
	return queryAll(ctx, db, scanRetroItem,
		"SELECT "+retroColumns+" FROM retro_items WHERE sprint_id = ? ORDER BY id", sprintID)
}

// RetroItemsByTeam returns a team's retro items across all its sprints,
// newest first.
func (db *DB) RetroItemsByTeam(ctx context.Context, teamID int64) ([]RetroItem, error) {
	return queryAll(ctx, db, scanRetroItem,
		"SELECT "+retroColumns+" FROM retro_items WHERE team_id = ? ORDER BY id DESC", teamID)
}

// GetRetroItem returns one item or ErrNotFound.
func (db *DB) GetRetroItem(ctx context.Context, id int64) (*RetroItem, error) {
	return queryOne(ctx, db, scanRetroItem,
		"SELECT "+retroColumns+" FROM retro_items WHERE id = ?", id)
}

// CreateRetroItem adds a card to a sprint's board.
func (db *DB) CreateRetroItem(ctx context.Context, sprintID, memberID, teamID int64, itemType, content string) (*RetroItem, error) {
	id, err := insertReturning(ctx, db,
		"INSERT INTO retro_items (sprint_id, member_id, team_id, type, content) VALUES (?, ?, ?, ?, ?) RETURNING id",
		sprintID, memberID, teamID, itemType, content)
	if err != nil {
		return nil, err
	}
	return db.GetRetroItem(ctx, id)
}

// UpdateRetroItem applies a partial update.
func (db *DB) UpdateRetroItem(ctx context.Context, id int64, p RetroItemPatch) error {
	fields := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if p.Type != nil {
		fields = append(fields, "type = ?")
		args = append(args, *p.Type)
	}
	if p.Content != nil {
		fields = append(fields, "content = ?")
		args = append(args, *p.Content)
	}

	if len(fields) == 0 {
		return ErrNoFields
	}

	args = append(args, id)
	affected, err := queryRun(ctx, db,
		"UPDATE retro_items SET "+strings.Join(fields, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRetroItem removes a card.
func (db *DB) DeleteRetroItem(ctx context.Context, id int64) error {
	affected, err := queryRun(ctx, db, "DELETE FROM retro_items WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
