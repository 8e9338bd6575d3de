package db

import (
	"context"
)

// Holiday marks one member absent on one date inside a sprint. The triple
// (sprint, member, date) is unique.
type Holiday struct {
	ID       int64  `json:"id"`
	SprintID int64  `json:"sprint_id"`
	MemberID int64  `json:"member_id"`
	Date     string `json:"date"`
}

func scanHoliday(r rowScanner) (Holiday, error) {
	var h Holiday
	err := r.Scan(&h.ID, &h.SprintID, &h.MemberID, &h.Date)
	return h, err
}

const holidayColumns = "id, sprint_id, member_id, date"

// HolidaysBySprint returns a sprint's holidays ordered by date then member.
func (db *DB) HolidaysBySprint(ctx context.Context, sprintID int64) ([]Holiday, error) {
	return queryAll(ctx, db, scanHoliday,
		"SELECT "+holidayColumns+" FROM holidays WHERE sprint_id = ? ORDER BY date, member_id", sprintID)
}

// HolidaysBySprintAndMember returns one member's holidays within a sprint.
func (db *DB) HolidaysBySprintAndMember(ctx context.Context, sprintID, memberID int64) ([]Holiday, error) {
	return queryAll(ctx, db, scanHoliday,
		"SELECT "+holidayColumns+" FROM holidays WHERE sprint_id = ? AND member_id = ? ORDER BY date",
		sprintID, memberID)
}

// HolidayCounts returns the number of holiday dates per member for a sprint.
func (db *DB) HolidayCounts(ctx context.Context, sprintID int64) (map[int64]int, error) {
	type row struct {
		memberID int64
		count    int
	}
	rows, err := queryAll(ctx, db, func(r rowScanner) (row, error) {
		var v row
		err := r.Scan(&v.memberID, &v.count)
		return v, err
	}, "SELECT member_id, COUNT(*) FROM holidays WHERE sprint_id = ? GROUP BY member_id", sprintID)
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int, len(rows))
	for _, r := range rows {
		counts[r.memberID] = r.count
	}
	return counts, nil
}

// CreateHoliday records an absence. A duplicate date for the same member and
// sprint fails the unique constraint; callers detect that with IsConflict.
func (db *DB) CreateHoliday(ctx context.Context, sprintID, memberID int64, date string) (*Holiday, error) {
	id, err := insertReturning(ctx, db,
		"INSERT INTO holidays (sprint_id, member_id, date) VALUES (?, ?, ?) RETURNING id",
		sprintID, memberID, date)
	if err != nil {
		return nil, err
	}
	return queryOne(ctx, db, scanHoliday,
		"SELECT "+holidayColumns+" FROM holidays WHERE id = ?", id)
}

// DeleteHoliday removes an absence by id.
func (db *DB) DeleteHoliday(ctx context.Context, id int64) error {
	affected, err := queryRun(ctx, db, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleHoliday flips an absence for (sprint, member, date): if it exists it is
// removed, otherwise it is added. Returns true when the date is now marked.
func (db *DB) ToggleHoliday(ctx context.Context, sprintID, memberID int64, date string) (bool, error) {
	affected, err := queryRun(ctx, db,
		"DELETE FROM holidays WHERE sprint_id = ? AND member_id = ? AND date = ?",
		sprintID, memberID, date)
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return false, nil
	}

	_, err = queryRun(ctx, db,
		"INSERT INTO holidays (sprint_id, member_id, date) VALUES (?, ?, ?)",
		sprintID, memberID, date)
	if err != nil {
		return false, err
	}
	return true, nil
}
