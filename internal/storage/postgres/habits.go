package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	pq "github.com/lib/pq"

	"github.com/julianstephens/keepstreak/internal/constants"
	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/utils"
)

const habitColumns = `id, user_id, name, description, color, icon, type, repeat, goal, goal_unit,
		active_days, start_date, end_date, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var habitType string
	var activeDays pq.Int64Array
	var endDate, deletedAt sql.NullTime

	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.Color, &h.Icon, &habitType, &h.Repeat,
		&h.Goal, &h.GoalUnit, &activeDays, &h.StartDate, &endDate, &h.CreatedAt, &h.UpdatedAt, &deletedAt)
	if err != nil {
		return models.Habit{}, err
	}
	h.Type = constants.HabitType(habitType)

	h.ActiveDays = make([]int, len(activeDays))
	for i, d := range activeDays {
		h.ActiveDays[i] = int(d)
	}
	h.StartDate = utils.DayOf(h.StartDate)
	if endDate.Valid {
		end := utils.DayOf(endDate.Time)
		h.EndDate = &end
	}
	h.CreatedAt = h.CreatedAt.UTC()
	h.UpdatedAt = h.UpdatedAt.UTC()
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		h.DeletedAt = &t
	}

	return h, nil
}

func activeDaysArg(days []int) pq.Int64Array {
	arr := make(pq.Int64Array, len(days))
	for i, d := range days {
		arr[i] = int64(d)
	}
	return arr
}

func (s *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}
	var endDate sql.NullString
	if habit.EndDate != nil {
		endDate = sql.NullString{String: utils.FormatDay(*habit.EndDate), Valid: true}
	}
	var deletedAt sql.NullTime
	if habit.DeletedAt != nil {
		deletedAt = sql.NullTime{Time: habit.DeletedAt.UTC(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		habit.ID, habit.UserID, habit.Name, habit.Description, habit.Color, habit.Icon, string(habit.Type),
		habit.Repeat, habit.Goal, habit.GoalUnit, activeDaysArg(habit.ActiveDays), utils.FormatDay(habit.StartDate),
		endDate, habit.CreatedAt.UTC(), habit.UpdatedAt.UTC(), deletedAt)
	if err != nil {
		return apperrors.Unavailable("add habit", err)
	}
	return nil
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) error {
	var endDate sql.NullString
	if habit.EndDate != nil {
		endDate = sql.NullString{String: utils.FormatDay(*habit.EndDate), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE habits SET name = $1, description = $2, color = $3, icon = $4, type = $5, repeat = $6,
			goal = $7, goal_unit = $8, active_days = $9, start_date = $10, end_date = $11, updated_at = $12
		WHERE id = $13 AND user_id = $14 AND deleted_at IS NULL`,
		habit.Name, habit.Description, habit.Color, habit.Icon, string(habit.Type), habit.Repeat,
		habit.Goal, habit.GoalUnit, activeDaysArg(habit.ActiveDays), utils.FormatDay(habit.StartDate), endDate,
		habit.UpdatedAt.UTC(), habit.ID, habit.UserID)
	if err != nil {
		return apperrors.Unavailable("update habit", err)
	}
	return expectRow(res, "update habit", habit.ID)
}

func (s *Store) GetHabit(ctx context.Context, userID, habitID string) (models.Habit, error) {
	h, err := getHabit(ctx, s.db, userID, habitID, false)
	if err != nil {
		return models.Habit{}, err
	}
	if h.Completions, err = completionsForHabit(ctx, s.db, h.ID); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

// getHabit loads a live habit. With lock set the row is held FOR UPDATE
// until the surrounding transaction ends.
func getHabit(ctx context.Context, q queryer, userID, habitID string, lock bool) (models.Habit, error) {
	query := `SELECT ` + habitColumns + `
		FROM habits WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`
	if lock {
		query += ` FOR UPDATE`
	}

	h, err := scanHabit(q.QueryRowContext(ctx, query, habitID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %s: %w", habitID, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Habit{}, apperrors.Unavailable("get habit", err)
	}
	return h, nil
}

func (s *Store) GetHabitByName(ctx context.Context, userID, name string) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+habitColumns+`
		FROM habits WHERE user_id = $1 AND lower(name) = lower($2) AND deleted_at IS NULL
		ORDER BY created_at LIMIT 1`, userID, name)

	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %q: %w", name, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Habit{}, apperrors.Unavailable("get habit by name", err)
	}
	if h.Completions, err = completionsForHabit(ctx, s.db, h.ID); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) GetHabitsForUser(ctx context.Context, userID string, includeDeleted bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY created_at, name`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Unavailable("list habits", err)
	}
	defer rows.Close()

	var habits []models.Habit
	index := make(map[string]int)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, apperrors.Unavailable("scan habit", err)
		}
		index[h.ID] = len(habits)
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable("list habits", err)
	}
	if len(habits) == 0 {
		return habits, nil
	}

	crows, err := s.db.QueryContext(ctx, `
		SELECT `+completionColumnsQualified+`
		FROM habit_completions c JOIN habits h ON h.id = c.habit_id
		WHERE h.user_id = $1
		ORDER BY c.day`, userID)
	if err != nil {
		return nil, apperrors.Unavailable("list completions", err)
	}
	defer crows.Close()

	for crows.Next() {
		c, err := scanCompletion(crows)
		if err != nil {
			return nil, apperrors.Unavailable("scan completion", err)
		}
		if i, ok := index[c.HabitID]; ok {
			habits[i].Completions = append(habits[i].Completions, c)
		}
	}
	if err := crows.Err(); err != nil {
		return nil, apperrors.Unavailable("list completions", err)
	}

	return habits, nil
}

func (s *Store) DeleteHabit(ctx context.Context, userID, habitID string) error {
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE habits SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL`, now, habitID, userID)
	if err != nil {
		return apperrors.Unavailable("delete habit", err)
	}
	return expectRow(res, "delete habit", habitID)
}

func (s *Store) RestoreHabit(ctx context.Context, userID, habitID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE habits SET deleted_at = NULL, updated_at = $1
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NOT NULL`, s.now().UTC(), habitID, userID)
	if err != nil {
		return apperrors.Unavailable("restore habit", err)
	}
	return expectRow(res, "restore habit", habitID)
}

func expectRow(res sql.Result, op, habitID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Unavailable(op, err)
	}
	if n == 0 {
		return fmt.Errorf("habit %s: %w", habitID, apperrors.ErrNotFound)
	}
	return nil
}
