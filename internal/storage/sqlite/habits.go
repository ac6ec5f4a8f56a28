package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/keepstreak/internal/constants"
	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/models"
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
	var habitType, activeDays, startDate, createdAt, updatedAt string
	var endDate, deletedAt sql.NullString

	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.Color, &h.Icon, &habitType, &h.Repeat,
		&h.Goal, &h.GoalUnit, &activeDays, &startDate, &endDate, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return models.Habit{}, err
	}
	h.Type = constants.HabitType(habitType)

	if activeDays != "" {
		if err := json.Unmarshal([]byte(activeDays), &h.ActiveDays); err != nil {
			return models.Habit{}, fmt.Errorf("failed to parse active_days: %w", err)
		}
	}
	if h.StartDate, err = time.Parse(constants.DateFormat, startDate); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if endDate.Valid {
		t, err := time.Parse(constants.DateFormat, endDate.String)
		if err != nil {
			return models.Habit{}, fmt.Errorf("failed to parse end_date: %w", err)
		}
		h.EndDate = &t
	}
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if h.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if h.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse deleted_at: %w", err)
	}

	return h, nil
}

func habitArgs(h models.Habit) ([]any, error) {
	activeDays, err := json.Marshal(h.ActiveDays)
	if err != nil {
		return nil, fmt.Errorf("failed to encode active_days: %w", err)
	}
	var endDate, deletedAt sql.NullString
	if h.EndDate != nil {
		endDate = sql.NullString{String: h.EndDate.UTC().Format(constants.DateFormat), Valid: true}
	}
	if h.DeletedAt != nil {
		deletedAt = sql.NullString{String: formatTime(*h.DeletedAt), Valid: true}
	}
	return []any{
		h.ID, h.UserID, h.Name, h.Description, h.Color, h.Icon, string(h.Type), h.Repeat, h.Goal, h.GoalUnit,
		string(activeDays), h.StartDate.UTC().Format(constants.DateFormat), endDate,
		formatTime(h.CreatedAt), formatTime(h.UpdatedAt), deletedAt,
	}, nil
}

func (s *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}
	args, err := habitArgs(habit)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return apperrors.Unavailable("add habit", err)
	}
	return nil
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) error {
	args, err := habitArgs(habit)
	if err != nil {
		return err
	}
	// args[0] is id and args[1] is user_id; both go in the WHERE clause
	res, err := s.db.ExecContext(ctx, `
		UPDATE habits SET name = ?, description = ?, color = ?, icon = ?, type = ?, repeat = ?, goal = ?,
			goal_unit = ?, active_days = ?, start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		args[2], args[3], args[4], args[5], args[6], args[7], args[8], args[9], args[10], args[11], args[12], args[14],
		args[0], args[1])
	if err != nil {
		return apperrors.Unavailable("update habit", err)
	}
	return expectRow(res, "update habit", habit.ID)
}

func (s *Store) GetHabit(ctx context.Context, userID, habitID string) (models.Habit, error) {
	h, err := getHabit(ctx, s.db, userID, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	if h.Completions, err = s.completionsForHabit(ctx, s.db, h.ID); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func getHabit(ctx context.Context, q queryer, userID, habitID string) (models.Habit, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+habitColumns+`
		FROM habits WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, habitID, userID)

	h, err := scanHabit(row)
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
		FROM habits WHERE user_id = ? AND name = ? COLLATE NOCASE AND deleted_at IS NULL`, userID, name)

	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %q: %w", name, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Habit{}, apperrors.Unavailable("get habit by name", err)
	}
	if h.Completions, err = s.completionsForHabit(ctx, s.db, h.ID); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) GetHabitsForUser(ctx context.Context, userID string, includeDeleted bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = ?`
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
		WHERE h.user_id = ?
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
	now := formatTime(s.now())
	res, err := s.db.ExecContext(ctx, `
		UPDATE habits SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, now, now, habitID, userID)
	if err != nil {
		return apperrors.Unavailable("delete habit", err)
	}
	return expectRow(res, "delete habit", habitID)
}

func (s *Store) RestoreHabit(ctx context.Context, userID, habitID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE habits SET deleted_at = NULL, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NOT NULL`, formatTime(s.now()), habitID, userID)
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
