package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/keepstreak/internal/constants"
	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/storage"
	"github.com/julianstephens/keepstreak/internal/utils"
)

const completionColumns = `id, habit_id, day, completed, progress, created_at, updated_at`

const completionColumnsQualified = `c.id, c.habit_id, c.day, c.completed, c.progress, c.created_at, c.updated_at`

func scanCompletion(row rowScanner) (models.Completion, error) {
	var c models.Completion
	var day, createdAt, updatedAt string

	if err := row.Scan(&c.ID, &c.HabitID, &day, &c.Completed, &c.Progress, &createdAt, &updatedAt); err != nil {
		return models.Completion{}, err
	}

	var err error
	if c.Date, err = time.Parse(constants.DateFormat, day); err != nil {
		return models.Completion{}, fmt.Errorf("failed to parse day: %w", err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Completion{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Completion{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return c, nil
}

func (s *Store) completionsForHabit(ctx context.Context, q queryer, habitID string) ([]models.Completion, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+completionColumns+`
		FROM habit_completions WHERE habit_id = ? ORDER BY day`, habitID)
	if err != nil {
		return nil, apperrors.Unavailable("list completions", err)
	}
	defer rows.Close()

	var completions []models.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, apperrors.Unavailable("scan completion", err)
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable("list completions", err)
	}
	return completions, nil
}

func (s *Store) UpsertCompletion(ctx context.Context, userID, habitID string, day time.Time, fn storage.CompletionFunc) (models.Completion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Completion{}, apperrors.Unavailable("begin upsert", err)
	}
	defer func() { _ = tx.Rollback() }()

	habit, err := getHabit(ctx, tx, userID, habitID)
	if err != nil {
		return models.Completion{}, err
	}

	dayKey := utils.FormatDay(day)
	var existing *models.Completion
	c, err := scanCompletion(tx.QueryRowContext(ctx, `
		SELECT `+completionColumns+`
		FROM habit_completions WHERE habit_id = ? AND day = ?`, habitID, dayKey))
	switch {
	case err == nil:
		existing = &c
	case !errors.Is(err, sql.ErrNoRows):
		return models.Completion{}, apperrors.Unavailable("get completion", err)
	}

	next, err := fn(habit, existing)
	if err != nil {
		return models.Completion{}, err
	}
	next = storage.PrepareCompletion(next, existing, habitID, day, s.now().UTC())

	_, err = tx.ExecContext(ctx, `
		INSERT INTO habit_completions (`+completionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO UPDATE SET
			completed = excluded.completed,
			progress = excluded.progress,
			updated_at = excluded.updated_at`,
		next.ID, next.HabitID, dayKey, next.Completed, next.Progress, formatTime(next.CreatedAt), formatTime(next.UpdatedAt))
	if err != nil {
		return models.Completion{}, apperrors.Unavailable("upsert completion", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Completion{}, apperrors.Unavailable("commit completion", err)
	}
	return next, nil
}

func (s *Store) DeleteCompletion(ctx context.Context, userID, habitID string, day time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Unavailable("begin delete completion", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := getHabit(ctx, tx, userID, habitID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM habit_completions WHERE habit_id = ? AND day = ?`,
		habitID, utils.FormatDay(day)); err != nil {
		return apperrors.Unavailable("delete completion", err)
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Unavailable("commit delete completion", err)
	}
	return nil
}
