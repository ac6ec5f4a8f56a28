package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/models"
)

func (s *Store) GetUnlocks(ctx context.Context, userID string) ([]models.AchievementUnlock, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, achievement_id, unlocked_at, progress
		FROM achievement_unlocks WHERE user_id = ? ORDER BY unlocked_at, achievement_id`, userID)
	if err != nil {
		return nil, apperrors.Unavailable("list unlocks", err)
	}
	defer rows.Close()

	var unlocks []models.AchievementUnlock
	for rows.Next() {
		var u models.AchievementUnlock
		var unlockedAt string
		var progress sql.NullFloat64
		if err := rows.Scan(&u.ID, &u.UserID, &u.AchievementID, &unlockedAt, &progress); err != nil {
			return nil, apperrors.Unavailable("scan unlock", err)
		}
		if u.UnlockedAt, err = parseTime(unlockedAt); err != nil {
			return nil, fmt.Errorf("failed to parse unlocked_at: %w", err)
		}
		if progress.Valid {
			p := progress.Float64
			u.Progress = &p
		}
		unlocks = append(unlocks, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable("list unlocks", err)
	}
	return unlocks, nil
}

func (s *Store) CreateUnlock(ctx context.Context, unlock models.AchievementUnlock) error {
	if unlock.ID == "" {
		unlock.ID = uuid.New().String()
	}
	if unlock.UnlockedAt.IsZero() {
		unlock.UnlockedAt = s.now()
	}
	var progress sql.NullFloat64
	if unlock.Progress != nil {
		progress = sql.NullFloat64{Float64: *unlock.Progress, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO achievement_unlocks (id, user_id, achievement_id, unlocked_at, progress)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, achievement_id) DO NOTHING`,
		unlock.ID, unlock.UserID, unlock.AchievementID, formatTime(unlock.UnlockedAt), progress)
	if err != nil {
		return apperrors.Unavailable("create unlock", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Unavailable("create unlock", err)
	}
	if n == 0 {
		return fmt.Errorf("achievement %s for user %s: %w", unlock.AchievementID, unlock.UserID, apperrors.ErrConflict)
	}
	return nil
}
