package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	pq "github.com/lib/pq"

	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/models"
)

const uniqueViolation = "23505"

func (s *Store) GetUnlocks(ctx context.Context, userID string) ([]models.AchievementUnlock, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, achievement_id, unlocked_at, progress
		FROM achievement_unlocks WHERE user_id = $1 ORDER BY unlocked_at, achievement_id`, userID)
	if err != nil {
		return nil, apperrors.Unavailable("list unlocks", err)
	}
	defer rows.Close()

	var unlocks []models.AchievementUnlock
	for rows.Next() {
		var u models.AchievementUnlock
		var progress sql.NullFloat64
		if err := rows.Scan(&u.ID, &u.UserID, &u.AchievementID, &u.UnlockedAt, &progress); err != nil {
			return nil, apperrors.Unavailable("scan unlock", err)
		}
		u.UnlockedAt = u.UnlockedAt.UTC()
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

	conflict := fmt.Errorf("achievement %s for user %s: %w", unlock.AchievementID, unlock.UserID, apperrors.ErrConflict)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO achievement_unlocks (id, user_id, achievement_id, unlocked_at, progress)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, achievement_id) DO NOTHING`,
		unlock.ID, unlock.UserID, unlock.AchievementID, unlock.UnlockedAt.UTC(), progress)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return conflict
		}
		return apperrors.Unavailable("create unlock", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Unavailable("create unlock", err)
	}
	if n == 0 {
		return conflict
	}
	return nil
}
