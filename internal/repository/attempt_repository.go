package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/skilltest/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrAlreadyFinalized is returned when a guarded transition finds the attempt
// in a terminal status.
var ErrAlreadyFinalized = errors.New("attempt already finalized")

type AttemptRepository interface {
	Create(ctx context.Context, attempt *model.Attempt) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
	FindByOwner(ctx context.Context, ownerID string) ([]model.Attempt, error)
	CountFreeTier(ctx context.Context, ownerID string) (int64, error)
	MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, answers []*int, locked []int, tabSwitchCount int) error
	Finalize(ctx context.Context, id uuid.UUID, result model.AttemptResult) error
	Forfeit(ctx context.Context, id uuid.UUID, reason string, at time.Time) error
	FindStale(ctx context.Context, createdBefore time.Time, after *StaleCursor, limit int) ([]model.Attempt, error)
}

// StaleCursor resumes FindStale after the last attempt of the previous page.
type StaleCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *attemptRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.WithContext(ctx).First(&attempt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByOwner(ctx context.Context, ownerID string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// CountFreeTier counts every attempt the user created without premium,
// soft-deleted and forfeited ones included.
func (r *attemptRepository) CountFreeTier(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().
		Model(&model.Attempt{}).
		Where("owner_id = ? AND premium_at_creation = ?", ownerID, false).
		Count(&count).Error
	return count, err
}

// MarkStarted moves a created attempt to in_progress. It reports false when
// the attempt was not in created.
func (r *attemptRepository) MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&model.Attempt{}).
		Where("id = ? AND status = ?", id, model.AttemptCreated).
		Updates(map[string]interface{}{
			"status":     model.AttemptInProgress,
			"started_at": at,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *attemptRepository) UpdateProgress(ctx context.Context, id uuid.UUID, answers []*int, locked []int, tabSwitchCount int) error {
	tx := r.db.WithContext(ctx).
		Model(&model.Attempt{}).
		Where("id = ? AND status IN ?", id, model.ActiveStatuses).
		Updates(map[string]interface{}{
			"answers":          datatypes.NewJSONType(answers),
			"locked_indices":   datatypes.NewJSONType(locked),
			"tab_switch_count": tabSwitchCount,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrAlreadyFinalized
	}
	return nil
}

// Finalize writes the result and flips the status to submitted in a single
// compare-and-set UPDATE. Exactly one concurrent caller can win.
func (r *attemptRepository) Finalize(ctx context.Context, id uuid.UUID, result model.AttemptResult) error {
	reason := result.SubmitReason
	tx := r.db.WithContext(ctx).
		Model(&model.Attempt{}).
		Where("id = ? AND status IN ?", id, model.ActiveStatuses).
		Updates(map[string]interface{}{
			"status":        model.AttemptSubmitted,
			"answers":       datatypes.NewJSONType(result.Answers),
			"score":         result.Score,
			"total_marks":   result.TotalMarks,
			"percentage":    result.Percentage,
			"passed":        result.Passed,
			"submit_reason": reason,
			"submitted_at":  result.SubmittedAt,
			"finished_at":   result.SubmittedAt,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrAlreadyFinalized
	}
	return nil
}

func (r *attemptRepository) Forfeit(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	tx := r.db.WithContext(ctx).
		Model(&model.Attempt{}).
		Where("id = ? AND status IN ?", id, model.ActiveStatuses).
		Updates(map[string]interface{}{
			"status":         model.AttemptForfeited,
			"forfeit_reason": reason,
			"finished_at":    at,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrAlreadyFinalized
	}
	return nil
}

// FindStale pages through active attempts created before createdBefore,
// oldest first.
func (r *attemptRepository) FindStale(ctx context.Context, createdBefore time.Time, after *StaleCursor, limit int) ([]model.Attempt, error) {
	var attempts []model.Attempt
	q := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?", model.ActiveStatuses, createdBefore)
	if after != nil {
		q = q.Where("created_at > ? OR (created_at = ? AND id > ?)", after.CreatedAt, after.CreatedAt, after.ID)
	}
	err := q.Order("created_at ASC").Order("id ASC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}
