package service

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"corpsite/internal/models"
)

// Views is the ledger that suppresses duplicate view-count increments: a
// post's counter moves at most once per identified viewer.
type Views struct {
	db *gorm.DB
}

func NewViews(db *gorm.DB) *Views {
	return &Views{db: db}
}

// Record counts a view of postID by username. The log insert and the counter
// increment run in one transaction, with the (post_id, username) unique index
// serving as the dedup signal: a conflicting insert affects zero rows and the
// counter stays untouched. Anonymous callers must be filtered out upstream.
func (v *Views) Record(ctx context.Context, postID uint, username string, userAgent *string) (bool, error) {
	isNew := false
	err := v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		log := models.PostViewLog{PostID: postID, Username: username, UserAgent: userAgent}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&log)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			Update("views", gorm.Expr("views + 1")).Error; err != nil {
			return err
		}
		isNew = true
		return nil
	})
	return isNew, err
}

// Logs lists the view log for a post, newest first.
func (v *Views) Logs(ctx context.Context, postID uint, limit, offset int) ([]models.PostViewLog, error) {
	q := v.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	var logs []models.PostViewLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// LogsByUser lists a user's view history across all posts, newest first.
func (v *Views) LogsByUser(ctx context.Context, username string, limit, offset int) ([]models.PostViewLog, error) {
	q := v.db.WithContext(ctx).Where("username = ?", username).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	var logs []models.PostViewLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
