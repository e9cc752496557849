package repository

import (
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"

	"gorm.io/gorm"
)

type PlacementSessionRepository struct {
	DB *gorm.DB
}

func NewPlacementSessionRepository(db *gorm.DB) *PlacementSessionRepository {
	return &PlacementSessionRepository{DB: db}
}

func (r *PlacementSessionRepository) Create(session *model.PlacementSession) error {
	return r.DB.Create(session).Error
}

func (r *PlacementSessionRepository) FindByID(id string) (*model.PlacementSession, error) {
	var s model.PlacementSession
	if err := r.DB.Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// AdvanceGuarded 以 session 里读到的进度为前提推进会话（列级更新）。
// 另一次提交抢先落库时前提失效，一行都不会更新，返回
// ErrConcurrentModify 让调用方回滚整个事务。
func (r *PlacementSessionRepository) AdvanceGuarded(tx *gorm.DB, session *model.PlacementSession, updates map[string]interface{}) error {
	if tx == nil {
		tx = r.DB
	}
	res := tx.Model(&model.PlacementSession{}).
		Where("id = ? AND status = ? AND current_level_id = ? AND current_count = ?",
			session.ID, model.SessionInProgress, session.CurrentLevelID, session.CurrentCount).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrConcurrentModify
	}
	return nil
}

func (r *PlacementSessionRepository) FindInProgressByUser(userID uint) (*model.PlacementSession, error) {
	var s model.PlacementSession
	err := r.DB.Where("user_id = ? AND status = ?", userID, model.SessionInProgress).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PlacementSessionRepository) ListAnswers(sessionID string) ([]model.PlacementAnswer, error) {
	var answers []model.PlacementAnswer
	err := r.DB.Where("session_id = ?", sessionID).Order("`order` asc").Find(&answers).Error
	return answers, err
}

func (r *PlacementSessionRepository) CountAnswers(sessionID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.PlacementAnswer{}).
		Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

func (r *PlacementSessionRepository) FindResultByUser(userID uint) (*model.PlacementResult, error) {
	var result model.PlacementResult
	err := r.DB.Where("user_id = ?", userID).Order("completed_at desc").First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *PlacementSessionRepository) ListResults(page, limit int) ([]model.PlacementResult, int64, error) {
	var results []model.PlacementResult
	var total int64

	if err := r.DB.Model(&model.PlacementResult{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Order("completed_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&results).Error
	return results, total, err
}
