package repository

import (
	"lingua_edu_backend/internal/model"

	"gorm.io/gorm"
)

type PlacementRepository struct {
	DB *gorm.DB
}

func NewPlacementRepository(db *gorm.DB) *PlacementRepository {
	return &PlacementRepository{DB: db}
}

func (r *PlacementRepository) ListLevels() ([]model.PlacementLevel, error) {
	var levels []model.PlacementLevel
	err := r.DB.Where("enabled = ?", true).Order("`rank` asc").Find(&levels).Error
	return levels, err
}

func (r *PlacementRepository) FindLevelByID(id uint) (*model.PlacementLevel, error) {
	var level model.PlacementLevel
	if err := r.DB.First(&level, id).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *PlacementRepository) ListQuestions(levelID uint) ([]model.PlacementQuestion, error) {
	var questions []model.PlacementQuestion
	err := r.DB.Where("level_id = ?", levelID).Order("`order` asc").Find(&questions).Error
	return questions, err
}

func (r *PlacementRepository) CreateQuestion(q *model.PlacementQuestion) error {
	return r.DB.Create(q).Error
}

func (r *PlacementRepository) UpdateQuestion(q *model.PlacementQuestion) error {
	return r.DB.Save(q).Error
}

func (r *PlacementRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.PlacementQuestion{}, id).Error
}
