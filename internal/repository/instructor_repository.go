package repository

import (
	"lingua_edu_backend/internal/model"

	"gorm.io/gorm"
)

type InstructorRepository struct {
	DB *gorm.DB
}

func NewInstructorRepository(db *gorm.DB) *InstructorRepository {
	return &InstructorRepository{DB: db}
}

func (r *InstructorRepository) Create(profile *model.InstructorProfile) error {
	return r.DB.Create(profile).Error
}

func (r *InstructorRepository) Update(profile *model.InstructorProfile) error {
	return r.DB.Save(profile).Error
}

func (r *InstructorRepository) FindByID(id uint) (*model.InstructorProfile, error) {
	var profile model.InstructorProfile
	if err := r.DB.First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListAssignable 可被排课的教师，按 ID 升序保证轮转指派时平分时的确定性
func (r *InstructorRepository) ListAssignable() ([]model.InstructorProfile, error) {
	var profiles []model.InstructorProfile
	err := r.DB.Where("assignable = ?", true).Order("id asc").Find(&profiles).Error
	return profiles, err
}

func (r *InstructorRepository) ListAll(page, limit int) ([]model.InstructorProfile, int64, error) {
	var profiles []model.InstructorProfile
	var total int64

	if err := r.DB.Model(&model.InstructorProfile{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Offset((page - 1) * limit).Limit(limit).Find(&profiles).Error
	return profiles, total, err
}
