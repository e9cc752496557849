package repository

import (
	"lingua_edu_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.DB.Preload("Packages", "is_published = ?", true).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) ListPublished(language string, page, limit int) ([]model.Course, int64, error) {
	query := r.DB.Model(&model.Course{}).Where("is_published = ?", true)
	if language != "" {
		query = query.Where("language = ?", language)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []model.Course
	err := query.Preload("Packages", "is_published = ?", true).
		Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) CreatePackage(pkg *model.CoursePackage) error {
	return r.DB.Create(pkg).Error
}

func (r *CourseRepository) UpdatePackage(pkg *model.CoursePackage) error {
	return r.DB.Save(pkg).Error
}

func (r *CourseRepository) FindPackageByID(id uint) (*model.CoursePackage, error) {
	var pkg model.CoursePackage
	if err := r.DB.First(&pkg, id).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}
