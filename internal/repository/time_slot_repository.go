package repository

import (
	"time"

	"lingua_edu_backend/internal/model"

	"gorm.io/gorm"
)

type TimeSlotRepository struct {
	DB *gorm.DB
}

func NewTimeSlotRepository(db *gorm.DB) *TimeSlotRepository {
	return &TimeSlotRepository{DB: db}
}

func (r *TimeSlotRepository) Create(slot *model.TimeSlot) error {
	return r.DB.Create(slot).Error
}

func (r *TimeSlotRepository) Update(slot *model.TimeSlot) error {
	return r.DB.Save(slot).Error
}

func (r *TimeSlotRepository) Delete(id uint) error {
	return r.DB.Delete(&model.TimeSlot{}, id).Error
}

func (r *TimeSlotRepository) FindByID(id uint) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	if err := r.DB.Preload("Groups").First(&slot, id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListUpcoming 窗口期内的活跃时段，按开始时间升序
func (r *TimeSlotRepository) ListUpcoming(windowDays int) ([]model.TimeSlot, error) {
	now := time.Now()
	until := now.AddDate(0, 0, windowDays)

	var slots []model.TimeSlot
	err := r.DB.Preload("Groups").Preload("Groups.Bookings").
		Where("active = ? AND start_at >= ? AND start_at < ?", true, now, until).
		Order("start_at asc").
		Find(&slots).Error
	return slots, err
}

func (r *TimeSlotRepository) ListAll(page, limit int) ([]model.TimeSlot, int64, error) {
	var slots []model.TimeSlot
	var total int64

	if err := r.DB.Model(&model.TimeSlot{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Preload("Groups").
		Order("start_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&slots).Error
	return slots, total, err
}
