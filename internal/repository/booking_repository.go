package repository

import (
	"lingua_edu_backend/internal/model"

	"gorm.io/gorm"
)

type BookingRepository struct {
	DB *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

func (r *BookingRepository) Create(booking *model.Booking) error {
	return r.DB.Create(booking).Error
}

func (r *BookingRepository) Update(booking *model.Booking) error {
	return r.DB.Save(booking).Error
}

func (r *BookingRepository) FindByID(id uint) (*model.Booking, error) {
	var booking model.Booking
	if err := r.DB.First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) ListByUser(userID uint) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) ListByGroup(groupID uint) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.DB.Where("group_id = ?", groupID).Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) CreateAttendance(record *model.AttendanceRecord) error {
	return r.DB.Create(record).Error
}

func (r *BookingRepository) FindAttendance(bookingID uint) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	if err := r.DB.Where("booking_id = ?", bookingID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *BookingRepository) UpdateAttendance(record *model.AttendanceRecord) error {
	return r.DB.Save(record).Error
}

func (r *BookingRepository) ListAttendanceByGroup(groupID uint) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.DB.Where("group_id = ?", groupID).Find(&records).Error
	return records, err
}
