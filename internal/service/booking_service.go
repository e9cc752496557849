package service

import (
	"errors"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/repository"
	"lingua_edu_backend/internal/util"

	"gorm.io/gorm"
)

type BookingService struct {
	BookingRepo *repository.BookingRepository
	GroupRepo   *repository.GroupRepository
	Notifier    Notifier
	DB          *gorm.DB
}

func NewBookingService(
	bookingRepo *repository.BookingRepository,
	groupRepo *repository.GroupRepository,
	notifier Notifier,
	db *gorm.DB,
) *BookingService {
	return &BookingService{
		BookingRepo: bookingRepo,
		GroupRepo:   groupRepo,
		Notifier:    notifier,
		DB:          db,
	}
}

type BookingRequest struct {
	GroupID uint   `json:"groupId" binding:"required"`
	Level   string `json:"level"`
	Note    string `json:"note"`
}

// Create 占座。容量校验和占座写入走与改座相同的版本号纪律，
// 两个并发报名抢同一个末位座位只会有一个成功。
func (s *BookingService) Create(userID uint, req BookingRequest) (*model.Booking, error) {
	var booking *model.Booking
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var group model.Group
		if err := tx.First(&group, req.GroupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrGroupNotFound
			}
			return err
		}

		var active int64
		if err := tx.Model(&model.Booking{}).
			Where("group_id = ? AND status <> ?", group.ID, model.BookingCancelled).
			Count(&active).Error; err != nil {
			return err
		}
		if active >= int64(group.MaxParticipants) {
			return util.ErrCapacityExceeded
		}

		if err := s.GroupRepo.UpdateGuarded(tx, &group, map[string]interface{}{}); err != nil {
			return err
		}

		booking = &model.Booking{
			UserID:  userID,
			GroupID: group.ID,
			SlotID:  group.SlotID,
			Level:   req.Level,
			Status:  model.BookingPending,
			Note:    req.Note,
		}
		return tx.Create(booking).Error
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.BookingCreated(userID, booking.ID)
	return booking, nil
}

func (s *BookingService) Confirm(bookingID uint) (*model.Booking, error) {
	booking, err := s.find(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.BookingCancelled {
		return nil, util.ErrBookingCancelled
	}

	booking.Status = model.BookingConfirmed
	if err := s.BookingRepo.Update(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel 取消预约并释放座位
func (s *BookingService) Cancel(bookingID uint) (*model.Booking, error) {
	booking, err := s.find(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.BookingCancelled {
		return nil, util.ErrBookingCancelled
	}

	booking.Status = model.BookingCancelled
	if err := s.BookingRepo.Update(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) ListByUser(userID uint) ([]model.Booking, error) {
	return s.BookingRepo.ListByUser(userID)
}

func (s *BookingService) ListByGroup(groupID uint) ([]model.Booking, error) {
	if _, err := s.GroupRepo.FindByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrGroupNotFound
		}
		return nil, err
	}
	return s.BookingRepo.ListByGroup(groupID)
}

// MarkAttendance 标记到课情况，同一预约重复标记时覆盖
func (s *BookingService) MarkAttendance(markerID, bookingID uint, attended bool, note string) (*model.AttendanceRecord, error) {
	booking, err := s.find(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.BookingCancelled {
		return nil, util.ErrBookingCancelled
	}

	record, err := s.BookingRepo.FindAttendance(bookingID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if record == nil {
		record = &model.AttendanceRecord{
			BookingID: bookingID,
			GroupID:   booking.GroupID,
			Attended:  attended,
			MarkedBy:  markerID,
			Note:      note,
		}
		if err := s.BookingRepo.CreateAttendance(record); err != nil {
			return nil, err
		}
		return record, nil
	}

	record.Attended = attended
	record.MarkedBy = markerID
	record.Note = note
	if err := s.BookingRepo.UpdateAttendance(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *BookingService) find(bookingID uint) (*model.Booking, error) {
	booking, err := s.BookingRepo.FindByID(bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}
