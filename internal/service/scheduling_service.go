package service

import (
	"errors"
	"time"

	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/repository"
	"lingua_edu_backend/internal/util"
	"lingua_edu_backend/pkg/monitoring"

	"gorm.io/gorm"
)

type SchedulingService struct {
	SlotRepo       *repository.TimeSlotRepository
	GroupRepo      *repository.GroupRepository
	InstructorRepo *repository.InstructorRepository
	Notifier       Notifier
	Cfg            *config.Config
	DB             *gorm.DB
}

func NewSchedulingService(
	slotRepo *repository.TimeSlotRepository,
	groupRepo *repository.GroupRepository,
	instructorRepo *repository.InstructorRepository,
	notifier Notifier,
	cfg *config.Config,
	db *gorm.DB,
) *SchedulingService {
	return &SchedulingService{
		SlotRepo:       slotRepo,
		GroupRepo:      groupRepo,
		InstructorRepo: instructorRepo,
		Notifier:       notifier,
		Cfg:            cfg,
		DB:             db,
	}
}

type GroupRequest struct {
	Name            string `json:"name" binding:"required"`
	Level           string `json:"level"`
	MaxParticipants int    `json:"maxParticipants"`
}

type TimeSlotRequest struct {
	StartAt time.Time      `json:"startAt" binding:"required"`
	EndAt   time.Time      `json:"endAt" binding:"required"`
	Active  *bool          `json:"active"`
	Groups  []GroupRequest `json:"groups"`
}

func (s *SchedulingService) CreateSlot(req TimeSlotRequest) (*model.TimeSlot, error) {
	if !req.EndAt.After(req.StartAt) {
		return nil, errors.New("endAt must be after startAt")
	}

	slot := &model.TimeSlot{
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
		Active:  true,
	}
	if req.Active != nil {
		slot.Active = *req.Active
	}
	for _, g := range req.Groups {
		capacity := g.MaxParticipants
		if capacity <= 0 {
			capacity = s.Cfg.Booking.DefaultGroupCapacity
		}
		slot.Groups = append(slot.Groups, model.Group{
			Name:            g.Name,
			Level:           g.Level,
			MaxParticipants: capacity,
		})
	}

	if err := s.SlotRepo.Create(slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *SchedulingService) SetSlotActive(slotID uint, active bool) (*model.TimeSlot, error) {
	slot, err := s.SlotRepo.FindByID(slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSlotNotFound
		}
		return nil, err
	}
	slot.Active = active
	if err := s.SlotRepo.Update(slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// GroupView 小组 + 占座情况，供管理端改座面板使用
type GroupView struct {
	model.Group
	ActiveSeats int64 `json:"activeSeats"`
	HasCapacity bool  `json:"hasCapacity"`
}

type SlotView struct {
	model.TimeSlot
	GroupViews []GroupView `json:"groupViews"`
}

// ListUpcoming 窗口期内的时段及各组余量，windowDays<=0 时用配置默认值
func (s *SchedulingService) ListUpcoming(windowDays int) ([]SlotView, error) {
	if windowDays <= 0 {
		windowDays = s.Cfg.Booking.UpcomingWindowDays
	}

	slots, err := s.SlotRepo.ListUpcoming(windowDays)
	if err != nil {
		return nil, err
	}

	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		view := SlotView{TimeSlot: slot}
		for _, g := range slot.Groups {
			var active int64
			for _, b := range g.Bookings {
				if b.Status != model.BookingCancelled {
					active++
				}
			}
			view.GroupViews = append(view.GroupViews, GroupView{
				Group:       g,
				ActiveSeats: active,
				HasCapacity: active < int64(g.MaxParticipants),
			})
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *SchedulingService) AddGroup(slotID uint, req GroupRequest) (*model.Group, error) {
	if _, err := s.SlotRepo.FindByID(slotID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSlotNotFound
		}
		return nil, err
	}

	capacity := req.MaxParticipants
	if capacity <= 0 {
		capacity = s.Cfg.Booking.DefaultGroupCapacity
	}
	group := &model.Group{
		SlotID:          slotID,
		Name:            req.Name,
		Level:           req.Level,
		MaxParticipants: capacity,
	}
	if err := s.GroupRepo.Create(group); err != nil {
		return nil, err
	}
	return group, nil
}

// ResizeGroup 调整容量，不允许低于当前活跃占座数。占座数读取和
// 容量写入在同一个事务里，并走版本号守卫：并发报名把占座数抬高后，
// 缩容的版本前提随之失效，不会出现超员的容量。
func (s *SchedulingService) ResizeGroup(groupID uint, maxParticipants int) (*model.Group, error) {
	var group *model.Group
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var g model.Group
		if err := tx.First(&g, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrGroupNotFound
			}
			return err
		}

		var active int64
		if err := tx.Model(&model.Booking{}).
			Where("group_id = ? AND status <> ?", g.ID, model.BookingCancelled).
			Count(&active).Error; err != nil {
			return err
		}
		if int64(maxParticipants) < active {
			return util.ErrCapacityExceeded
		}

		if err := s.GroupRepo.UpdateGuarded(tx, &g, map[string]interface{}{
			"max_participants": maxParticipants,
		}); err != nil {
			return err
		}
		g.MaxParticipants = maxParticipants
		group = &g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// AssignInstructor 手动指派教师，教师必须在可排课目录里
func (s *SchedulingService) AssignInstructor(groupID uint, instructorID uint) (*model.Group, error) {
	group, err := s.GroupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrGroupNotFound
		}
		return nil, err
	}

	profile, err := s.InstructorRepo.FindByID(instructorID)
	if err != nil || !profile.Assignable {
		return nil, util.ErrInstructorUnknown
	}

	if err := s.GroupRepo.UpdateGuarded(nil, group, map[string]interface{}{
		"instructor_id": profile.ID,
	}); err != nil {
		return nil, err
	}
	group.InstructorID = &profile.ID
	return group, nil
}

// AutoAssignInstructors 给无教师小组轮转指派：每次选当前被分配小组数
// 最少的可排课教师，持平时取 ID 最小者。返回完成指派的小组数。
func (s *SchedulingService) AutoAssignInstructors() (int, error) {
	groups, err := s.GroupRepo.ListUnassigned()
	if err != nil {
		return 0, err
	}
	if len(groups) == 0 {
		return 0, nil
	}

	instructors, err := s.InstructorRepo.ListAssignable()
	if err != nil {
		return 0, err
	}
	if len(instructors) == 0 {
		return 0, util.ErrNoAssignable
	}

	load := make(map[uint]int64, len(instructors))
	for _, ins := range instructors {
		count, err := s.GroupRepo.CountAssignments(ins.ID)
		if err != nil {
			return 0, err
		}
		load[ins.ID] = count
	}

	assigned := 0
	for i := range groups {
		var pick *model.InstructorProfile
		for j := range instructors {
			ins := &instructors[j]
			if pick == nil || load[ins.ID] < load[pick.ID] {
				pick = ins
			}
		}

		err := s.GroupRepo.UpdateGuarded(nil, &groups[i], map[string]interface{}{
			"instructor_id": pick.ID,
		})
		if err != nil {
			// 列表快照之后被并发改动的小组跳过，留给下一轮定时任务
			if errors.Is(err, util.ErrConcurrentModify) {
				continue
			}
			return assigned, err
		}
		groups[i].InstructorID = &pick.ID
		load[pick.ID]++
		assigned++
	}
	return assigned, nil
}

// MoveSeat 把预约从一个小组改到另一个小组。源组持有校验、目标容量
// 校验、成员迁移和反向引用更新在一个事务里完成；目标组版本号的
// 乐观锁让并发抢最后一个座位的请求只有一个能提交，输家收到
// ErrConcurrentModify，由调用方决定是否重试。
func (s *SchedulingService) MoveSeat(bookingID, fromGroupID, toGroupID uint) (*model.Booking, error) {
	var moved *model.Booking
	var destName string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var booking model.Booking
		if err := tx.First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrBookingNotFound
			}
			return err
		}
		if booking.Status == model.BookingCancelled {
			return util.ErrBookingCancelled
		}
		if booking.GroupID != fromGroupID {
			return util.ErrSeatInconsistent
		}
		if fromGroupID == toGroupID {
			moved = &booking
			return nil
		}

		var dest model.Group
		if err := tx.First(&dest, toGroupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrGroupNotFound
			}
			return err
		}

		var active int64
		if err := tx.Model(&model.Booking{}).
			Where("group_id = ? AND status <> ?", dest.ID, model.BookingCancelled).
			Count(&active).Error; err != nil {
			return err
		}
		if active >= int64(dest.MaxParticipants) {
			return util.ErrCapacityExceeded
		}

		// 版本校验：读到的版本已被别人提交过则放弃
		if err := s.GroupRepo.UpdateGuarded(tx, &dest, map[string]interface{}{}); err != nil {
			return err
		}

		booking.GroupID = dest.ID
		booking.SlotID = dest.SlotID
		if err := tx.Save(&booking).Error; err != nil {
			return err
		}
		moved = &booking
		destName = dest.Name
		return nil
	})
	if err != nil {
		monitoring.SeatMoveCounter.WithLabelValues(moveOutcome(err)).Inc()
		return nil, err
	}

	monitoring.SeatMoveCounter.WithLabelValues("ok").Inc()
	if destName != "" {
		s.Notifier.SeatMoved(moved.UserID, moved.ID, destName)
	}
	return moved, nil
}

func moveOutcome(err error) string {
	switch {
	case errors.Is(err, util.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, util.ErrConcurrentModify):
		return "conflict"
	case errors.Is(err, util.ErrSeatInconsistent):
		return "inconsistent"
	case errors.Is(err, util.ErrBookingNotFound), errors.Is(err, util.ErrGroupNotFound):
		return "not_found"
	case errors.Is(err, util.ErrBookingCancelled):
		return "cancelled"
	default:
		return "error"
	}
}
