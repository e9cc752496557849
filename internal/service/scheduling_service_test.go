package service

import (
	"errors"
	"testing"
	"time"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/repository"
	"lingua_edu_backend/internal/util"

	"gorm.io/gorm"
)

func newSchedulingService(db *gorm.DB) *SchedulingService {
	return NewSchedulingService(
		repository.NewTimeSlotRepository(db),
		repository.NewGroupRepository(db),
		repository.NewInstructorRepository(db),
		NewLogNotifier(),
		testConfig(),
		db,
	)
}

func seedSlot(t *testing.T, db *gorm.DB, startIn time.Duration) *model.TimeSlot {
	t.Helper()

	slot := &model.TimeSlot{
		StartAt: time.Now().Add(startIn),
		EndAt:   time.Now().Add(startIn + time.Hour),
		Active:  true,
	}
	if err := db.Create(slot).Error; err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return slot
}

func TestSchedulingService_CreateSlotAppliesDefaultCapacity(t *testing.T) {
	db := newTestDB(t)
	svc := newSchedulingService(db)

	slot, err := svc.CreateSlot(TimeSlotRequest{
		StartAt: time.Now().Add(24 * time.Hour),
		EndAt:   time.Now().Add(25 * time.Hour),
		Groups:  []GroupRequest{{Name: "Morning A"}, {Name: "Morning B", MaxParticipants: 4}},
	})
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}
	if len(slot.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(slot.Groups))
	}
	if slot.Groups[0].MaxParticipants != 6 {
		t.Fatalf("expected default capacity 6, got %d", slot.Groups[0].MaxParticipants)
	}
	if slot.Groups[1].MaxParticipants != 4 {
		t.Fatalf("expected explicit capacity 4, got %d", slot.Groups[1].MaxParticipants)
	}
}

func TestSchedulingService_CreateSlotRejectsInvertedWindow(t *testing.T) {
	db := newTestDB(t)
	svc := newSchedulingService(db)

	_, err := svc.CreateSlot(TimeSlotRequest{
		StartAt: time.Now().Add(2 * time.Hour),
		EndAt:   time.Now().Add(time.Hour),
	})
	if err == nil {
		t.Fatalf("expected error for endAt before startAt")
	}
}

func TestSchedulingService_ResizeGroupBelowActiveSeats(t *testing.T) {
	db := newTestDB(t)
	svc := newSchedulingService(db)

	slot := seedSlot(t, db, 24*time.Hour)
	group := seedGroup(t, db, slot.ID, "G1", 4)
	seedBooking(t, db, 1, group, model.BookingConfirmed)
	seedBooking(t, db, 2, group, model.BookingPending)
	seedBooking(t, db, 3, group, model.BookingCancelled) // 已取消，不占座

	if _, err := svc.ResizeGroup(group.ID, 1); !errors.Is(err, util.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	resized, err := svc.ResizeGroup(group.ID, 2)
	if err != nil {
		t.Fatalf("resize to active count must succeed: %v", err)
	}
	if resized.MaxParticipants != 2 {
		t.Fatalf("expected capacity 2, got %d", resized.MaxParticipants)
	}

	// 容量调整和占座/改座共用版本号
	if resized.Version != group.Version+1 {
		t.Fatalf("expected version bump %d -> %d, got %d", group.Version, group.Version+1, resized.Version)
	}
}

func TestSchedulingService_MoveSeat(t *testing.T) {
	db := newTestDB(t)
	svc := newSchedulingService(db)

	slotA := seedSlot(t, db, 24*time.Hour)
	slotB := seedSlot(t, db, 48*time.Hour)
	source := seedGroup(t, db, slotA.ID, "Source", 2)
	dest := seedGroup(t, db, slotB.ID, "Dest", 2)
	booking := seedBooking(t, db, 1, source, model.BookingConfirmed)

	moved, err := svc.MoveSeat(booking.ID, source.ID, dest.ID)
	if err != nil {
		t.Fatalf("move seat: %v", err)
	}
	if moved.GroupID != dest.ID || moved.SlotID != slotB.ID {
		t.Fatalf("booking not rehomed: group=%d slot=%d", moved.GroupID, moved.SlotID)
	}

	// 源组座位释放，目标组版本号被推进
	var sourceActive int64
	db.Model(&model.Booking{}).
		Where("group_id = ? AND status <> ?", source.ID, model.BookingCancelled).
		Count(&sourceActive)
	if sourceActive != 0 {
		t.Fatalf("source seat not released, active=%d", sourceActive)
	}

	var destAfter model.Group
	if err := db.First(&destAfter, dest.ID).Error; err != nil {
		t.Fatalf("reload dest: %v", err)
	}
	if destAfter.Version != dest.Version+1 {
		t.Fatalf("expected version bump %d -> %d, got %d", dest.Version, dest.Version+1, destAfter.Version)
	}
}

func TestSchedulingService_MoveSeatIntoFullGroup(t *testing.T) {
	db := newTestDB(t)
	svc := newSchedulingService(db)

	slot := seedSlot(t, db, 24*time.Hour)
	source := seedGroup(t, db, slot.ID, "Source", 2)
	dest := seedGroup(t, db, slot.ID, "Dest", 1)
	seedBooking(t, db, 2, dest, model.BookingConfirmed) // 占满目标组
	booking := seedBooking(t, db, 1, source, model.BookingConfirmed)

	if _, err := svc.MoveSeat(booking.ID, source.ID, dest.ID); !errors.Is(err, util.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	// 失败的改座不得移动预约
	var after model.Booking
	if err := db.First(&after, booking.ID).Error; err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if after.GroupID != source.ID {
		t.Fatalf("booking moved despite capacity failure")
	}
}

func TestSchedulingService_MoveSeatSourceMismatch(t *testing.T) {
	db := newTestDB(t)
	svc := newSchedulingService(db)

	slot := seedSlot(t, db, 24*time.Hour)
	source := seedGroup(t, db, slot.ID, "Source", 2)
	other := seedGroup(t, db, slot.ID, "Other", 2)
	dest := seedGroup(t, db, slot.ID, "Dest", 2)
	booking := seedBooking(t, db, 1, source, model.BookingConfirmed)

	if _, err := svc.MoveSeat(booking.ID, other.ID, dest.ID); !errors.Is(err, util.ErrSeatInconsistent) {
		t.Fatalf("expected ErrSeatInconsistent, got %v", err)
	}
}

func TestSchedulingService_MoveSeatEdgeCases(t *testing.T) {
	db := newTestDB(t)
	svc := newSchedulingService(db)

	slot := seedSlot(t, db, 24*time.Hour)
	source := seedGroup(t, db, slot.ID, "Source", 2)
	dest := seedGroup(t, db, slot.ID, "Dest", 2)
	cancelled := seedBooking(t, db, 1, source, model.BookingCancelled)
	active := seedBooking(t, db, 2, source, model.BookingConfirmed)

	if _, err := svc.MoveSeat(999, source.ID, dest.ID); !errors.Is(err, util.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
	if _, err := svc.MoveSeat(cancelled.ID, source.ID, dest.ID); !errors.Is(err, util.ErrBookingCancelled) {
		t.Fatalf("expected ErrBookingCancelled, got %v", err)
	}
	if _, err := svc.MoveSeat(active.ID, source.ID, 999); !errors.Is(err, util.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}

	// 同组改座是幂等的空操作
	moved, err := svc.MoveSeat(active.ID, source.ID, source.ID)
	if err != nil {
		t.Fatalf("same-group move: %v", err)
	}
	if moved.GroupID != source.ID {
		t.Fatalf("no-op move changed group")
	}
	var after model.Group
	if err := db.First(&after, source.ID).Error; err != nil {
		t.Fatalf("reload group: %v", err)
	}
	if after.Version != source.Version {
		t.Fatalf("no-op move must not bump version")
	}
}

func TestMoveOutcomeLabels(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{util.ErrCapacityExceeded, "capacity_exceeded"},
		{util.ErrConcurrentModify, "conflict"},
		{util.ErrSeatInconsistent, "inconsistent"},
		{util.ErrBookingNotFound, "not_found"},
		{util.ErrGroupNotFound, "not_found"},
		{util.ErrBookingCancelled, "cancelled"},
		{errors.New("boom"), "error"},
	}
	for _, c := range cases {
		if got := moveOutcome(c.err); got != c.want {
			t.Fatalf("moveOutcome(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestGroupRepository_StaleVersionLosesWrite(t *testing.T) {
	db := newTestDB(t)
	svc := newSchedulingService(db)

	slot := seedSlot(t, db, 24*time.Hour)
	group := seedGroup(t, db, slot.ID, "G1", 4)

	// 两个写入基于同一份版本快照，先提交的赢
	first, err := svc.GroupRepo.FindByID(group.ID)
	if err != nil {
		t.Fatalf("load first copy: %v", err)
	}
	second, err := svc.GroupRepo.FindByID(group.ID)
	if err != nil {
		t.Fatalf("load second copy: %v", err)
	}

	if err := svc.GroupRepo.UpdateGuarded(nil, first, map[string]interface{}{
		"max_participants": 8,
	}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	err = svc.GroupRepo.UpdateGuarded(nil, second, map[string]interface{}{
		"max_participants": 3,
	})
	if !errors.Is(err, util.ErrConcurrentModify) {
		t.Fatalf("expected ErrConcurrentModify for stale writer, got %v", err)
	}

	// 输家既没改到容量也没动版本号
	reloaded, err := svc.GroupRepo.FindByID(group.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.MaxParticipants != 8 {
		t.Fatalf("stale writer overwrote capacity: %d", reloaded.MaxParticipants)
	}
	if reloaded.Version != group.Version+1 {
		t.Fatalf("expected single version bump, got %d", reloaded.Version)
	}
}

func TestSchedulingService_AssignInstructor(t *testing.T) {
	db := newTestDB(t)
	svc := newSchedulingService(db)

	slot := seedSlot(t, db, 24*time.Hour)
	group := seedGroup(t, db, slot.ID, "G1", 6)

	assignable := &model.InstructorProfile{UserID: 10, Name: "Ana", Assignable: true}
	retired := &model.InstructorProfile{UserID: 11, Name: "Ben", Assignable: false}
	for _, p := range []*model.InstructorProfile{assignable, retired} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("create profile: %v", err)
		}
	}

	if _, err := svc.AssignInstructor(group.ID, retired.ID); !errors.Is(err, util.ErrInstructorUnknown) {
		t.Fatalf("expected ErrInstructorUnknown for non-assignable, got %v", err)
	}

	updated, err := svc.AssignInstructor(group.ID, assignable.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if updated.InstructorID == nil || *updated.InstructorID != assignable.ID {
		t.Fatalf("instructor not assigned")
	}
}

func TestSchedulingService_AutoAssignRoundRobin(t *testing.T) {
	db := newTestDB(t)
	svc := newSchedulingService(db)

	slot := seedSlot(t, db, 24*time.Hour)
	for _, name := range []string{"G1", "G2", "G3"} {
		seedGroup(t, db, slot.ID, name, 6)
	}

	first := &model.InstructorProfile{UserID: 10, Name: "Ana", Assignable: true}
	second := &model.InstructorProfile{UserID: 11, Name: "Ben", Assignable: true}
	for _, p := range []*model.InstructorProfile{first, second} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("create profile: %v", err)
		}
	}

	assigned, err := svc.AutoAssignInstructors()
	if err != nil {
		t.Fatalf("auto assign: %v", err)
	}
	if assigned != 3 {
		t.Fatalf("expected 3 assignments, got %d", assigned)
	}

	// 负载最小优先，持平取 ID 较小者：3 个组按 first/second/first 轮转
	counts := map[uint]int64{}
	for _, id := range []uint{first.ID, second.ID} {
		var n int64
		db.Model(&model.Group{}).Where("instructor_id = ?", id).Count(&n)
		counts[id] = n
	}
	if counts[first.ID] != 2 || counts[second.ID] != 1 {
		t.Fatalf("unexpected distribution: %v", counts)
	}

	var unassigned int64
	db.Model(&model.Group{}).Where("instructor_id IS NULL").Count(&unassigned)
	if unassigned != 0 {
		t.Fatalf("groups left unassigned: %d", unassigned)
	}
}

func TestSchedulingService_AutoAssignWithoutInstructors(t *testing.T) {
	db := newTestDB(t)
	svc := newSchedulingService(db)

	slot := seedSlot(t, db, 24*time.Hour)
	seedGroup(t, db, slot.ID, "G1", 6)

	if _, err := svc.AutoAssignInstructors(); !errors.Is(err, util.ErrNoAssignable) {
		t.Fatalf("expected ErrNoAssignable, got %v", err)
	}
}

func TestSchedulingService_ListUpcoming(t *testing.T) {
	db := newTestDB(t)
	svc := newSchedulingService(db)

	near := seedSlot(t, db, 24*time.Hour)
	group := seedGroup(t, db, near.ID, "G1", 2)
	seedBooking(t, db, 1, group, model.BookingConfirmed)
	seedBooking(t, db, 2, group, model.BookingCancelled)

	// 窗口外与停用的时段不应出现
	seedSlot(t, db, 30*24*time.Hour)
	inactive := seedSlot(t, db, 48*time.Hour)
	inactive.Active = false
	if err := db.Save(inactive).Error; err != nil {
		t.Fatalf("deactivate slot: %v", err)
	}

	views, err := svc.ListUpcoming(14)
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(views))
	}
	if len(views[0].GroupViews) != 1 {
		t.Fatalf("expected 1 group view, got %d", len(views[0].GroupViews))
	}
	gv := views[0].GroupViews[0]
	if gv.ActiveSeats != 1 || !gv.HasCapacity {
		t.Fatalf("unexpected occupancy: active=%d hasCapacity=%v", gv.ActiveSeats, gv.HasCapacity)
	}
}
