package util

import "errors"

var (
	ErrUserNotFound      = errors.New("用户不存在")
	ErrEmailRegistered   = errors.New("该邮箱已被注册")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrLevelNotFound     = errors.New("placement level not found")
	ErrSessionNotFound   = errors.New("placement session not found")
	ErrSessionCompleted  = errors.New("placement session already completed")
	ErrTestInProgress    = errors.New("a placement test is already in progress")
	ErrSlotNotFound      = errors.New("time slot not found")
	ErrGroupNotFound     = errors.New("group not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrCapacityExceeded  = errors.New("group is full")
	ErrSeatInconsistent  = errors.New("booking does not occupy the source group")
	ErrConcurrentModify  = errors.New("group was modified concurrently, retry")
	ErrCourseNotFound    = errors.New("course not found")
	ErrPackageNotFound   = errors.New("course package not found")
	ErrBookingCancelled  = errors.New("booking already cancelled")
	ErrNoAssignable      = errors.New("no assignable instructor available")
	ErrInstructorUnknown = errors.New("instructor not found or not assignable")
)
