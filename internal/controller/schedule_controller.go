package controller

import (
	"errors"
	"strconv"

	"lingua_edu_backend/internal/service"
	"lingua_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ScheduleController struct {
	SchedulingService *service.SchedulingService
}

func NewScheduleController(schedulingService *service.SchedulingService) *ScheduleController {
	return &ScheduleController{SchedulingService: schedulingService}
}

// @Summary 可预约时段列表
// @Tags 排期
// @Produce json
// @Param windowDays query int false "查询窗口（天）"
// @Success 200 {object} util.Response
// @Router /api/schedule/slots [get]
func (c *ScheduleController) ListUpcoming(ctx *gin.Context) {
	windowDays := 0
	if w := ctx.Query("windowDays"); w != "" {
		if v, err := strconv.Atoi(w); err == nil && v > 0 {
			windowDays = v
		}
	}

	views, err := c.SchedulingService.ListUpcoming(windowDays)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

// @Summary 创建时段
// @Tags 排期管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.TimeSlotRequest true "时段"
// @Success 201 {object} util.Response
// @Router /api/admin/schedule/slots [post]
func (c *ScheduleController) CreateSlot(ctx *gin.Context) {
	var req service.TimeSlotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	slot, err := c.SchedulingService.CreateSlot(req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, slot)
}

type SlotActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// @Summary 启用/停用时段
// @Tags 排期管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "时段ID"
// @Param body body SlotActiveRequest true "状态"
// @Success 200 {object} util.Response
// @Router /api/admin/schedule/slots/{id}/active [patch]
func (c *ScheduleController) SetSlotActive(ctx *gin.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req SlotActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	slot, err := c.SchedulingService.SetSlotActive(id, *req.Active)
	if err != nil {
		if errors.Is(err, util.ErrSlotNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, slot)
}

// @Summary 时段下新增小组
// @Tags 排期管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "时段ID"
// @Param body body service.GroupRequest true "小组"
// @Success 201 {object} util.Response
// @Router /api/admin/schedule/slots/{id}/groups [post]
func (c *ScheduleController) AddGroup(ctx *gin.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.GroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	group, err := c.SchedulingService.AddGroup(id, req)
	if err != nil {
		if errors.Is(err, util.ErrSlotNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, group)
}

type ResizeGroupRequest struct {
	MaxParticipants int `json:"maxParticipants" binding:"required"`
}

// @Summary 调整小组容量
// @Tags 排期管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "小组ID"
// @Param body body ResizeGroupRequest true "容量"
// @Success 200 {object} util.Response
// @Router /api/admin/schedule/groups/{id}/capacity [patch]
func (c *ScheduleController) ResizeGroup(ctx *gin.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req ResizeGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	group, err := c.SchedulingService.ResizeGroup(id, req.MaxParticipants)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrGroupNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrCapacityExceeded):
			util.Conflict(ctx, "capacity below current active seats")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, group)
}

type AssignInstructorRequest struct {
	InstructorID uint `json:"instructorId" binding:"required"`
}

// @Summary 指派教师
// @Tags 排期管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "小组ID"
// @Param body body AssignInstructorRequest true "教师"
// @Success 200 {object} util.Response
// @Router /api/admin/schedule/groups/{id}/instructor [put]
func (c *ScheduleController) AssignInstructor(ctx *gin.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req AssignInstructorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	group, err := c.SchedulingService.AssignInstructor(id, req.InstructorID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrGroupNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInstructorUnknown):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, group)
}

// @Summary 自动指派教师（轮转）
// @Tags 排期管理
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/schedule/groups/auto-assign [post]
func (c *ScheduleController) AutoAssign(ctx *gin.Context) {
	assigned, err := c.SchedulingService.AutoAssignInstructors()
	if err != nil {
		if errors.Is(err, util.ErrNoAssignable) {
			util.Conflict(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"assigned": assigned})
}

type MoveSeatRequest struct {
	BookingID   uint `json:"bookingId" binding:"required"`
	FromGroupID uint `json:"fromGroupId" binding:"required"`
	ToGroupID   uint `json:"toGroupId" binding:"required"`
}

// @Summary 改座（拖拽换组）
// @Tags 排期管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body MoveSeatRequest true "改座请求"
// @Success 200 {object} util.Response
// @Router /api/admin/schedule/moves [post]
func (c *ScheduleController) MoveSeat(ctx *gin.Context) {
	var req MoveSeatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	booking, err := c.SchedulingService.MoveSeat(req.BookingID, req.FromGroupID, req.ToGroupID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrBookingNotFound), errors.Is(err, util.ErrGroupNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrCapacityExceeded):
			util.Conflict(ctx, "destination group is full")
		case errors.Is(err, util.ErrConcurrentModify):
			util.Conflict(ctx, "group changed concurrently, retry")
		case errors.Is(err, util.ErrSeatInconsistent), errors.Is(err, util.ErrBookingCancelled):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, booking)
}
