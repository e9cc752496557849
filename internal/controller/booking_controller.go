package controller

import (
	"errors"

	"lingua_edu_backend/internal/service"
	"lingua_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type BookingController struct {
	BookingService *service.BookingService
}

func NewBookingController(bookingService *service.BookingService) *BookingController {
	return &BookingController{BookingService: bookingService}
}

// @Summary 预约体验课座位
// @Tags 预约
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.BookingRequest true "预约"
// @Success 201 {object} util.Response
// @Router /api/bookings [post]
func (c *BookingController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.BookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	booking, err := c.BookingService.Create(user.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrGroupNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrCapacityExceeded):
			util.Conflict(ctx, "group is full, choose another slot")
		case errors.Is(err, util.ErrConcurrentModify):
			util.Conflict(ctx, "seat was just taken, retry")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, booking)
}

// @Summary 我的预约
// @Tags 预约
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/bookings [get]
func (c *BookingController) MyBookings(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	bookings, err := c.BookingService.ListByUser(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, bookings)
}

// @Summary 取消预约
// @Tags 预约
// @Security BearerAuth
// @Produce json
// @Param id path int true "预约ID"
// @Success 200 {object} util.Response
// @Router /api/bookings/{id}/cancel [post]
func (c *BookingController) Cancel(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, ok := uintParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	booking, err := c.BookingService.Cancel(id)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrBookingNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrBookingCancelled):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, booking)
}

// @Summary 确认预约
// @Tags 预约管理
// @Security BearerAuth
// @Produce json
// @Param id path int true "预约ID"
// @Success 200 {object} util.Response
// @Router /api/admin/bookings/{id}/confirm [post]
func (c *BookingController) Confirm(ctx *gin.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	booking, err := c.BookingService.Confirm(id)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrBookingNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrBookingCancelled):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, booking)
}

// @Summary 小组预约名单
// @Tags 预约管理
// @Security BearerAuth
// @Produce json
// @Param id path int true "小组ID"
// @Success 200 {object} util.Response
// @Router /api/admin/groups/{id}/bookings [get]
func (c *BookingController) ListByGroup(ctx *gin.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	bookings, err := c.BookingService.ListByGroup(id)
	if err != nil {
		if errors.Is(err, util.ErrGroupNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, bookings)
}

type AttendanceRequest struct {
	Attended *bool  `json:"attended" binding:"required"`
	Note     string `json:"note"`
}

// @Summary 标记到课
// @Tags 预约管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "预约ID"
// @Param body body AttendanceRequest true "到课情况"
// @Success 200 {object} util.Response
// @Router /api/admin/bookings/{id}/attendance [put]
func (c *BookingController) MarkAttendance(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, ok := uintParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req AttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.BookingService.MarkAttendance(user.UserID, id, *req.Attended, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrBookingNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrBookingCancelled):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, record)
}
