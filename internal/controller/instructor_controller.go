package controller

import (
	"errors"

	"lingua_edu_backend/internal/service"
	"lingua_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InstructorController struct {
	InstructorService *service.InstructorService
}

func NewInstructorController(instructorService *service.InstructorService) *InstructorController {
	return &InstructorController{InstructorService: instructorService}
}

// @Summary 教师目录
// @Tags 教师
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/instructors [get]
func (c *InstructorController) List(ctx *gin.Context) {
	page, limit := pagination(ctx)

	profiles, total, err := c.InstructorService.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Paged(ctx, profiles, total, page, limit)
}

// @Summary 可排课教师
// @Tags 教师管理
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/instructors/assignable [get]
func (c *InstructorController) ListAssignable(ctx *gin.Context) {
	profiles, err := c.InstructorService.ListAssignable()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, profiles)
}

// @Summary 新建教师档案
// @Tags 教师管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.InstructorRequest true "教师档案"
// @Success 201 {object} util.Response
// @Router /api/admin/instructors [post]
func (c *InstructorController) Create(ctx *gin.Context) {
	var req service.InstructorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.InstructorService.Create(req)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, profile)
}

// @Summary 更新教师档案
// @Tags 教师管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "档案ID"
// @Param body body service.InstructorRequest true "教师档案"
// @Success 200 {object} util.Response
// @Router /api/admin/instructors/{id} [put]
func (c *InstructorController) Update(ctx *gin.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.InstructorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.InstructorService.Update(id, req)
	if err != nil {
		if errors.Is(err, util.ErrInstructorUnknown) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}
