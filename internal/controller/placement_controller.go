package controller

import (
	"errors"
	"strconv"

	"lingua_edu_backend/internal/service"
	"lingua_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PlacementController struct {
	PlacementService *service.PlacementService
}

func NewPlacementController(placementService *service.PlacementService) *PlacementController {
	return &PlacementController{PlacementService: placementService}
}

// @Summary 等级阶梯
// @Tags 分级测试
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/placement/levels [get]
func (c *PlacementController) Levels(ctx *gin.Context) {
	levels, err := c.PlacementService.Levels()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, levels)
}

// @Summary 开始或恢复分级测试
// @Tags 分级测试
// @Security BearerAuth
// @Produce json
// @Param fresh query bool false "已有进行中的测试时是否拒绝而非恢复"
// @Success 200 {object} util.Response
// @Router /api/placement/start [post]
func (c *PlacementController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	fresh := ctx.Query("fresh") == "true"

	view, err := c.PlacementService.Start(user.UserID, fresh)
	if err != nil {
		if errors.Is(err, util.ErrTestInProgress) {
			util.Conflict(ctx, err.Error())
			return
		}
		if errors.Is(err, util.ErrLevelNotFound) {
			util.BadRequest(ctx, "placement ladder is not configured")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

type SubmitAnswerRequest struct {
	AnswerIndex *int `json:"answerIndex" binding:"required"`
}

// @Summary 提交当前题的作答
// @Tags 分级测试
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param body body SubmitAnswerRequest true "作答"
// @Success 200 {object} util.Response
// @Router /api/placement/sessions/{id}/answers [post]
func (c *PlacementController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.PlacementService.SubmitAnswer(user.UserID, ctx.Param("id"), *req.AnswerIndex)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrSessionCompleted):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrConcurrentModify):
			util.Conflict(ctx, "session changed, reload and retry")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// @Summary 我的定级结果
// @Tags 分级测试
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/placement/result [get]
func (c *PlacementController) MyResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.PlacementService.Result(user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 定级结果列表
// @Tags 分级测试管理
// @Security BearerAuth
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/admin/placement/results [get]
func (c *PlacementController) ListResults(ctx *gin.Context) {
	page, limit := pagination(ctx)

	results, total, err := c.PlacementService.ListResults(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Paged(ctx, results, total, page, limit)
}

// @Summary 新增分级题目
// @Tags 分级测试管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.PlacementQuestionRequest true "题目"
// @Success 201 {object} util.Response
// @Router /api/admin/placement/questions [post]
func (c *PlacementController) AddQuestion(ctx *gin.Context) {
	var req service.PlacementQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.PlacementService.AddQuestion(req)
	if err != nil {
		if errors.Is(err, util.ErrLevelNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, question)
}

// @Summary 删除分级题目
// @Tags 分级测试管理
// @Security BearerAuth
// @Produce json
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/admin/placement/questions/{id} [delete]
func (c *PlacementController) DeleteQuestion(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	if err := c.PlacementService.DeleteQuestion(uint(id)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
