package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func pagination(ctx *gin.Context) (page, limit int) {
	page = 1
	limit = 20
	if p := ctx.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := ctx.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	return page, limit
}

func uintParam(ctx *gin.Context, name string) (uint, bool) {
	v, err := strconv.Atoi(ctx.Param(name))
	if err != nil || v <= 0 {
		return 0, false
	}
	return uint(v), true
}
