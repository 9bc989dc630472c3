package handler

import (
	"context"
	"net/http"
	"time"

	"yamdb/internal/access"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	svc      service.CategoryService
	pageSize int
}

func NewCategoryHandler(svc service.CategoryService, pageSize int) *CategoryHandler {
	return &CategoryHandler{svc: svc, pageSize: pageSize}
}

func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.List)
	rg.POST("/", middleware.Authorize(access.General), h.Create)
	rg.PATCH("/:slug/", middleware.Authorize(access.General), h.Update)
	rg.DELETE("/:slug/", middleware.Authorize(access.General), h.Delete)

	// single category retrieve and full update are disabled
	rg.GET("/:slug/", methodNotAllowed)
	rg.PUT("/:slug/", methodNotAllowed)
}

func (h *CategoryHandler) List(c *gin.Context) {
	page, pageSize, ok := pageParams(c, h.pageSize)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.List(ctx, c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var in dto.CreateCategoryDTO
	if err := c.ShouldBind(&in); err != nil {
		respondBindError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Create(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	var in dto.UpdateCategoryDTO
	if err := c.ShouldBind(&in); err != nil {
		respondBindError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Update(ctx, c.Param("slug"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
