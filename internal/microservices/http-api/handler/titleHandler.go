package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"yamdb/internal/access"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	svc      service.TitleService
	pageSize int
}

func NewTitleHandler(svc service.TitleService, pageSize int) *TitleHandler {
	return &TitleHandler{svc: svc, pageSize: pageSize}
}

func (h *TitleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// Public routes
	rg.GET("/", h.List)
	rg.GET("/:title_id/", h.Get)

	// Admin-only routes
	rg.POST("/", middleware.Authorize(access.General), h.Create)
	rg.PATCH("/:title_id/", middleware.Authorize(access.General), h.Update)
	rg.DELETE("/:title_id/", middleware.Authorize(access.General), h.Delete)
}

// List handles GET /titles/?genre=&category=&year=&name=
func (h *TitleHandler) List(c *gin.Context) {
	var q dto.TitleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	page, pageSize, ok := pageParams(c, h.pageSize)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	filter := repository.TitleFilter{
		Genre:    strings.TrimSpace(q.Genre),
		Category: strings.TrimSpace(q.Category),
		Year:     q.Year,
		Name:     strings.TrimSpace(q.Name),
	}
	resp, err := h.svc.List(ctx, filter, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Create(c *gin.Context) {
	var in dto.CreateTitleDTO
	if err := c.ShouldBindJSON(&in); err != nil {
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

func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	var in dto.UpdateTitleDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Update(ctx, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
