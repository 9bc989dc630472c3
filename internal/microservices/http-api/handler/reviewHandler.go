package handler

import (
	"context"
	"net/http"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
	pageSize      int
}

func NewReviewHandler(reviewService service.ReviewService, pageSize int) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		pageSize:      pageSize,
	}
}

// RegisterRoutes registers review routes under the titles group.
// Ownership is checked by the service once the review is loaded.
func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	reviews := router.Group("/:title_id/reviews")
	{
		reviews.GET("/", h.List)
		reviews.POST("/", h.Create)
		reviews.GET("/:review_id/", h.Get)
		reviews.PATCH("/:review_id/", h.Update)
		reviews.DELETE("/:review_id/", h.Delete)
	}
}

// List returns the reviews of a title, newest first
// GET /api/v1/titles/:title_id/reviews/
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	page, pageSize, ok := pageParams(c, h.pageSize)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.reviewService.List(ctx, titleID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create posts the caller's review; one per title
// POST /api/v1/titles/:title_id/reviews/
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	var req dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		// anonymous callers learn they must log in before anything about the body
		if middleware.CurrentActor(c) == nil {
			respondError(c, service.ErrUnauthenticated)
			return
		}
		respondBindError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.reviewService.Create(ctx, middleware.CurrentActor(c), titleID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := idParam(c, "review_id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.reviewService.Get(ctx, titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := idParam(c, "review_id")
	if !ok {
		return
	}
	var req dto.UpdateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		if middleware.CurrentActor(c) == nil {
			respondError(c, service.ErrUnauthenticated)
			return
		}
		respondBindError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.reviewService.Update(ctx, middleware.CurrentActor(c), titleID, reviewID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := idParam(c, "review_id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.reviewService.Delete(ctx, middleware.CurrentActor(c), titleID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
