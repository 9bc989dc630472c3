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

type CommentHandler struct {
	commentService service.CommentService
	pageSize       int
}

func NewCommentHandler(commentService service.CommentService, pageSize int) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		pageSize:       pageSize,
	}
}

// RegisterRoutes registers comment routes under the titles group
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	comments := router.Group("/:title_id/reviews/:review_id/comments")
	{
		comments.GET("/", h.List)
		comments.POST("/", h.Create)
		comments.GET("/:comment_id/", h.Get)
		comments.PATCH("/:comment_id/", h.Update)
		comments.DELETE("/:comment_id/", h.Delete)
	}
}

// parents reads the title and review ids from the path
func parents(c *gin.Context) (titleID, reviewID int64, ok bool) {
	if titleID, ok = idParam(c, "title_id"); !ok {
		return 0, 0, false
	}
	if reviewID, ok = idParam(c, "review_id"); !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

func (h *CommentHandler) List(c *gin.Context) {
	titleID, reviewID, ok := parents(c)
	if !ok {
		return
	}
	page, pageSize, ok := pageParams(c, h.pageSize)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.commentService.List(ctx, titleID, reviewID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) Create(c *gin.Context) {
	titleID, reviewID, ok := parents(c)
	if !ok {
		return
	}
	var req dto.CreateCommentDTO
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

	resp, err := h.commentService.Create(ctx, middleware.CurrentActor(c), titleID, reviewID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := parents(c)
	if !ok {
		return
	}
	commentID, ok := idParam(c, "comment_id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.commentService.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := parents(c)
	if !ok {
		return
	}
	commentID, ok := idParam(c, "comment_id")
	if !ok {
		return
	}
	var req dto.UpdateCommentDTO
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

	resp, err := h.commentService.Update(ctx, middleware.CurrentActor(c), titleID, reviewID, commentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := parents(c)
	if !ok {
		return
	}
	commentID, ok := idParam(c, "comment_id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.commentService.Delete(ctx, middleware.CurrentActor(c), titleID, reviewID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
