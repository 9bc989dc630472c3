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

type UserHandler struct {
	userService service.UserService
	pageSize    int
}

func NewUserHandler(userService service.UserService, pageSize int) *UserHandler {
	return &UserHandler{userService: userService, pageSize: pageSize}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// self-service profile, any authenticated role
	me := rg.Group("/me", middleware.Authorize(access.Authenticated))
	me.GET("/", h.Me)
	me.PATCH("/", h.UpdateMe)

	admin := rg.Group("", middleware.Authorize(access.AdminOnly))
	admin.GET("/", h.List)
	admin.POST("/", h.Create)
	admin.GET("/:username/", h.Get)
	admin.PATCH("/:username/", h.Update)
	admin.DELETE("/:username/", h.Delete)
}

func (h *UserHandler) List(c *gin.Context) {
	page, pageSize, ok := pageParams(c, h.pageSize)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.userService.List(ctx, c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserDTO
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.userService.Create(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.userService.Get(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserDTO
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.userService.Update(ctx, c.Param("username"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.userService.Delete(ctx, c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me handles GET /users/me/
func (h *UserHandler) Me(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.userService.Me(ctx, middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateMe handles PATCH /users/me/. A role in the body is ignored.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateUserDTO
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.userService.UpdateMe(ctx, middleware.CurrentActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
