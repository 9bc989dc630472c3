package handler

import (
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Services is everything the HTTP API delegates to.
type Services struct {
	Auth       service.AuthService
	Categories service.CategoryService
	Genres     service.GenreService
	Titles     service.TitleService
	Reviews    service.ReviewService
	Comments   service.CommentService
	Users      service.UserService
}

type RouterConfig struct {
	PageSize       int
	TrustedProxies []string
	Health         Pinger
}

// SetupRouter builds the gin engine serving /api/v1 and /healthz.
func SetupRouter(svc Services, cfg RouterConfig, logger *logrus.Logger) (*gin.Engine, error) {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(middleware.RequestLogger(logger), gin.Recovery())

	if cfg.Health != nil {
		r.GET("/healthz", NewHealthHandler(cfg.Health).Check)
	}

	api := r.Group("/api/v1", middleware.AuthMiddleware(svc.Auth, logger))
	NewAuthHandler(svc.Auth).RegisterRoutes(api)
	NewCategoryHandler(svc.Categories, cfg.PageSize).RegisterRoutes(api.Group("/categories"))
	NewGenreHandler(svc.Genres, cfg.PageSize).RegisterRoutes(api.Group("/genres"))

	titles := api.Group("/titles")
	NewTitleHandler(svc.Titles, cfg.PageSize).RegisterRoutes(titles)
	NewReviewHandler(svc.Reviews, cfg.PageSize).RegisterRoutes(titles)
	NewCommentHandler(svc.Comments, cfg.PageSize).RegisterRoutes(titles)

	NewUserHandler(svc.Users, cfg.PageSize).RegisterRoutes(api.Group("/users"))
	return r, nil
}
