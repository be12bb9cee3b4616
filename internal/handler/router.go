package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sdarshil6/url-shortener/internal/middleware"
)

type RouterConfig struct {
	Redirect      *RedirectHandler
	Links         *LinkHandler
	Auth          *AuthHandler
	Health        *HealthHandler
	Authenticator middleware.Authenticator

	RegisterLimit *middleware.RateLimiter
	LoginLimit    *middleware.RateLimiter
	CreateLimit   *middleware.RateLimiter
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	// health check
	router.GET("/healthz", cfg.Health.Healthz)
	router.GET("/readyz", cfg.Health.Readyz)

	router.POST("/users", limit(cfg.RegisterLimit), cfg.Auth.Register)
	router.POST("/token", limit(cfg.LoginLimit), cfg.Auth.Login)

	authed := router.Group("", middleware.Auth(cfg.Authenticator))
	{
		authed.GET("/me/urls", cfg.Links.List)
		authed.POST("/url", limit(cfg.CreateLimit), cfg.Links.Create)

		admin := authed.Group("/admin/:secret")
		admin.GET("", cfg.Links.Get)
		admin.PATCH("", cfg.Links.Update)
		admin.DELETE("", cfg.Links.Delete)
		admin.GET("/analytics", cfg.Links.Analytics)
		admin.GET("/clicks", cfg.Links.ClickHistory)
		admin.GET("/qr", cfg.Links.QRCode)
	}

	router.GET("/:key", cfg.Redirect.Redirect)

	return router
}

func limit(rl *middleware.RateLimiter) gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return rl.Middleware()
}
