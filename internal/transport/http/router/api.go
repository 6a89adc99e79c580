package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"sweet-shop/internal/core/config"
	"sweet-shop/internal/core/server"
	"sweet-shop/internal/service"
	"sweet-shop/internal/transport/http/handler"
	mdw "sweet-shop/internal/transport/http/middleware"
	resp "sweet-shop/internal/transport/http/response"
)

const APIPrefix = "/api"

// Deps is everything the engine needs from main.
type Deps struct {
	Auth      *service.AuthService
	Sweets    *service.SweetService
	Limits    config.Limits
	Origins   []string
	StaticDir string
}

func NewAPIEngine(l *zap.Logger, d Deps) *gin.Engine {
	r := server.NewRouter(l, d.Origins)

	lim := withDefaults(d.Limits)
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
	)
	if lim.PerIPRPS > 0 {
		r.Use(mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst, 10*time.Minute))
	}
	r.Use(
		mdw.ConcurrencyLimit(lim.MaxInflight),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(time.Duration(lim.TimeoutSec)*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	protect := mdw.Protect(d.Auth)
	api := r.Group(APIPrefix)
	MountAll(api,
		handler.NewSweetHandler(d.Sweets, protect),
		handler.NewAuthHandler(d.Auth, protect),
	)

	server.ServeSPA(r, d.StaticDir, APIPrefix, func(c *gin.Context) {
		c.JSON(http.StatusNotFound, resp.Error(http.StatusNotFound, ""))
	})
	return r
}

// withDefaults fills zero limits so tests can pass an empty config.Limits.
func withDefaults(l config.Limits) config.Limits {
	if l.RPS <= 0 {
		l.RPS = 200
	}
	if l.Burst <= 0 {
		l.Burst = 400
	}
	if l.MaxInflight <= 0 {
		l.MaxInflight = 300
	}
	if l.MaxBodyBytes <= 0 {
		l.MaxBodyBytes = 1 << 20
	}
	if l.PerIPRPS > 0 && l.PerIPBurst <= 0 {
		l.PerIPBurst = 1
	}
	if l.TimeoutSec <= 0 {
		l.TimeoutSec = 10
	}
	return l
}
