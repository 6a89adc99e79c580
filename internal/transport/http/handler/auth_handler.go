package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"sweet-shop/internal/domain"
	"sweet-shop/internal/service"
	"sweet-shop/internal/transport/http/ez"
	mdw "sweet-shop/internal/transport/http/middleware"
)

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.Session, error)
	Login(ctx context.Context, in service.LoginInput) (*service.Session, error)
	ListUsers(ctx context.Context, q string, offset, limit int) (*service.UserPage, error)
}

type AuthHandler struct {
	svc     AuthService
	protect gin.HandlerFunc
}

func NewAuthHandler(svc AuthService, protect gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{svc: svc, protect: protect}
}

func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) MountAPI(api *gin.RouterGroup) {
	public := api.Group("/auth")
	ez.RegisterAction(public, ez.Action[service.RegisterInput, *service.Session]{
		Method: http.MethodPost, Path: "/register", Binder: ez.BindJSON, Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.RegisterInput) (*service.Session, error) {
			return h.svc.Register(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(public, ez.Action[service.LoginInput, *service.Session]{
		Method: http.MethodPost, Path: "/login", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.LoginInput) (*service.Session, error) {
			return h.svc.Login(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(public, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet, Path: "/me", Binder: ez.BindNone,
		Guards: []gin.HandlerFunc{h.protect},
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return mdw.CurrentUser(c), nil
		},
	})

	type listQ struct {
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=20"`
		Q      string `form:"q"` // name/email substring
	}
	admin := api.Group("/admin", h.protect, mdw.AdminOnly())
	ez.RegisterAction(admin, ez.Action[listQ, *service.UserPage]{
		Method: http.MethodGet, Path: "/users", Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (*service.UserPage, error) {
			return h.svc.ListUsers(c.Request.Context(), in.Q, in.Offset, in.Limit)
		},
	})
}
