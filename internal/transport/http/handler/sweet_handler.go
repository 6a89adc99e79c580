package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sweet-shop/internal/domain"
	"sweet-shop/internal/transport/http/ez"
	mdw "sweet-shop/internal/transport/http/middleware"
	resp "sweet-shop/internal/transport/http/response"
)

type SweetService interface {
	List(ctx context.Context) ([]domain.Sweet, error)
	Search(ctx context.Context, f domain.SweetFilter) ([]domain.Sweet, error)
	Create(ctx context.Context, in domain.SweetDraft) (*domain.Sweet, error)
	Update(ctx context.Context, id string, p domain.SweetPatch) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error
	Purchase(ctx context.Context, id string) (*domain.Sweet, error)
	Restock(ctx context.Context, id string) (*domain.Sweet, error)
}

type SweetHandler struct {
	svc     SweetService
	protect gin.HandlerFunc
}

func NewSweetHandler(svc SweetService, protect gin.HandlerFunc) *SweetHandler {
	return &SweetHandler{svc: svc, protect: protect}
}

func (h *SweetHandler) Priority() int { return 20 }

// MountAPI registers /sweets. Every route needs a user; writes other than
// purchase need an admin.
func (h *SweetHandler) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/sweets", h.protect)
	adminOnly := []gin.HandlerFunc{mdw.AdminOnly()}

	ez.RegisterAction(g, ez.Action[searchQuery, []domain.Sweet]{
		Method: http.MethodGet, Path: "/search", Binder: ez.BindQuery,
		Handler: h.search,
	})
	ez.RegisterAction(g, ez.Action[struct{}, []domain.Sweet]{
		Method: http.MethodGet, Path: "", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Sweet, error) {
			return h.svc.List(c.Request.Context())
		},
	})
	ez.RegisterAction(g, ez.Action[domain.SweetDraft, *domain.Sweet]{
		Method: http.MethodPost, Path: "", Binder: ez.BindJSON, Status: http.StatusCreated,
		Guards: adminOnly,
		Handler: func(c *gin.Context, in *domain.SweetDraft) (*domain.Sweet, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(g, ez.Action[domain.SweetPatch, *domain.Sweet]{
		Method: http.MethodPut, Path: "/:id", Binder: ez.BindJSON,
		Guards: adminOnly,
		Handler: func(c *gin.Context, in *domain.SweetPatch) (*domain.Sweet, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), *in)
		},
	})
	ez.RegisterAction(g, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodDelete, Path: "/:id", Binder: ez.BindNone,
		Guards: adminOnly,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return resp.Resp{}, err
			}
			return resp.Message("Sweet removed"), nil
		},
	})
	ez.RegisterAction(g, ez.Action[struct{}, *domain.Sweet]{
		Method: http.MethodPost, Path: "/:id/purchase", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Sweet, error) {
			return h.svc.Purchase(c.Request.Context(), c.Param("id"))
		},
	})
	ez.RegisterAction(g, ez.Action[struct{}, *domain.Sweet]{
		Method: http.MethodPost, Path: "/:id/restock", Binder: ez.BindNone,
		Guards: adminOnly,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Sweet, error) {
			return h.svc.Restock(c.Request.Context(), c.Param("id"))
		},
	})
}

// Prices arrive as strings so an empty parameter means "no bound".
type searchQuery struct {
	Query    string `form:"query"`
	Category string `form:"category"`
	MinPrice string `form:"minPrice"`
	MaxPrice string `form:"maxPrice"`
}

func (h *SweetHandler) search(c *gin.Context, in *searchQuery) ([]domain.Sweet, error) {
	minPrice, err := parseBound("minPrice", in.MinPrice)
	if err != nil {
		return nil, err
	}
	maxPrice, err := parseBound("maxPrice", in.MaxPrice)
	if err != nil {
		return nil, err
	}
	return h.svc.Search(c.Request.Context(), domain.SweetFilter{
		Query:    in.Query,
		Category: in.Category,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	})
}

func parseBound(name, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, ez.BadRequest(name + " must be a number")
	}
	return &v, nil
}
