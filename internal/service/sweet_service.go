package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"sweet-shop/internal/domain"
	"sweet-shop/internal/events"
	"sweet-shop/pkg/utils"
)

const MsgMissingFields = "Please add all required fields"

var stockOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "sweet_stock_operations_total", Help: "Catalog mutations by operation and result"},
	[]string{"op", "result"},
)

func init() { prometheus.MustRegister(stockOps) }

type SweetService struct {
	repo   domain.SweetRepository
	events events.Publisher
	log    *zap.Logger
}

func NewSweetService(repo domain.SweetRepository, pub events.Publisher, l *zap.Logger) *SweetService {
	if pub == nil {
		pub = events.Noop{}
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &SweetService{repo: repo, events: pub, log: l}
}

func (s *SweetService) List(ctx context.Context) ([]domain.Sweet, error) {
	sweets, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sweets: %w", err)
	}
	return sweets, nil
}

func (s *SweetService) Search(ctx context.Context, f domain.SweetFilter) ([]domain.Sweet, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return []domain.Sweet{}, nil
	}
	sweets, err := s.repo.Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search sweets: %w", err)
	}
	return sweets, nil
}

func (s *SweetService) Create(ctx context.Context, in domain.SweetDraft) (*domain.Sweet, error) {
	if blank(in.Name) || blank(in.Category) || in.Price == nil || in.Quantity == nil {
		return nil, domain.Errorf(domain.ErrValidation, MsgMissingFields)
	}
	if err := checkAmounts(in.Price, in.Quantity); err != nil {
		return nil, err
	}

	sw := &domain.Sweet{
		ID:       utils.NewID(),
		Name:     strings.TrimSpace(*in.Name),
		Category: strings.TrimSpace(*in.Category),
		Price:    *in.Price,
		Quantity: *in.Quantity,
	}
	if in.Description != nil {
		sw.Description = *in.Description
	}
	if in.ImageURL != nil {
		sw.ImageURL = *in.ImageURL
	}
	if err := s.repo.Create(ctx, sw); err != nil {
		return nil, fmt.Errorf("create sweet: %w", err)
	}
	s.done(ctx, "create", events.SweetCreated, sw)
	return sw, nil
}

func (s *SweetService) Update(ctx context.Context, id string, p domain.SweetPatch) (*domain.Sweet, error) {
	if (p.Name != nil && blank(p.Name)) || (p.Category != nil && blank(p.Category)) {
		return nil, domain.Errorf(domain.ErrValidation, "Name and category cannot be empty")
	}
	if err := checkAmounts(p.Price, p.Quantity); err != nil {
		return nil, err
	}
	if p.Name != nil {
		p.Name = trimmed(*p.Name)
	}
	if p.Category != nil {
		p.Category = trimmed(*p.Category)
	}

	sw, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return nil, s.failed("update", id, err)
	}
	s.done(ctx, "update", events.SweetUpdated, sw)
	return sw, nil
}

func (s *SweetService) Delete(ctx context.Context, id string) error {
	sw, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.failed("delete", id, err)
	}
	s.done(ctx, "delete", events.SweetDeleted, sw)
	return nil
}

// Purchase takes exactly one unit out of stock.
func (s *SweetService) Purchase(ctx context.Context, id string) (*domain.Sweet, error) {
	sw, err := s.repo.AdjustQuantity(ctx, id, -1)
	if err != nil {
		return nil, s.failed("purchase", id, err)
	}
	s.done(ctx, "purchase", events.SweetPurchased, sw)
	return sw, nil
}

// Restock puts exactly one unit back. There is no upper bound.
func (s *SweetService) Restock(ctx context.Context, id string) (*domain.Sweet, error) {
	sw, err := s.repo.AdjustQuantity(ctx, id, 1)
	if err != nil {
		return nil, s.failed("restock", id, err)
	}
	s.done(ctx, "restock", events.SweetRestocked, sw)
	return sw, nil
}

func (s *SweetService) done(ctx context.Context, op string, t events.Type, sw *domain.Sweet) {
	stockOps.WithLabelValues(op, "ok").Inc()

	e := events.Event{Type: t, SweetID: sw.ID, Name: sw.Name, Quantity: sw.Quantity, At: time.Now().UTC()}
	if u := domain.UserFrom(ctx); u != nil {
		e.ActorID = u.ID
	}
	// the request may already be gone by the time the broker answers
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.events.Publish(pctx, e); err != nil {
		s.log.Warn("publish stock event", zap.String("type", string(t)), zap.String("sweet_id", sw.ID), zap.Error(err))
	}
}

func (s *SweetService) failed(op, id string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		stockOps.WithLabelValues(op, "not_found").Inc()
		return domain.Errorf(domain.ErrNotFound, "Sweet not found")
	case errors.Is(err, domain.ErrOutOfStock):
		stockOps.WithLabelValues(op, "out_of_stock").Inc()
		return domain.Errorf(domain.ErrOutOfStock, "Sweet out of stock")
	default:
		stockOps.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("%s sweet %s: %w", op, id, err)
	}
}

func checkAmounts(price *float64, quantity *int) error {
	if price != nil && *price < 0 {
		return domain.Errorf(domain.ErrValidation, "Price cannot be negative")
	}
	if quantity != nil && *quantity < 0 {
		return domain.Errorf(domain.ErrValidation, "Quantity cannot be negative")
	}
	return nil
}

func blank(s *string) bool { return s == nil || strings.TrimSpace(*s) == "" }

func trimmed(s string) *string {
	t := strings.TrimSpace(s)
	return &t
}
