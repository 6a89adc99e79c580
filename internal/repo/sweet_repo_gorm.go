package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"sweet-shop/internal/domain"
)

type SweetRepo struct{ db *gorm.DB }

func NewSweetRepo(db *gorm.DB) *SweetRepo { return &SweetRepo{db: db} }

func (r *SweetRepo) Create(ctx context.Context, s *domain.Sweet) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SweetRepo) FindByID(ctx context.Context, id string) (*domain.Sweet, error) {
	var s domain.Sweet
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SweetRepo) List(ctx context.Context) ([]domain.Sweet, error) {
	sweets := []domain.Sweet{}
	if err := r.db.WithContext(ctx).Find(&sweets).Error; err != nil {
		return nil, err
	}
	return sweets, nil
}

func (r *SweetRepo) Search(ctx context.Context, f domain.SweetFilter) ([]domain.Sweet, error) {
	q := r.db.WithContext(ctx).Model(&domain.Sweet{})
	if f.Query != "" {
		like := "%" + escapeLike(strings.ToLower(f.Query)) + "%"
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(category) LIKE ? ESCAPE '!')", like, like)
	}
	if f.Category != "" && f.Category != domain.CategoryAll {
		q = q.Where("category = ?", f.Category)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}

	sweets := []domain.Sweet{}
	if err := q.Find(&sweets).Error; err != nil {
		return nil, err
	}
	return sweets, nil
}

// Update writes only the provided columns so a concurrent stock change is kept.
func (r *SweetRepo) Update(ctx context.Context, id string, p domain.SweetPatch) (*domain.Sweet, error) {
	var out domain.Sweet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		cols := p.Columns()
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&domain.Sweet{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return err
		}
		return tx.First(&out, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *SweetRepo) Delete(ctx context.Context, id string) (*domain.Sweet, error) {
	var out domain.Sweet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Sweet{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *SweetRepo) AdjustQuantity(ctx context.Context, id string, delta int) (*domain.Sweet, error) {
	var out domain.Sweet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&domain.Sweet{}).Where("id = ?", id)
		if delta < 0 {
			q = q.Where("quantity >= ?", -delta)
		}
		res := q.Update("quantity", gorm.Expr("quantity + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// nothing matched: either the id is unknown or the stock is short
			err := tx.Select("id").First(&out, "id = ?", id).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				return domain.ErrNotFound
			case err != nil:
				return err
			default:
				return domain.ErrOutOfStock
			}
		}
		return tx.First(&out, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// escapeLike quotes LIKE wildcards with '!' so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
