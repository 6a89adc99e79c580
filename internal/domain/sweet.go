package domain

import (
	"context"
	"time"
)

type Sweet struct {
	ID          string    `gorm:"primaryKey;size:36" json:"_id"`
	Name        string    `gorm:"size:128;not null;index" json:"name"`
	Category    string    `gorm:"size:64;not null;index" json:"category"`
	Price       float64   `gorm:"not null" json:"price"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	Description string    `gorm:"size:1024" json:"description,omitempty"`
	ImageURL    string    `gorm:"size:512" json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Sweet) TableName() string { return "sweets" }

// SweetDraft is the create payload. Pointers tell "absent" apart from zero.
type SweetDraft struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"imageUrl"`
}

// SweetPatch is the update payload; nil fields keep the stored value.
type SweetPatch struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"imageUrl"`
}

// Columns returns the provided fields keyed by column name.
func (p SweetPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.Quantity != nil {
		cols["quantity"] = *p.Quantity
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	return cols
}

// CategoryAll disables the category facet of a search.
const CategoryAll = "All"

type SweetFilter struct {
	Query    string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

type SweetRepository interface {
	Create(ctx context.Context, s *Sweet) error
	FindByID(ctx context.Context, id string) (*Sweet, error)
	List(ctx context.Context) ([]Sweet, error)
	Search(ctx context.Context, f SweetFilter) ([]Sweet, error)
	Update(ctx context.Context, id string, p SweetPatch) (*Sweet, error)
	Delete(ctx context.Context, id string) (*Sweet, error)
	// AdjustQuantity adds delta to the stock in one conditional statement.
	// A decrement that would go below zero fails with ErrOutOfStock.
	AdjustQuantity(ctx context.Context, id string, delta int) (*Sweet, error)
}
