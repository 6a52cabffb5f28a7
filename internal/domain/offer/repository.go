// internal/domain/offer/repository.go
package offer

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/kupipodariday-backend/internal/domain/wish"
	"github.com/your-org/kupipodariday-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Query filters an offer listing; zero fields match everything
type Query struct {
	UserID uint
	ItemID uint
}

// Repository is the storage contract of the offer ledger
type Repository interface {
	Create(ctx context.Context, o *Offer) error
	FindByID(ctx context.Context, id uint) (*Offer, error)
	Find(ctx context.Context, q Query) ([]Offer, error)
	FindWish(ctx context.Context, id uint) (*wish.Wish, error)
	// Raise adds amount to the raised total of a wish in a single statement.
	// With capAtPrice it reports false and changes nothing when the new
	// total would exceed the price.
	Raise(ctx context.Context, wishID uint, amount int64, capAtPrice bool) (bool, error)
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm backed offer repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&gormRepository{db: tx}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *gormRepository) Create(ctx context.Context, o *Offer) error {
	if err := r.db.WithContext(ctx).Omit("User", "Item").Create(o).Error; err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*Offer, error) {
	var o Offer
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Item").
		Preload("Item.Owner").
		First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("offer")
		}
		return nil, fmt.Errorf("failed to retrieve offer: %w", err)
	}

	expose(&o)
	return &o, nil
}

func (r *gormRepository) Find(ctx context.Context, q Query) ([]Offer, error) {
	query := r.db.WithContext(ctx).
		Preload("User").
		Preload("Item").
		Preload("Item.Owner")

	if q.UserID != 0 {
		query = query.Where("user_id = ?", q.UserID)
	}
	if q.ItemID != 0 {
		query = query.Where("item_id = ?", q.ItemID)
	}

	var offers []Offer
	if err := query.Order("created_at DESC").Order("id DESC").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}

	for i := range offers {
		expose(&offers[i])
	}
	return offers, nil
}

func (r *gormRepository) FindWish(ctx context.Context, id uint) (*wish.Wish, error) {
	var w wish.Wish
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("wish")
		}
		return nil, fmt.Errorf("failed to retrieve wish: %w", err)
	}
	return &w, nil
}

func (r *gormRepository) Raise(ctx context.Context, wishID uint, amount int64, capAtPrice bool) (bool, error) {
	query := r.db.WithContext(ctx).Model(&wish.Wish{}).Where("id = ?", wishID)
	if capAtPrice {
		query = query.Where("raised + ? <= price", amount)
	}

	result := query.UpdateColumn("raised", gorm.Expr("raised + ?", amount))
	if result.Error != nil {
		return false, fmt.Errorf("failed to raise wish funds: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func expose(o *Offer) {
	o.expose()
	if o.Item != nil {
		o.Item.Expose()
	}
}
