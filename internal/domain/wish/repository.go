// internal/domain/wish/repository.go
package wish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/kupipodariday-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ordering columns accepted by Find
const (
	OrderByCopied    = "copied"
	OrderByCreatedAt = "created_at"
)

// Query describes a wish listing
type Query struct {
	OwnerID    uint
	OrderBy    string
	Desc       bool
	Limit      int
	WithOwner  bool
	WithOffers bool
}

// Repository is the storage contract of the wish catalog and the user wish
// collections.
type Repository interface {
	// Create inserts the wish and puts it into its owner's collection
	Create(ctx context.Context, w *Wish) error
	FindByID(ctx context.Context, id uint, withRelations bool) (*Wish, error)
	Find(ctx context.Context, q Query) ([]Wish, error)
	Updates(ctx context.Context, w *Wish, fields map[string]interface{}) error
	// Delete removes the wish with its collection entries and wishlist links.
	// A wish that already has offers is refused with ErrFundingInProgress.
	Delete(ctx context.Context, id uint) error
	IncrementCopied(ctx context.Context, id uint) error
	InCollection(ctx context.Context, userID, wishID uint) (bool, error)
	AddToCollection(ctx context.Context, userID, wishID uint) error
	Collection(ctx context.Context, userID uint) ([]Wish, error)
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm backed wish repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) Create(ctx context.Context, w *Wish) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(w).Error; err != nil {
			return fmt.Errorf("failed to create wish: %w", err)
		}
		entry := CollectionEntry{UserID: w.OwnerID, WishID: w.ID, AddedAt: w.CreatedAt}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to add wish to owner collection: %w", err)
		}
		return nil
	})
}

func (r *gormRepository) FindByID(ctx context.Context, id uint, withRelations bool) (*Wish, error) {
	var w Wish
	query := r.db.WithContext(ctx)
	if withRelations {
		query = query.Preload("Owner").Preload("Offers", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).Preload("Offers.User")
	}

	if err := query.First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("wish")
		}
		return nil, fmt.Errorf("failed to retrieve wish: %w", err)
	}

	w.Expose()
	return &w, nil
}

func (r *gormRepository) Find(ctx context.Context, q Query) ([]Wish, error) {
	query := r.db.WithContext(ctx).Model(&Wish{})

	if q.OwnerID != 0 {
		query = query.Where("owner_id = ?", q.OwnerID)
	}
	if q.WithOwner {
		query = query.Preload("Owner")
	}
	if q.WithOffers {
		query = query.Preload("Offers").Preload("Offers.User")
	}

	column := OrderByCreatedAt
	if q.OrderBy == OrderByCopied {
		column = OrderByCopied
	}
	// id breaks ties so repeated listings come back in the same order
	query = query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: q.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Desc})

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var wishes []Wish
	if err := query.Find(&wishes).Error; err != nil {
		return nil, fmt.Errorf("failed to list wishes: %w", err)
	}

	for i := range wishes {
		wishes[i].Expose()
	}
	return wishes, nil
}

func (r *gormRepository) Updates(ctx context.Context, w *Wish, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&Wish{}).Where("id = ?", w.ID).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update wish: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("wish")
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offers int64
		if err := tx.Model(&Contribution{}).Where("item_id = ?", id).Count(&offers).Error; err != nil {
			return fmt.Errorf("failed to count wish offers: %w", err)
		}
		if offers > 0 {
			return fundingInProgress()
		}

		if err := tx.Where("wish_id = ?", id).Delete(&CollectionEntry{}).Error; err != nil {
			return fmt.Errorf("failed to remove wish from collections: %w", err)
		}
		if err := tx.Exec("DELETE FROM "+WishlistItemsTable+" WHERE wish_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to remove wish from wishlists: %w", err)
		}

		result := tx.Delete(&Wish{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete wish: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("wish")
		}
		return nil
	})
}

func (r *gormRepository) IncrementCopied(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&Wish{}).
		Where("id = ?", id).
		UpdateColumn("copied", gorm.Expr("copied + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("failed to increment copy counter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("wish")
	}
	return nil
}

func (r *gormRepository) InCollection(ctx context.Context, userID, wishID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&CollectionEntry{}).
		Where("user_id = ? AND wish_id = ?", userID, wishID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check wish collection: %w", err)
	}
	return count > 0, nil
}

func (r *gormRepository) AddToCollection(ctx context.Context, userID, wishID uint) error {
	entry := CollectionEntry{UserID: userID, WishID: wishID, AddedAt: time.Now().UTC()}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.New(apperrors.ErrDuplicateCopy, "wish is already in the collection")
		}
		return fmt.Errorf("failed to add wish to collection: %w", err)
	}
	return nil
}

func (r *gormRepository) Collection(ctx context.Context, userID uint) ([]Wish, error) {
	var wishes []Wish
	err := r.db.WithContext(ctx).
		Joins("JOIN user_wishes ON user_wishes.wish_id = wishes.id").
		Where("user_wishes.user_id = ?", userID).
		Preload("Owner").
		Order("user_wishes.added_at DESC").
		Order("wishes.id DESC").
		Find(&wishes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load wish collection: %w", err)
	}

	for i := range wishes {
		wishes[i].Expose()
	}
	return wishes, nil
}
