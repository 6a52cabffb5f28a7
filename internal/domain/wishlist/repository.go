package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/kupipodariday-backend/internal/domain/wish"
	"github.com/your-org/kupipodariday-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SetupJoinTable registers WishlistItem as the join model of Wishlist.Items.
// It must run before migrations and before the first query.
func SetupJoinTable(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Wishlist{}, "Items", &WishlistItem{}); err != nil {
		return fmt.Errorf("failed to set up wishlist items join table: %w", err)
	}
	return nil
}

// Repository is the storage contract of the wishlist grouping
type Repository interface {
	Create(ctx context.Context, wl *Wishlist, itemIDs []uint) error
	FindByID(ctx context.Context, id uint) (*Wishlist, error)
	Find(ctx context.Context, ownerID uint) ([]Wishlist, error)
	// Updates writes the changed columns; items are replaced when replaceItems is set
	Updates(ctx context.Context, wl *Wishlist, fields map[string]interface{}, itemIDs []uint, replaceItems bool) error
	Delete(ctx context.Context, id uint) error
	CountWishes(ctx context.Context, ids []uint) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm backed wishlist repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, wl *Wishlist, itemIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(wl).Error; err != nil {
			return fmt.Errorf("failed to create wishlist: %w", err)
		}
		return linkItems(tx, wl.ID, itemIDs)
	})
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*Wishlist, error) {
	var wl Wishlist
	err := r.preloaded(ctx).First(&wl, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("wishlist")
		}
		return nil, fmt.Errorf("failed to retrieve wishlist: %w", err)
	}

	wl.expose()
	return &wl, nil
}

func (r *gormRepository) Find(ctx context.Context, ownerID uint) ([]Wishlist, error) {
	query := r.preloaded(ctx)
	if ownerID != 0 {
		query = query.Where("owner_id = ?", ownerID)
	}

	var lists []Wishlist
	if err := query.Order("created_at DESC").Order("id DESC").Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("failed to list wishlists: %w", err)
	}

	for i := range lists {
		lists[i].expose()
	}
	return lists, nil
}

func (r *gormRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("wishes.id ASC")
		}).
		Preload("Items.Owner")
}

func (r *gormRepository) Updates(ctx context.Context, wl *Wishlist, fields map[string]interface{}, itemIDs []uint, replaceItems bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			result := tx.Model(&Wishlist{}).Where("id = ?", wl.ID).Updates(fields)
			if result.Error != nil {
				return fmt.Errorf("failed to update wishlist: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return apperrors.NotFound("wishlist")
			}
		}

		if !replaceItems {
			return nil
		}
		if err := tx.Where("wishlist_id = ?", wl.ID).Delete(&WishlistItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear wishlist items: %w", err)
		}
		return linkItems(tx, wl.ID, itemIDs)
	})
}

func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wishlist_id = ?", id).Delete(&WishlistItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear wishlist items: %w", err)
		}

		result := tx.Delete(&Wishlist{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete wishlist: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("wishlist")
		}
		return nil
	})
}

func (r *gormRepository) CountWishes(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&wish.Wish{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to check wishes: %w", err)
	}
	return count, nil
}

func linkItems(tx *gorm.DB, wishlistID uint, itemIDs []uint) error {
	if len(itemIDs) == 0 {
		return nil
	}
	items := make([]WishlistItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		items = append(items, WishlistItem{WishlistID: wishlistID, WishID: id})
	}
	if err := tx.Create(&items).Error; err != nil {
		return fmt.Errorf("failed to add wishlist items: %w", err)
	}
	return nil
}
