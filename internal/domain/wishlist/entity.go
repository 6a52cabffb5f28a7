package wishlist

import (
	"time"

	"github.com/your-org/kupipodariday-backend/internal/domain/user"
	"github.com/your-org/kupipodariday-backend/internal/domain/wish"
)

// Wishlist is a named, user-owned grouping of wishes
type Wishlist struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:250" json:"name"`
	Description string    `gorm:"size:1500" json:"description"`
	Image       string    `gorm:"size:2048" json:"image"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Owner *user.User  `gorm:"foreignKey:OwnerID" json:"-"`
	Items []wish.Wish `gorm:"many2many:wishlist_items;" json:"items"`

	OwnerProfile *user.PublicProfile `gorm:"-" json:"owner,omitempty"`
}

// TableName overrides the table name
func (Wishlist) TableName() string {
	return "wishlists"
}

func (wl *Wishlist) expose() {
	if wl.Owner != nil {
		profile := wl.Owner.Public()
		wl.OwnerProfile = &profile
	}
	if wl.Items == nil {
		wl.Items = []wish.Wish{}
	}
	for i := range wl.Items {
		wl.Items[i].Expose()
	}
}

// WishlistItem links a wish into a wishlist. Membership is a set with no
// ordering guarantee.
type WishlistItem struct {
	WishlistID uint      `gorm:"primaryKey" json:"wishlist_id"`
	WishID     uint      `gorm:"primaryKey;index" json:"wish_id"`
	AddedAt    time.Time `gorm:"autoCreateTime" json:"added_at"`
}

// TableName overrides the table name
func (WishlistItem) TableName() string {
	return wish.WishlistItemsTable
}
