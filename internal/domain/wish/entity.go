// internal/domain/wish/entity.go
package wish

import (
	"time"

	"github.com/your-org/kupipodariday-backend/internal/domain/user"
)

// WishlistItemsTable is the join table linking wishlists to wishes
const WishlistItemsTable = "wishlist_items"

// Wish represents a gift a user wants to receive. Price and Raised are
// stored in minor currency units.
type Wish struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:250" json:"name"`
	Link        string    `gorm:"not null;size:2048" json:"link"`
	Image       string    `gorm:"not null;size:2048" json:"image"`
	Price       int64     `gorm:"not null;check:price >= 0" json:"price"`
	Raised      int64     `gorm:"not null;default:0;check:raised >= 0" json:"raised"`
	Description string    `gorm:"not null;size:1024" json:"description"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	Copied      int64     `gorm:"not null;default:0;index" json:"copied"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Owner  *user.User     `gorm:"foreignKey:OwnerID" json:"-"`
	Offers []Contribution `gorm:"foreignKey:ItemID" json:"offers,omitempty"`

	OwnerProfile *user.PublicProfile `gorm:"-" json:"owner,omitempty"`
}

// TableName overrides the table name for Wish
func (Wish) TableName() string {
	return "wishes"
}

// IsFunded reports whether contributions already cover the price
func (w *Wish) IsFunded() bool {
	return w.Price > 0 && w.Raised >= w.Price
}

// FundingStarted reports whether any money was raised for the wish
func (w *Wish) FundingStarted() bool {
	return w.Raised > 0
}

// Remaining returns the amount still missing to reach the price
func (w *Wish) Remaining() int64 {
	if w.Raised >= w.Price {
		return 0
	}
	return w.Price - w.Raised
}

// Expose fills the public projections of loaded relations
func (w *Wish) Expose() {
	if w.Owner != nil {
		profile := w.Owner.Public()
		w.OwnerProfile = &profile
	}
	for i := range w.Offers {
		w.Offers[i].expose()
	}
}

// Contribution is the read model of an offer as listed under its wish.
// The offers table itself is owned by the offer ledger.
type Contribution struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `json:"-"`
	ItemID    uint      `json:"item_id"`
	Amount    int64     `json:"amount"`
	Hidden    bool      `json:"hidden"`
	CreatedAt time.Time `json:"created_at"`

	User        *user.User          `gorm:"foreignKey:UserID" json:"-"`
	Contributor *user.PublicProfile `gorm:"-" json:"user,omitempty"`
}

// TableName maps contributions onto the offers table
func (Contribution) TableName() string {
	return "offers"
}

func (c *Contribution) expose() {
	if c.Hidden || c.User == nil {
		c.Contributor = nil
		return
	}
	profile := c.User.Public()
	c.Contributor = &profile
}

// CollectionEntry is one wish held in a user's personal collection.
// A copy adds an entry that references the same wish record.
type CollectionEntry struct {
	UserID  uint      `gorm:"primaryKey" json:"user_id"`
	WishID  uint      `gorm:"primaryKey;index" json:"wish_id"`
	AddedAt time.Time `gorm:"not null" json:"added_at"`
}

// TableName overrides the table name for CollectionEntry
func (CollectionEntry) TableName() string {
	return "user_wishes"
}

// Collection is a user's wish collection after a copy
type Collection struct {
	UserID uint   `json:"user_id"`
	Wishes []Wish `json:"wishes"`
}
