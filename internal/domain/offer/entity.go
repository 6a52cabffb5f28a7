// internal/domain/offer/entity.go
package offer

import (
	"time"

	"github.com/your-org/kupipodariday-backend/internal/domain/user"
	"github.com/your-org/kupipodariday-backend/internal/domain/wish"
)

// Offer is a contribution of a user towards someone else's wish.
// Offers are immutable once recorded.
type Offer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	ItemID    uint      `gorm:"not null;index" json:"item_id"`
	Amount    int64     `gorm:"not null;check:amount > 0" json:"amount"` // minor currency units
	Hidden    bool      `gorm:"not null;default:false" json:"hidden"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User *user.User `gorm:"foreignKey:UserID" json:"-"`
	Item *wish.Wish `gorm:"foreignKey:ItemID" json:"item,omitempty"`

	Contributor *user.PublicProfile `gorm:"-" json:"user,omitempty"`
}

// TableName overrides the table name for Offer
func (Offer) TableName() string {
	return "offers"
}

// expose publishes the contributor unless the offer is hidden
func (o *Offer) expose() {
	if o.Hidden || o.User == nil {
		o.Contributor = nil
		return
	}
	profile := o.User.Public()
	o.Contributor = &profile
}

// CreateRequest represents offer creation data
type CreateRequest struct {
	ItemID uint  `json:"itemId" binding:"required"`
	Amount int64 `json:"amount" binding:"required,gt=0"`
	Hidden bool  `json:"hidden"`
}
