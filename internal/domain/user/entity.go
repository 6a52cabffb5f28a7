// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const DefaultAvatar = "https://i.pravatar.cc/300"

// User represents a registered gift registry member
type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Username            string     `gorm:"uniqueIndex;not null;size:64" json:"username"`
	DisplayName         string     `gorm:"size:200" json:"display_name"`
	Email               string     `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Avatar              string     `gorm:"size:500" json:"avatar"`
	Password            string     `gorm:"not null;size:255" json:"-"` // bcrypt digest
	PasswordResetToken  *string    `gorm:"size:64;index" json:"-"`
	PasswordResetExpiry *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// PublicProfile is what other members see
type PublicProfile struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Avatar      string    `json:"avatar"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate normalises identity fields before insert
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	u.Username = strings.TrimSpace(u.Username)
	if u.Avatar == "" {
		u.Avatar = DefaultAvatar
	}
	return nil
}

// NormalizeEmail is the stored form of an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Public strips private fields
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.GetDisplayName(),
		Avatar:      u.Avatar,
		CreatedAt:   u.CreatedAt,
	}
}

// GetDisplayName returns the display name or falls back to the username
func (u *User) GetDisplayName() string {
	if name := strings.TrimSpace(u.DisplayName); name != "" {
		return name
	}
	return u.Username
}
