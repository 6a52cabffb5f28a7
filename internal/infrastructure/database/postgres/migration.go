// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/kupipodariday-backend/internal/domain/offer"
	"github.com/your-org/kupipodariday-backend/internal/domain/user"
	"github.com/your-org/kupipodariday-backend/internal/domain/wish"
	"github.com/your-org/kupipodariday-backend/internal/domain/wishlist"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log *logrus.Logger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("running database auto-migrations")

	if err := wishlist.SetupJoinTable(m.db); err != nil {
		return err
	}

	// dependency order
	models := []interface{}{
		&user.User{},
		&wish.Wish{},
		&wish.CollectionEntry{},
		&offer.Offer{},
		&wishlist.Wishlist{},
		&wishlist.WishlistItem{},
	}

	for _, model := range models {
		m.log.Debugf("migrating model %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("database auto-migrations completed")
	return nil
}

// CreateIndexes creates the indexes the rankings and listings rely on
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_wishes_copied_rank ON wishes(copied DESC, id DESC)",
		"CREATE INDEX IF NOT EXISTS idx_wishes_created_rank ON wishes(created_at DESC, id DESC)",
		"CREATE INDEX IF NOT EXISTS idx_user_wishes_user_added ON user_wishes(user_id, added_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_offers_item_created ON offers(item_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_offers_user_created ON offers(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_wishlists_owner_created ON wishlists(owner_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users(LOWER(username))",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).Warn("failed to create index")
			failed++
		}
	}

	m.log.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("database indexes ensured")

	if failed > 0 {
		return fmt.Errorf("%d indexes could not be created", failed)
	}
	return nil
}

// seedAccount describes a development account
type seedAccount struct {
	Username    string
	DisplayName string
	Email       string
	Password    string
}

// SeedInitialData inserts development accounts with a couple of wishes
func (m *Migration) SeedInitialData() error {
	m.log.Info("seeding initial data")

	accounts := []seedAccount{
		{Username: "alice", DisplayName: "Alice", Email: "alice@example.com", Password: "present4you"},
		{Username: "bob", DisplayName: "Bob", Email: "bob@example.com", Password: "present4you"},
	}

	for _, account := range accounts {
		owner, err := m.seedUser(account)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", account.Username, err)
		}
		if err := m.seedWish(owner); err != nil {
			return fmt.Errorf("failed to seed wish for %s: %w", account.Username, err)
		}
	}

	m.log.Info("initial data seeded")
	return nil
}

func (m *Migration) seedUser(account seedAccount) (*user.User, error) {
	var existing user.User
	if err := m.db.Where("username = ?", account.Username).First(&existing).Error; err == nil {
		m.log.WithField("username", account.Username).Debug("seed user already exists")
		return &existing, nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		Username:    account.Username,
		DisplayName: account.DisplayName,
		Email:       account.Email,
		Password:    string(hashedPassword),
	}
	if err := m.db.Create(u).Error; err != nil {
		return nil, err
	}

	m.log.WithFields(logrus.Fields{"username": u.Username, "user_id": u.ID}).Info("created seed user")
	return u, nil
}

func (m *Migration) seedWish(owner *user.User) error {
	var count int64
	if err := m.db.Model(&wish.Wish{}).Where("owner_id = ?", owner.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return wish.NewRepository(m.db).Create(context.Background(), &wish.Wish{
		Name:        "Paper kite",
		Link:        "https://example.com/kite",
		Image:       "https://example.com/kite.png",
		Price:       150000,
		Description: "A hand made paper kite for " + owner.GetDisplayName(),
		OwnerID:     owner.ID,
	})
}

// GetTableInfo logs row counts of the application tables
func (m *Migration) GetTableInfo() {
	tables := []string{"users", "wishes", "user_wishes", "offers", "wishlists", wish.WishlistItemsTable}
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			m.log.WithError(err).WithField("table", table).Warn("failed to count rows")
			continue
		}
		m.log.WithFields(logrus.Fields{"table": table, "rows": count}).Debug("table info")
	}
}
