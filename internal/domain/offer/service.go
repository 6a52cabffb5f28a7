// internal/domain/offer/service.go
package offer

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/your-org/kupipodariday-backend/internal/config"
	"github.com/your-org/kupipodariday-backend/internal/pkg/apperrors"
	"github.com/your-org/kupipodariday-backend/internal/pkg/metrics"
)

// Invalidator drops cached listings that embed funding totals
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Service handles offer business logic
type Service struct {
	repo     Repository
	rankings Invalidator
	config   *config.Config
	log      *logrus.Logger
}

// NewService creates a new offer service. rankings may be nil.
func NewService(repo Repository, rankings Invalidator, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		repo:     repo,
		rankings: rankings,
		config:   cfg,
		log:      log,
	}
}

// Record books a contribution and raises the wish total in one transaction
func (s *Service) Record(ctx context.Context, userID uint, req *CreateRequest) (*Offer, error) {
	if req.Amount <= 0 {
		return nil, apperrors.New(apperrors.ErrValidation, "amount must be positive")
	}

	allowOverfunding := s.config != nil && s.config.Rules.AllowOverfunding
	o := &Offer{
		UserID: userID,
		ItemID: req.ItemID,
		Amount: req.Amount,
		Hidden: req.Hidden,
	}

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		w, err := repo.FindWish(ctx, req.ItemID)
		if err != nil {
			return err
		}

		if w.OwnerID == userID {
			return apperrors.New(apperrors.ErrOwnershipViolation, "you cannot contribute to your own wish")
		}
		if w.IsFunded() {
			return apperrors.New(apperrors.ErrConflict, "the required amount has already been raised")
		}
		if !allowOverfunding && req.Amount > w.Remaining() {
			return apperrors.Newf(apperrors.ErrConflict, "amount exceeds the remaining %d", w.Remaining())
		}

		raised, err := repo.Raise(ctx, w.ID, req.Amount, !allowOverfunding)
		if err != nil {
			return err
		}
		if !raised {
			// a concurrent offer got there first
			return apperrors.New(apperrors.ErrConflict, "amount exceeds the remaining funding goal")
		}

		return repo.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	if s.rankings != nil {
		s.rankings.Invalidate(ctx)
	}
	metrics.RecordOffer(o.Amount)
	s.log.WithFields(logrus.Fields{
		"offer_id": o.ID,
		"wish_id":  o.ItemID,
		"user_id":  userID,
		"amount":   o.Amount,
	}).Info("offer recorded")

	return s.repo.FindByID(ctx, o.ID)
}

// Get returns a single offer
func (s *Service) Get(ctx context.Context, id uint) (*Offer, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns every offer, newest first
func (s *Service) List(ctx context.Context) ([]Offer, error) {
	return s.repo.Find(ctx, Query{})
}

// ListByUser returns the offers a user made
func (s *Service) ListByUser(ctx context.Context, userID uint) ([]Offer, error) {
	return s.repo.Find(ctx, Query{UserID: userID})
}

// ListForWish returns the offers made towards a wish
func (s *Service) ListForWish(ctx context.Context, wishID uint) ([]Offer, error) {
	if _, err := s.repo.FindWish(ctx, wishID); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, Query{ItemID: wishID})
}
