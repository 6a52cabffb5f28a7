// internal/domain/wish/service.go
package wish

import (
	"context"
	"errors"
	"iter"

	"github.com/sirupsen/logrus"
	"github.com/your-org/kupipodariday-backend/internal/config"
	"github.com/your-org/kupipodariday-backend/internal/domain/user"
	"github.com/your-org/kupipodariday-backend/internal/pkg/apperrors"
	"github.com/your-org/kupipodariday-backend/internal/pkg/metrics"
)

// DefaultRankingLimit is used when the configuration does not set one
const DefaultRankingLimit = 40

// UserLookup resolves the acting user
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*user.User, error)
}

// Service handles wish business logic and the consistency rules around it
type Service struct {
	repo   Repository
	users  UserLookup
	cache  *RankingCache
	config *config.Config
	log    *logrus.Logger
}

// NewService creates a new wish service. cache may be nil.
func NewService(repo Repository, users UserLookup, cache *RankingCache, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		cache:  cache,
		config: cfg,
		log:    log,
	}
}

// Create adds a new wish owned by ownerID
func (s *Service) Create(ctx context.Context, ownerID uint, req *CreateRequest) (*Wish, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}

	w := &Wish{
		Name:        req.Name,
		Link:        req.Link,
		Image:       req.Image,
		Price:       req.Price,
		Description: req.Description,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	s.log.WithFields(logrus.Fields{"wish_id": w.ID, "owner_id": ownerID}).Info("wish created")

	return w, nil
}

// Get returns a wish with its owner and offers
func (s *Service) Get(ctx context.Context, id uint) (*Wish, error) {
	return s.repo.FindByID(ctx, id, true)
}

// ApplyUpdate checks ownership and the price lock, then writes only the
// fields present in the request.
func (s *Service) ApplyUpdate(ctx context.Context, id uint, req *UpdateRequest, actingUserID uint) (*Wish, error) {
	w, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if err := AuthorizeMutation(w, actingUserID); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := AuthorizePriceChange(w, req); err != nil {
		return nil, err
	}

	updates := MergeUpdate(w, req)
	if len(updates) == 0 {
		return w, nil
	}
	if err := s.repo.Updates(ctx, w, updates); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return w, nil
}

// RemoveWish deletes a wish on behalf of its owner. Offers are never
// deleted, so a wish that collected any money cannot be removed.
func (s *Service) RemoveWish(ctx context.Context, id uint, actingUserID uint) (*Wish, error) {
	w, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if err := AuthorizeMutation(w, actingUserID); err != nil {
		return nil, err
	}
	if w.FundingStarted() {
		return nil, fundingInProgress()
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	s.log.WithFields(logrus.Fields{"wish_id": id, "owner_id": actingUserID}).Info("wish removed")

	return w, nil
}

// Ranking is an ordered, finite wish listing. Every iteration reads the
// listing again, so a Ranking can be ranged over any number of times.
type Ranking struct {
	load func(ctx context.Context) ([]Wish, error)
}

// All yields the ranked wishes. A storage failure is yielded once as the
// final element.
func (r *Ranking) All(ctx context.Context) iter.Seq2[Wish, error] {
	return func(yield func(Wish, error) bool) {
		wishes, err := r.load(ctx)
		if err != nil {
			yield(Wish{}, err)
			return
		}
		for _, w := range wishes {
			if !yield(w, nil) {
				return
			}
		}
	}
}

// Collect drains the ranking into a slice
func (r *Ranking) Collect(ctx context.Context) ([]Wish, error) {
	wishes := make([]Wish, 0)
	for w, err := range r.All(ctx) {
		if err != nil {
			return nil, err
		}
		wishes = append(wishes, w)
	}
	return wishes, nil
}

// RankTop lists the most copied wishes first
func (s *Service) RankTop(limit int) *Ranking {
	limit = s.rankingLimit(limit)
	return &Ranking{load: func(ctx context.Context) ([]Wish, error) {
		return s.cache.Load(ctx, "top", limit, func(ctx context.Context) ([]Wish, error) {
			return s.repo.Find(ctx, Query{
				OrderBy:    OrderByCopied,
				Desc:       true,
				Limit:      limit,
				WithOwner:  true,
				WithOffers: true,
			})
		})
	}}
}

// RankRecent lists the newest wishes first
func (s *Service) RankRecent(limit int) *Ranking {
	limit = s.rankingLimit(limit)
	return &Ranking{load: func(ctx context.Context) ([]Wish, error) {
		return s.cache.Load(ctx, "recent", limit, func(ctx context.Context) ([]Wish, error) {
			return s.repo.Find(ctx, Query{
				OrderBy:   OrderByCreatedAt,
				Desc:      true,
				Limit:     limit,
				WithOwner: true,
			})
		})
	}}
}

// rankingLimit falls back to the configured limit and never exceeds it
func (s *Service) rankingLimit(limit int) int {
	ceiling := DefaultRankingLimit
	if s.config != nil && s.config.Rules.RankingLimit > 0 {
		ceiling = s.config.Rules.RankingLimit
	}
	if limit <= 0 || limit > ceiling {
		return ceiling
	}
	return limit
}

// CopyWish puts an existing wish into the acting user's collection by
// reference and bumps its copy counter.
func (s *Service) CopyWish(ctx context.Context, wishID, actingUserID uint) (*Collection, error) {
	if _, err := s.users.GetByID(ctx, actingUserID); err != nil {
		return nil, err
	}

	var err error
	if s.config != nil && s.config.Rules.CountFailedCopies {
		err = s.copyCountingFailures(ctx, wishID, actingUserID)
	} else {
		err = s.copyAtomically(ctx, wishID, actingUserID)
	}

	fields := logrus.Fields{"wish_id": wishID, "user_id": actingUserID}
	switch {
	case err == nil:
		metrics.RecordCopy("copied")
		s.log.WithFields(fields).Info("wish copied")
	case errors.Is(err, apperrors.ErrDuplicateCopy):
		metrics.RecordCopy("duplicate")
		s.log.WithFields(fields).Warn("duplicate wish copy rejected")
	default:
		metrics.RecordCopy("failed")
	}
	if err != nil {
		return nil, err
	}

	return s.Collection(ctx, actingUserID)
}

// copyAtomically runs the duplicate check, the counter increment and the
// append in one transaction, so a rejected copy changes nothing.
func (s *Service) copyAtomically(ctx context.Context, wishID, userID uint) error {
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		if _, err := repo.FindByID(ctx, wishID, false); err != nil {
			return err
		}

		held, err := repo.InCollection(ctx, userID, wishID)
		if err != nil {
			return err
		}
		if held {
			return duplicateCopy()
		}

		if err := repo.IncrementCopied(ctx, wishID); err != nil {
			return err
		}
		return repo.AddToCollection(ctx, userID, wishID)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	return nil
}

// copyCountingFailures persists the counter increment before the duplicate
// check and keeps it when the copy is rejected.
func (s *Service) copyCountingFailures(ctx context.Context, wishID, userID uint) error {
	if _, err := s.repo.FindByID(ctx, wishID, false); err != nil {
		return err
	}

	if err := s.repo.IncrementCopied(ctx, wishID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)

	held, err := s.repo.InCollection(ctx, userID, wishID)
	if err != nil {
		return err
	}
	if held {
		return duplicateCopy()
	}

	return s.repo.AddToCollection(ctx, userID, wishID)
}

func fundingInProgress() error {
	return apperrors.New(apperrors.ErrFundingInProgress, "a wish with offers cannot be removed")
}

func duplicateCopy() error {
	return apperrors.New(apperrors.ErrDuplicateCopy, "wish is already in the collection")
}

// Collection returns the wishes held by a user, newest first
func (s *Service) Collection(ctx context.Context, userID uint) (*Collection, error) {
	wishes, err := s.repo.Collection(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wishes == nil {
		wishes = []Wish{}
	}
	return &Collection{UserID: userID, Wishes: wishes}, nil
}

// Invalidate drops cached rankings after a change made outside this service
func (s *Service) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx)
}
