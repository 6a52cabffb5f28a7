package wishlist

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/your-org/kupipodariday-backend/internal/pkg/apperrors"
	"github.com/your-org/kupipodariday-backend/internal/pkg/pdf"
)

// Renderer prints a wishlist document
type Renderer interface {
	GenerateWishlist(doc *pdf.Document) (*bytes.Buffer, error)
}

// Service handles wishlist business logic
type Service struct {
	repo     Repository
	renderer Renderer
	log      *logrus.Logger
}

// NewService creates a new wishlist service
func NewService(repo Repository, renderer Renderer, log *logrus.Logger) *Service {
	return &Service{
		repo:     repo,
		renderer: renderer,
		log:      log,
	}
}

// CreateRequest represents wishlist creation data
type CreateRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=250"`
	Description string `json:"description" binding:"max=1500"`
	Image       string `json:"image" binding:"omitempty,url"`
	ItemsID     []uint `json:"itemsId"`
}

// UpdateRequest carries a partial wishlist update. A present ItemsID
// replaces the whole item set.
type UpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=250"`
	Description *string `json:"description" binding:"omitempty,max=1500"`
	Image       *string `json:"image" binding:"omitempty,url"`
	ItemsID     *[]uint `json:"itemsId"`
}

// Create adds a wishlist owned by ownerID
func (s *Service) Create(ctx context.Context, ownerID uint, req *CreateRequest) (*Wishlist, error) {
	if err := validateName(req.Name); err != nil {
		return nil, err
	}
	if err := validateDescription(req.Description); err != nil {
		return nil, err
	}

	itemIDs, err := s.resolveItems(ctx, req.ItemsID)
	if err != nil {
		return nil, err
	}

	wl := &Wishlist{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, wl, itemIDs); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"wishlist_id": wl.ID,
		"owner_id":    ownerID,
		"items":       len(itemIDs),
	}).Info("wishlist created")

	return s.repo.FindByID(ctx, wl.ID)
}

// List returns every wishlist, newest first
func (s *Service) List(ctx context.Context) ([]Wishlist, error) {
	return s.repo.Find(ctx, 0)
}

// ListByOwner returns the wishlists of one user
func (s *Service) ListByOwner(ctx context.Context, ownerID uint) ([]Wishlist, error) {
	return s.repo.Find(ctx, ownerID)
}

// Get returns a wishlist with its items
func (s *Service) Get(ctx context.Context, id uint) (*Wishlist, error) {
	return s.repo.FindByID(ctx, id)
}

// Update changes a wishlist on behalf of its owner
func (s *Service) Update(ctx context.Context, id uint, req *UpdateRequest, actingUserID uint) (*Wishlist, error) {
	wl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(wl, actingUserID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return nil, err
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		if err := validateDescription(*req.Description); err != nil {
			return nil, err
		}
		updates["description"] = *req.Description
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}

	var itemIDs []uint
	if req.ItemsID != nil {
		itemIDs, err = s.resolveItems(ctx, *req.ItemsID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Updates(ctx, wl, updates, itemIDs, req.ItemsID != nil); err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, id)
}

// Remove deletes a wishlist on behalf of its owner. The wishes stay.
func (s *Service) Remove(ctx context.Context, id uint, actingUserID uint) (*Wishlist, error) {
	wl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(wl, actingUserID); err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"wishlist_id": id, "owner_id": actingUserID}).Info("wishlist removed")
	return wl, nil
}

// ExportPDF renders a wishlist as a printable PDF
func (s *Service) ExportPDF(ctx context.Context, id uint) (*bytes.Buffer, *Wishlist, error) {
	wl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	buf, err := s.renderer.GenerateWishlist(Document(wl))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to export wishlist: %w", err)
	}
	return buf, wl, nil
}

// Document converts a loaded wishlist into its printable form
func Document(wl *Wishlist) *pdf.Document {
	doc := &pdf.Document{
		Title:       wl.Name,
		Description: wl.Description,
		Image:       wl.Image,
	}
	if wl.OwnerProfile != nil {
		doc.Owner = wl.OwnerProfile.DisplayName
	}
	for _, item := range wl.Items {
		doc.Items = append(doc.Items, pdf.Item{
			Name:   item.Name,
			Link:   item.Link,
			Image:  item.Image,
			Price:  item.Price,
			Raised: item.Raised,
		})
	}
	return doc
}

// resolveItems drops duplicate ids and checks that every wish exists
func (s *Service) resolveItems(ctx context.Context, ids []uint) ([]uint, error) {
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(unique, id) {
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return unique, nil
	}

	count, err := s.repo.CountWishes(ctx, unique)
	if err != nil {
		return nil, err
	}
	if count != int64(len(unique)) {
		return nil, apperrors.NotFound("wish")
	}
	return unique, nil
}

func authorize(wl *Wishlist, actingUserID uint) error {
	if wl.OwnerID != actingUserID {
		return apperrors.New(apperrors.ErrOwnershipViolation, "only the owner can change this wishlist")
	}
	return nil
}

func validateName(name string) error {
	if n := utf8.RuneCountInString(name); n < 1 || n > 250 {
		return apperrors.New(apperrors.ErrValidation, "name must be between 1 and 250 characters")
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > 1500 {
		return apperrors.New(apperrors.ErrValidation, "description must be at most 1500 characters")
	}
	return nil
}
