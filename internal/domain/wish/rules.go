// internal/domain/wish/rules.go
package wish

import (
	"unicode/utf8"

	"github.com/your-org/kupipodariday-backend/internal/pkg/apperrors"
)

// CreateRequest represents wish creation data
type CreateRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=250"`
	Link        string `json:"link" binding:"required,url"`
	Image       string `json:"image" binding:"required,url"`
	Price       int64  `json:"price" binding:"gte=0"`
	Description string `json:"description" binding:"required,min=1,max=1024"`
}

// UpdateRequest carries a partial wish update; nil fields are left untouched
type UpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=250"`
	Link        *string `json:"link" binding:"omitempty,url"`
	Image       *string `json:"image" binding:"omitempty,url"`
	Price       *int64  `json:"price" binding:"omitempty,gte=0"`
	Description *string `json:"description" binding:"omitempty,min=1,max=1024"`
}

// AuthorizeMutation allows a change only when the acting user owns the wish
func AuthorizeMutation(w *Wish, actingUserID uint) error {
	if w.OwnerID != actingUserID {
		return apperrors.New(apperrors.ErrOwnershipViolation, "only the owner can change this wish")
	}
	return nil
}

// AuthorizePriceChange locks the price once funding has started. Sending the
// current price again is not a change.
func AuthorizePriceChange(w *Wish, req *UpdateRequest) error {
	if req.Price == nil || *req.Price == w.Price {
		return nil
	}
	if w.FundingStarted() {
		return apperrors.New(apperrors.ErrFundingInProgress, "the price cannot be changed once funding has started")
	}
	return nil
}

// MergeUpdate copies the present fields onto the wish and returns the
// changed columns for a partial write.
func MergeUpdate(w *Wish, req *UpdateRequest) map[string]interface{} {
	updates := make(map[string]interface{})

	if req.Name != nil && *req.Name != w.Name {
		w.Name = *req.Name
		updates["name"] = w.Name
	}
	if req.Link != nil && *req.Link != w.Link {
		w.Link = *req.Link
		updates["link"] = w.Link
	}
	if req.Image != nil && *req.Image != w.Image {
		w.Image = *req.Image
		updates["image"] = w.Image
	}
	if req.Price != nil && *req.Price != w.Price {
		w.Price = *req.Price
		updates["price"] = w.Price
	}
	if req.Description != nil && *req.Description != w.Description {
		w.Description = *req.Description
		updates["description"] = w.Description
	}

	return updates
}

func (r *CreateRequest) validate() error {
	if err := checkLength("name", r.Name, 1, 250); err != nil {
		return err
	}
	if err := checkLength("description", r.Description, 1, 1024); err != nil {
		return err
	}
	if r.Price < 0 {
		return apperrors.New(apperrors.ErrValidation, "price must not be negative")
	}
	return nil
}

func (r *UpdateRequest) validate() error {
	if r.Name != nil {
		if err := checkLength("name", *r.Name, 1, 250); err != nil {
			return err
		}
	}
	if r.Description != nil {
		if err := checkLength("description", *r.Description, 1, 1024); err != nil {
			return err
		}
	}
	if r.Price != nil && *r.Price < 0 {
		return apperrors.New(apperrors.ErrValidation, "price must not be negative")
	}
	return nil
}

// checkLength counts characters, not bytes
func checkLength(field, value string, lo, hi int) error {
	n := utf8.RuneCountInString(value)
	if n < lo || n > hi {
		return apperrors.Newf(apperrors.ErrValidation, "%s must be between %d and %d characters", field, lo, hi)
	}
	return nil
}
