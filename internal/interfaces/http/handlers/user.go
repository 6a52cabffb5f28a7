// internal/interfaces/http/handlers/user.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/kupipodariday-backend/internal/domain/offer"
	"github.com/your-org/kupipodariday-backend/internal/domain/user"
	"github.com/your-org/kupipodariday-backend/internal/domain/wish"
	"github.com/your-org/kupipodariday-backend/internal/domain/wishlist"
)

// UserHandler handles profile and user directory endpoints
type UserHandler struct {
	userService     *user.Service
	wishService     *wish.Service
	offerService    *offer.Service
	wishlistService *wishlist.Service
	log             *logrus.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	userService *user.Service,
	wishService *wish.Service,
	offerService *offer.Service,
	wishlistService *wishlist.Service,
	log *logrus.Logger,
) *UserHandler {
	return &UserHandler{
		userService:     userService,
		wishService:     wishService,
		offerService:    offerService,
		wishlistService: wishlistService,
		log:             log,
	}
}

// GetMe returns the authenticated user's own profile
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    u,
	})
}

// UpdateMe applies a partial profile update
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	u, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"data":    u,
	})
}

// GetMyWishes returns the authenticated user's wish collection
func (h *UserHandler) GetMyWishes(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	h.respondCollection(c, userID)
}

// GetByUsername returns another member's public profile
func (h *UserHandler) GetByUsername(c *gin.Context) {
	u, err := h.userService.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User retrieved successfully",
		"data":    u.Public(),
	})
}

// GetUserWishes returns another member's wish collection
func (h *UserHandler) GetUserWishes(c *gin.Context) {
	u, err := h.userService.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.respondCollection(c, u.ID)
}

// GetMyOffers returns the contributions made by the authenticated user
func (h *UserHandler) GetMyOffers(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	offers, err := h.offerService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if offers == nil {
		offers = []offer.Offer{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Offers retrieved successfully",
		"data":    offers,
	})
}

// GetUserWishlists returns the wishlists another member put together
func (h *UserHandler) GetUserWishlists(c *gin.Context) {
	u, err := h.userService.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	lists, err := h.wishlistService.ListByOwner(c.Request.Context(), u.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if lists == nil {
		lists = []wishlist.Wishlist{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlists retrieved successfully",
		"data":    lists,
	})
}

// Find searches users by username or email
func (h *UserHandler) Find(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	users, err := h.userService.Find(c.Request.Context(), req.Query)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	profiles := make([]user.PublicProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Public())
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Users retrieved successfully",
		"data":    profiles,
	})
}

func (h *UserHandler) respondCollection(c *gin.Context, userID uint) {
	collection, err := h.wishService.Collection(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishes retrieved successfully",
		"data":    collection.Wishes,
	})
}
