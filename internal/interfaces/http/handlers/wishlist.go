// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/kupipodariday-backend/internal/domain/wishlist"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlistService *wishlist.Service
	log             *logrus.Logger
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistService *wishlist.Service, log *logrus.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		log:             log,
	}
}

// GetWishlists handles GET /wishlistlists
func (h *WishlistHandler) GetWishlists(c *gin.Context) {
	lists, err := h.wishlistService.List(c.Request.Context())
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

// CreateWishlist handles POST /wishlistlists
func (h *WishlistHandler) CreateWishlist(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	var req wishlist.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	wl, err := h.wishlistService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Wishlist created successfully",
		"data":    wl,
	})
}

// GetWishlist handles GET /wishlistlists/:id
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	wishlistID, ok := parseID(c, "id")
	if !ok {
		return
	}

	wl, err := h.wishlistService.Get(c.Request.Context(), wishlistID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist retrieved successfully",
		"data":    wl,
	})
}

// UpdateWishlist handles PATCH /wishlistlists/:id
func (h *WishlistHandler) UpdateWishlist(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	wishlistID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req wishlist.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	wl, err := h.wishlistService.Update(c.Request.Context(), wishlistID, &req, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist updated successfully",
		"data":    wl,
	})
}

// DeleteWishlist handles DELETE /wishlistlists/:id
func (h *WishlistHandler) DeleteWishlist(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	wishlistID, ok := parseID(c, "id")
	if !ok {
		return
	}

	wl, err := h.wishlistService.Remove(c.Request.Context(), wishlistID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist deleted successfully",
		"data":    wl,
	})
}

// ExportWishlist handles GET /wishlistlists/:id/pdf
func (h *WishlistHandler) ExportWishlist(c *gin.Context) {
	wishlistID, ok := parseID(c, "id")
	if !ok {
		return
	}

	pdfBuffer, wl, err := h.wishlistService.ExportPDF(c.Request.Context(), wishlistID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=wishlist-%d.pdf", wl.ID))
	c.Header("Content-Length", strconv.Itoa(pdfBuffer.Len()))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}
