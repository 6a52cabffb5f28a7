// internal/interfaces/http/handlers/wish.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/kupipodariday-backend/internal/domain/wish"
)

// WishHandler handles wish catalog endpoints
type WishHandler struct {
	wishService *wish.Service
	log         *logrus.Logger
}

// NewWishHandler creates a new wish handler
func NewWishHandler(wishService *wish.Service, log *logrus.Logger) *WishHandler {
	return &WishHandler{
		wishService: wishService,
		log:         log,
	}
}

// CreateWish handles POST /wishes
func (h *WishHandler) CreateWish(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	var req wish.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	w, err := h.wishService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Wish created successfully",
		"data":    w,
	})
}

// GetTop handles GET /wishes/top
func (h *WishHandler) GetTop(c *gin.Context) {
	h.respondRanking(c, h.wishService.RankTop(queryLimit(c)))
}

// GetLast handles GET /wishes/last
func (h *WishHandler) GetLast(c *gin.Context) {
	h.respondRanking(c, h.wishService.RankRecent(queryLimit(c)))
}

func (h *WishHandler) respondRanking(c *gin.Context, ranking *wish.Ranking) {
	wishes := make([]wish.Wish, 0)
	for w, err := range ranking.All(c.Request.Context()) {
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		wishes = append(wishes, w)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishes retrieved successfully",
		"data":    wishes,
	})
}

// GetWish handles GET /wishes/:id
func (h *WishHandler) GetWish(c *gin.Context) {
	wishID, ok := parseID(c, "id")
	if !ok {
		return
	}

	w, err := h.wishService.Get(c.Request.Context(), wishID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wish retrieved successfully",
		"data":    w,
	})
}

// UpdateWish handles PATCH /wishes/:id
func (h *WishHandler) UpdateWish(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	wishID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req wish.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	w, err := h.wishService.ApplyUpdate(c.Request.Context(), wishID, &req, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wish updated successfully",
		"data":    w,
	})
}

// DeleteWish handles DELETE /wishes/:id
func (h *WishHandler) DeleteWish(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	wishID, ok := parseID(c, "id")
	if !ok {
		return
	}

	w, err := h.wishService.RemoveWish(c.Request.Context(), wishID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wish deleted successfully",
		"data":    w,
	})
}

// CopyWish handles POST /wishes/:id/copy
func (h *WishHandler) CopyWish(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	wishID, ok := parseID(c, "id")
	if !ok {
		return
	}

	collection, err := h.wishService.CopyWish(c.Request.Context(), wishID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Wish copied successfully",
		"data":    collection,
	})
}

// queryLimit reads ?limit; zero lets the service pick its default
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
