// internal/interfaces/http/handlers/offer.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/kupipodariday-backend/internal/domain/offer"
)

// OfferHandler handles contribution endpoints
type OfferHandler struct {
	offerService *offer.Service
	log          *logrus.Logger
}

// NewOfferHandler creates a new offer handler
func NewOfferHandler(offerService *offer.Service, log *logrus.Logger) *OfferHandler {
	return &OfferHandler{
		offerService: offerService,
		log:          log,
	}
}

// CreateOffer handles POST /offers
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	var req offer.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	o, err := h.offerService.Record(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Offer recorded successfully",
		"data":    o,
	})
}

// GetOffers handles GET /offers
func (h *OfferHandler) GetOffers(c *gin.Context) {
	offers, err := h.offerService.List(c.Request.Context())
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

// GetOffer handles GET /offers/:id
func (h *OfferHandler) GetOffer(c *gin.Context) {
	offerID, ok := parseID(c, "id")
	if !ok {
		return
	}

	o, err := h.offerService.Get(c.Request.Context(), offerID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Offer retrieved successfully",
		"data":    o,
	})
}

// GetWishOffers handles GET /wishes/:id/offers
func (h *OfferHandler) GetWishOffers(c *gin.Context) {
	wishID, ok := parseID(c, "id")
	if !ok {
		return
	}

	offers, err := h.offerService.ListForWish(c.Request.Context(), wishID)
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
