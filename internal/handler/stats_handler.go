package handler

import (
	"net/http"
	"time"

	"kosku/internal/domain"
	"kosku/internal/middleware"
	"kosku/internal/repository"

	"github.com/gin-gonic/gin"
)

// StatsHandler serves the owner dashboard: occupancy, booking pipeline and
// revenue per property.
type StatsHandler struct {
	properties *repository.PropertyRepository
	rooms      *repository.RoomRepository
	bookings   *repository.BookingRepository
	payments   *repository.PaymentRepository
	ledger     *repository.LedgerRepository
}

func NewStatsHandler(
	properties *repository.PropertyRepository,
	rooms *repository.RoomRepository,
	bookings *repository.BookingRepository,
	payments *repository.PaymentRepository,
	ledger *repository.LedgerRepository,
) *StatsHandler {
	return &StatsHandler{
		properties: properties,
		rooms:      rooms,
		bookings:   bookings,
		payments:   payments,
		ledger:     ledger,
	}
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	propertyID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.authorizeOwner(c, propertyID); err != nil {
		respondError(c, err)
		return
	}

	totalRooms, err := h.rooms.CountByProperty(propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	occupied, err := h.bookings.CountOccupied(propertyID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	counts, err := h.bookings.StatusCounts(propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	revenue, err := h.payments.RevenueByProperty(propertyID)
	if err != nil {
		respondError(c, err)
		return
	}

	occupancyRate := 0.0
	if totalRooms > 0 {
		occupancyRate = float64(occupied) / float64(totalRooms)
	}
	c.JSON(http.StatusOK, gin.H{
		"property_id":    propertyID,
		"total_rooms":    totalRooms,
		"occupied_rooms": occupied,
		"occupancy_rate": occupancyRate,
		"bookings":       counts,
		"revenue":        revenue,
	})
}

// Ledger lists the property's money movements, newest first.
func (h *StatsHandler) Ledger(c *gin.Context) {
	propertyID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.authorizeOwner(c, propertyID); err != nil {
		respondError(c, err)
		return
	}
	entries, err := h.ledger.ListByProperty(propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *StatsHandler) authorizeOwner(c *gin.Context, propertyID uint) error {
	if middleware.GetRole(c) == domain.RoleSuperadmin {
		return nil
	}
	p, err := h.properties.GetByID(propertyID)
	if err != nil {
		return domain.ErrNotFound
	}
	if p.OwnerID != middleware.GetUserID(c) {
		return domain.ErrForbidden
	}
	return nil
}
