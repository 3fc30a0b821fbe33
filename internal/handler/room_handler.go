package handler

import (
	"net/http"

	"kosku/internal/domain"
	"kosku/internal/middleware"
	"kosku/internal/models"
	"kosku/internal/repository"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	rooms      *repository.RoomRepository
	properties *repository.PropertyRepository
}

func NewRoomHandler(rooms *repository.RoomRepository, properties *repository.PropertyRepository) *RoomHandler {
	return &RoomHandler{rooms: rooms, properties: properties}
}

type RoomRequest struct {
	Number string `json:"number" binding:"required,max=32"`
	SizeM2 int    `json:"size_m2" binding:"omitempty,gt=0"`

	MonthlyPrice   float64  `json:"monthly_price" binding:"required,gt=0"`
	DailyPrice     *float64 `json:"daily_price" binding:"omitempty,gt=0"`
	WeeklyPrice    *float64 `json:"weekly_price" binding:"omitempty,gt=0"`
	QuarterlyPrice *float64 `json:"quarterly_price" binding:"omitempty,gt=0"`
	YearlyPrice    *float64 `json:"yearly_price" binding:"omitempty,gt=0"`

	DepositType  string  `json:"deposit_type" binding:"omitempty,oneof=NONE FIXED PERCENTAGE"`
	DepositValue float64 `json:"deposit_value" binding:"omitempty,gte=0"`

	Available *bool `json:"available"`
}

// Create adds a room under a property the caller owns.
func (h *RoomHandler) Create(c *gin.Context) {
	propertyID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.authorizeOwner(c, propertyID); err != nil {
		respondError(c, err)
		return
	}
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	room := &models.Room{
		PropertyID:     propertyID,
		Number:         req.Number,
		SizeM2:         req.SizeM2,
		MonthlyPrice:   req.MonthlyPrice,
		DailyPrice:     req.DailyPrice,
		WeeklyPrice:    req.WeeklyPrice,
		QuarterlyPrice: req.QuarterlyPrice,
		YearlyPrice:    req.YearlyPrice,
		DepositType:    req.DepositType,
		DepositValue:   req.DepositValue,
		Available:      true,
	}
	if room.DepositType == "" {
		room.DepositType = domain.DepositNone
	}
	if req.Available != nil {
		room.Available = *req.Available
	}
	if err := h.rooms.Create(room); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

// ListByProperty lists a property's rooms.
func (h *RoomHandler) ListByProperty(c *gin.Context) {
	propertyID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	rooms, err := h.rooms.ListByProperty(propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// Search is the public room listing, optionally filtered by city.
func (h *RoomHandler) Search(c *gin.Context) {
	rooms, err := h.rooms.ListAvailable(c.Query("city"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *RoomHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	room, err := h.rooms.GetByID(id)
	if err != nil {
		respondError(c, domain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

func (h *RoomHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	room, err := h.rooms.GetByID(id)
	if err != nil {
		respondError(c, domain.ErrNotFound)
		return
	}
	if err := h.authorizeOwner(c, room.PropertyID); err != nil {
		respondError(c, err)
		return
	}
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	room.Number = req.Number
	room.SizeM2 = req.SizeM2
	room.MonthlyPrice = req.MonthlyPrice
	room.DailyPrice = req.DailyPrice
	room.WeeklyPrice = req.WeeklyPrice
	room.QuarterlyPrice = req.QuarterlyPrice
	room.YearlyPrice = req.YearlyPrice
	if req.DepositType != "" {
		room.DepositType = req.DepositType
	}
	room.DepositValue = req.DepositValue
	if req.Available != nil {
		room.Available = *req.Available
	}
	if err := h.rooms.Update(room); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

func (h *RoomHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	room, err := h.rooms.GetByID(id)
	if err != nil {
		respondError(c, domain.ErrNotFound)
		return
	}
	if err := h.authorizeOwner(c, room.PropertyID); err != nil {
		respondError(c, err)
		return
	}
	if err := h.rooms.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *RoomHandler) authorizeOwner(c *gin.Context, propertyID uint) error {
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
