package handler

import (
	"net/http"
	"strconv"
	"time"

	"kosku/internal/domain"
	"kosku/internal/middleware"
	"kosku/internal/models"
	"kosku/internal/repository"
	"kosku/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

type BookingHandler struct {
	svc   *service.BookingService
	users *repository.UserRepository
}

func NewBookingHandler(svc *service.BookingService, users *repository.UserRepository) *BookingHandler {
	return &BookingHandler{svc: svc, users: users}
}

// RegisterValidators installs the custom binding validators. Call once at
// router setup.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("leasetype", func(fl validator.FieldLevel) bool {
			return domain.IsValidLeaseType(fl.Field().String())
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(dateLayout, fl.Field().String())
			return err == nil
		})
	}
}

type CreateBookingRequest struct {
	RoomID        uint   `json:"room_id" binding:"required"`
	CheckInDate   string `json:"check_in_date" binding:"required,isodate"`
	LeaseType     string `json:"lease_type" binding:"required,leasetype"`
	DepositOption string `json:"deposit_option" binding:"required,oneof=deposit full"`
}

// Create books a room and opens the first payment. The response carries the
// hosted-checkout token the client redirects to.
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkIn, _ := time.Parse(dateLayout, req.CheckInDate)
	res, err := h.svc.Create(c.Request.Context(), service.CreateBookingInput{
		RenterID:      middleware.GetUserID(c),
		RoomID:        req.RoomID,
		CheckInDate:   checkIn,
		LeaseType:     req.LeaseType,
		DepositOption: req.DepositOption,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type PayRequest struct {
	DepositOption string `json:"deposit_option" binding:"omitempty,oneof=deposit full"`
}

// Pay opens the next payment for the booking: a retry while UNPAID, the
// remainder after a settled deposit.
func (h *BookingHandler) Pay(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.Pay(c.Request.Context(), id, middleware.GetUserID(c), req.DepositOption)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	actor, err := h.actor(c)
	if err != nil {
		respondError(c, err)
		return
	}
	booking, err := h.svc.GetForActor(id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// ListMine lists the authenticated renter's bookings.
func (h *BookingHandler) ListMine(c *gin.Context) {
	bookings, err := h.svc.ListForRenter(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListForProperty lists a property's bookings for staff.
func (h *BookingHandler) ListForProperty(c *gin.Context) {
	propertyID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	actor, err := h.actor(c)
	if err != nil {
		respondError(c, err)
		return
	}
	bookings, err := h.svc.ListForProperty(propertyID, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

type CheckInRequest struct {
	OpenEnded   bool   `json:"open_ended"`
	NewCheckOut string `json:"new_check_out" binding:"omitempty,isodate"`
}

func (h *BookingHandler) CheckIn(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor, err := h.actor(c)
	if err != nil {
		respondError(c, err)
		return
	}
	in := service.CheckInInput{BookingID: id, Actor: actor, OpenEnded: req.OpenEnded}
	if req.NewCheckOut != "" {
		t, _ := time.Parse(dateLayout, req.NewCheckOut)
		in.NewCheckOut = &t
	}
	booking, err := h.svc.CheckIn(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

func (h *BookingHandler) CheckOut(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	actor, err := h.actor(c)
	if err != nil {
		respondError(c, err)
		return
	}
	booking, err := h.svc.CheckOut(id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	actor, err := h.actor(c)
	if err != nil {
		respondError(c, err)
		return
	}
	booking, err := h.svc.Cancel(id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Availability answers whether a room is free for [check_in, check_out) and
// lists the blocking bookings when it is not.
func (h *BookingHandler) Availability(c *gin.Context) {
	roomID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	checkIn, err1 := time.Parse(dateLayout, c.Query("check_in"))
	checkOut, err2 := time.Parse(dateLayout, c.Query("check_out"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in and check_out are required as YYYY-MM-DD"})
		return
	}
	available, conflicts, err := h.svc.Availability(roomID, checkIn, checkOut, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"room_id":   roomID,
		"available": available,
		"conflicts": len(conflicts),
	})
}

func (h *BookingHandler) actor(c *gin.Context) (*models.User, error) {
	u, err := h.users.GetByID(middleware.GetUserID(c))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ErrValidation
	}
	return uint(id), nil
}
