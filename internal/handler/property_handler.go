package handler

import (
	"net/http"

	"kosku/internal/domain"
	"kosku/internal/middleware"
	"kosku/internal/models"
	"kosku/internal/repository"

	"github.com/gin-gonic/gin"
)

type PropertyHandler struct {
	properties *repository.PropertyRepository
}

func NewPropertyHandler(properties *repository.PropertyRepository) *PropertyHandler {
	return &PropertyHandler{properties: properties}
}

type PropertyRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=128"`
	Description string `json:"description"`
	Address     string `json:"address" binding:"max=255"`
	City        string `json:"city" binding:"required,max=64"`
	Province    string `json:"province" binding:"max=64"`
}

func (h *PropertyHandler) Create(c *gin.Context) {
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := &models.Property{
		OwnerID:     middleware.GetUserID(c),
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Province:    req.Province,
	}
	if err := h.properties.Create(p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"property": p})
}

// List returns the caller's properties; SUPERADMIN sees all.
func (h *PropertyHandler) List(c *gin.Context) {
	var (
		props []models.Property
		err   error
	)
	if middleware.GetRole(c) == domain.RoleSuperadmin {
		props, err = h.properties.ListAll()
	} else {
		props, err = h.properties.ListByOwner(middleware.GetUserID(c))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": props})
}

func (h *PropertyHandler) Get(c *gin.Context) {
	p, err := h.load(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": p})
}

func (h *PropertyHandler) Update(c *gin.Context) {
	p, err := h.load(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.Name = req.Name
	p.Description = req.Description
	p.Address = req.Address
	p.City = req.City
	p.Province = req.Province
	if err := h.properties.Update(p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": p})
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	p, err := h.load(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.properties.Delete(p.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// load fetches the property and checks the caller owns it (SUPERADMIN owns
// everything).
func (h *PropertyHandler) load(c *gin.Context) (*models.Property, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	p, err := h.properties.GetByID(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	if middleware.GetRole(c) != domain.RoleSuperadmin && p.OwnerID != middleware.GetUserID(c) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}
