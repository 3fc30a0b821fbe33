package handler

import (
	"net/http"

	"kosku/internal/domain"
	"kosku/internal/middleware"
	"kosku/internal/repository"
	"kosku/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc        *service.AuthService
	users      *repository.UserRepository
	properties *repository.PropertyRepository
}

func NewAuthHandler(svc *service.AuthService, users *repository.UserRepository, properties *repository.PropertyRepository) *AuthHandler {
	return &AuthHandler{svc: svc, users: users, properties: properties}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=128"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type RegisterStaffRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=128"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role" binding:"required,oneof=ADMINKOS RECEPTIONIST"`
	PropertyID *uint  `json:"property_id"` // required for RECEPTIONIST
}

// Register is the public signup; every account created here is a CUSTOMER.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.Register(req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		if err == service.ErrEmailExists {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":          u,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		if err == service.ErrInvalidCreds {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	access, err := h.svc.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.users.GetByID(middleware.GetUserID(c))
	if err != nil {
		respondError(c, domain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// RegisterStaff creates an ADMINKOS or RECEPTIONIST account. ADMINKOS
// accounts come from SUPERADMIN; an ADMINKOS may only create receptionists
// for properties they own.
func (h *AuthHandler) RegisterStaff(c *gin.Context) {
	var req RegisterStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if middleware.GetRole(c) != domain.RoleSuperadmin {
		if req.Role != domain.RoleReceptionist || req.PropertyID == nil {
			respondError(c, domain.ErrForbidden)
			return
		}
		prop, err := h.properties.GetByID(*req.PropertyID)
		if err != nil || prop.OwnerID != middleware.GetUserID(c) {
			respondError(c, domain.ErrForbidden)
			return
		}
	}
	u, err := h.svc.RegisterStaff(req.Name, req.Email, req.Password, req.Role, req.PropertyID)
	if err != nil {
		if err == service.ErrEmailExists {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u})
}
