package handlers

import (
	"time"

	"github.com/deployhub-io/deployhub/backend/internal/config"
	"github.com/deployhub-io/deployhub/backend/internal/models"
	"github.com/deployhub-io/deployhub/backend/internal/utils"
	"github.com/deployhub-io/deployhub/backend/pkg/logger"
	"github.com/deployhub-io/deployhub/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db  *gorm.DB
	cfg *config.JWTConfig
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: &cfg.JWT}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login authenticates a user and returns a JWT.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var user models.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		response.Unauthorized(c, "invalid username or password")
		return
	}

	if !user.IsActive {
		response.Unauthorized(c, "account is disabled")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Email, user.Role, h.cfg.ExpireHour)
	if err != nil {
		response.ServerError(c, "failed to generate token")
		return
	}

	now := time.Now()
	h.db.Model(&user).Update("last_login", &now)

	response.Success(c, LoginResponse{Token: token, User: &user})
}

// GetCurrentUser returns the logged-in user.
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, _ := c.Get("user_id")
	var user models.User
	if err := h.db.First(&user, userID.(uint)).Error; err != nil {
		response.NotFound(c, "user not found")
		return
	}

	response.Success(c, &user)
}

// Logout handles user logout (client-side token removal)
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Success(c, gin.H{"message": "logged out successfully"})
}

// CreateAdminIfNotExists seeds the default platform admin on first boot.
func (h *AuthHandler) CreateAdminIfNotExists() error {
	var count int64
	if err := h.db.Model(&models.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword("admin123")
	if err != nil {
		return err
	}

	admin := models.User{
		Username: "admin",
		Password: hashed,
		Email:    "admin@deployhub.local",
		Nickname: "Administrator",
		Role:     "admin",
		IsActive: true,
	}
	if err := h.db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Warn().Msg("Created default admin user (admin/admin123), please change the password immediately")
	return nil
}
