// controllers/auth_controller.go
package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"resort-backend/models"
	"resort-backend/utils"
)

const staffTokenTTL = 12 * time.Hour

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

func generateTokenHex(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Login verifies staff credentials and issues a bearer token that the
// staff middleware checks on every protected route.
func (ctrl *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "invalid payload")
		return
	}

	username := strings.TrimSpace(payload.Username)
	if username == "" || payload.Password == "" {
		utils.JSONError(c, http.StatusBadRequest, "error.validation", "username and password required")
		return
	}

	var staff models.Staff
	if err := ctrl.DB.Where("username = ?", username).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusUnauthorized, "error.invalidCredentials", "invalid credentials")
			return
		}
		log.Printf("Login DB error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "database error")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(payload.Password)) != nil {
		utils.JSONError(c, http.StatusUnauthorized, "error.invalidCredentials", "invalid credentials")
		return
	}

	token, err := generateTokenHex(32)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "failed to generate token")
		return
	}

	expiry := time.Now().Add(staffTokenTTL)
	if err := ctrl.DB.Model(&staff).Updates(map[string]any{
		"api_token":         token,
		"api_token_expires": expiry,
	}).Error; err != nil {
		log.Printf("Login token persist error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "database error")
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiry,
		"staff": gin.H{
			"id":        staff.ID,
			"full_name": staff.FullName,
			"username":  staff.Username,
		},
	})
}

// Logout invalidates the caller's token. The staff middleware has already
// resolved the account by the time this runs.
func (ctrl *AuthController) Logout(c *gin.Context) {
	staffID, exists := c.Get("staffID")
	if !exists {
		utils.JSONError(c, http.StatusUnauthorized, "error.unauthorized", "not authenticated")
		return
	}
	if err := ctrl.DB.Model(&models.Staff{}).Where("id = ?", staffID).Updates(map[string]any{
		"api_token":         nil,
		"api_token_expires": nil,
	}).Error; err != nil {
		log.Printf("Logout error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "database error")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"loggedOut": true})
}
