package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func GenerateToken(userID uint, isAdmin bool) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "defaultsecret"
	}

	claims := jwt.MapClaims{
		"user_id":  userID,
		"is_admin": isAdmin,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// isSeedAdmin checks ADMIN_EMAILS (comma separated) so a fresh install can
// bootstrap its first administrators without touching the database by hand.
func isSeedAdmin(email string) bool {
	for _, e := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		if e != "" && strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

// ========================
// REGISTER HANDLER
// ========================

func Register(c *gin.Context) {
	var req RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashed),
		IsAdmin:  isSeedAdmin(req.Email),
		IsActive: true,
	}

	if err := DB.Create(&user).Error; err != nil {
		jsonError(c, http.StatusBadRequest, "user already exists")
		return
	}

	token, err := GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}

	// Remove password hash from response
	user.Password = ""

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user":    user,
	})
}

// ========================
// LOGIN HANDLER
// ========================

func Login(c *gin.Context) {
	var req LoginRequest
	var user User

	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	if err := DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		jsonError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if !user.IsActive {
		jsonError(c, http.StatusForbidden, "account is deactivated")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		jsonError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	now := time.Now()
	user.LastLoginAt = &now
	DB.Model(&user).Update("last_login_at", now)

	token, err := GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}

	user.Password = ""

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
