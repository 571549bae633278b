package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/MpenduloXulu/TTI-Website/db"
	"github.com/MpenduloXulu/TTI-Website/internal/auth"
	"github.com/MpenduloXulu/TTI-Website/internal/models"
	"github.com/MpenduloXulu/TTI-Website/internal/services"
	"github.com/MpenduloXulu/TTI-Website/internal/types"
	"github.com/MpenduloXulu/TTI-Website/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Role         string `json:"role"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type UpdateProfileRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Phone           string `json:"phone"`
	Organization    string `json:"organization"`
	Bio             string `json:"bio"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"omitempty,min=8"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type UserResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Role         string `json:"role"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
	Bio          string `json:"bio"`
}

var authMessageCleaner = strings.NewReplacer("Firebase: ", "", "auth/", "", "(", "", ")", "")

// cleanAuthMessage strips provider prefixes and parenthetical error codes
// before a message reaches the client.
func cleanAuthMessage(message string) string {
	return authMessageCleaner.Replace(message)
}

func userResponse(user models.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Role:         user.Role,
		Phone:        user.Phone,
		Organization: user.Organization,
		Bio:          user.Bio,
	}
}

func Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = types.RoleApplicant
	}

	if role != types.RoleApplicant && role != types.RoleAdmin {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	var existingUser models.User

	err := db.DB.Where("email = ?", req.Email).First(&existingUser).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	newUser := models.User{
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		Phone:        req.Phone,
		Organization: req.Organization,
	}

	if err := db.DB.Create(&newUser).Error; err != nil {
		log.Printf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	token, err := auth.GenerateJWT(newUser.ID, newUser.Email, newUser.Role)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userResponse(newUser),
	})
}

func Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var existingUser models.User

	err := db.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&existingUser).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": cleanAuthMessage("Invalid email or password")})
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(existingUser.PasswordHash), []byte(req.Password))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": cleanAuthMessage("Invalid email or password")})
		return
	}

	token, err := auth.GenerateJWT(existingUser.ID, existingUser.Email, existingUser.Role)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userResponse(existingUser),
	})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		log.Printf("Failed to fetch user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

func UpdateProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var dbUser models.User
	if err := db.DB.First(&dbUser, currentUser.ID).Error; err != nil {
		log.Printf("Failed to fetch user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req UpdateProfileRequest
	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := make(map[string]interface{})

	if req.FirstName != "" {
		updates["first_name"] = strings.TrimSpace(req.FirstName)
	}

	if req.LastName != "" {
		updates["last_name"] = strings.TrimSpace(req.LastName)
	}

	if req.Phone != "" {
		updates["phone"] = strings.TrimSpace(req.Phone)
	}

	if req.Organization != "" {
		updates["organization"] = strings.TrimSpace(req.Organization)
	}

	if req.Bio != "" {
		updates["bio"] = req.Bio
	}

	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Current password is required to change password"})
			return
		}

		err = bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(req.CurrentPassword))
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
			return
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Failed to hash new password: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		updates["password_hash"] = string(passwordHash)
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&dbUser).Updates(updates).Error; err != nil {
		log.Printf("Failed to update user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.First(&dbUser, dbUser.ID).Error; err != nil {
		log.Printf("Failed to refresh user data: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    userResponse(dbUser),
	})
}

func DeleteAccount(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var dbUser models.User
	if err := db.DB.First(&dbUser, currentUser.ID).Error; err != nil {
		log.Printf("Failed to fetch user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var deleteReq struct {
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.BindJSON(&deleteReq); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Password is required for account deletion"})
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(deleteReq.Password))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect password"})
		return
	}

	// The row must actually leave the table: the database-level cascades that
	// remove the user's drafts, applications and notifications only fire on a
	// real delete, and the unique email index has to free up so the address
	// can register again.
	if err := db.DB.Unscoped().Delete(&dbUser).Error; err != nil {
		log.Printf("Failed to delete user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

func ForgotPassword(ctx *gin.Context) {
	var req ForgotPasswordRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User

	err := db.DB.Where("email = ?", email).First(&user).Error

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Database error when fetching user for reset: %v", err)
		}
		// The response never reveals whether the address exists.
		ctx.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset link has been sent"})
		return
	}

	resetToken := uuid.NewString()
	expiry := time.Now().Add(time.Hour)

	updates := map[string]interface{}{
		"reset_token":        resetToken,
		"reset_token_expiry": expiry,
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to store reset token: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := services.SendPasswordResetEmail(ctx.Request.Context(), user.Email, resetToken); err != nil {
		log.Printf("Failed to send password reset email: %v", err)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset link has been sent"})
}

func ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User

	err := db.DB.Where("reset_token = ?", req.Token).First(&user).Error

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}

	if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(time.Now()) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	updates := map[string]interface{}{
		"password_hash":      string(passwordHash),
		"reset_token":        "",
		"reset_token_expiry": nil,
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to reset password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
