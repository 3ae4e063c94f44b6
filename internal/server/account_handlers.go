package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cropwise-dev/cropwise/internal/auth"
	"github.com/cropwise-dev/cropwise/internal/models"
)

// UpdateProfileRequest changes the account's display name and email
type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// ChangePasswordRequest replaces the password of the signed-in account
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *Server) updateProfile(c *gin.Context) {
	session, _ := GetSessionData(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingFieldsMessage})
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = normalizeEmail(req.Email)
	if req.FullName == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingFieldsMessage})
		return
	}
	if msg := s.checkEmail(req.Email); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var taken int64
	if err := s.db.Model(&models.User{}).
		Where("email = ? AND id <> ?", req.Email, session.UserID).
		Count(&taken).Error; err != nil {
		s.internalError(c, err, "Failed to check email")
		return
	}
	if taken > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
		return
	}

	err := s.db.Model(&models.User{}).Where("id = ?", session.UserID).
		Updates(map[string]any{"full_name": req.FullName, "email": req.Email}).Error
	if err != nil {
		s.internalError(c, err, "Failed to update profile")
		return
	}

	s.logger.Info().Str("user_id", session.UserID).Msg("Profile updated")
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

func (s *Server) changePassword(c *gin.Context) {
	session, _ := GetSessionData(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OldPassword == "" || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingFieldsMessage})
		return
	}

	var user models.User
	if err := models.FindByID(s.db, session.UserID, &user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := auth.VerifyPassword(req.OldPassword, user.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Old password incorrect"})
		return
	}
	if msg := s.checkPassword(req.NewPassword); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.internalError(c, err, "Failed to hash password")
		return
	}

	if err := s.db.Model(&user).Update("password_hash", passwordHash).Error; err != nil {
		s.internalError(c, err, "Failed to update password")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Password changed")
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
