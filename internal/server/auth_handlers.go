package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cropwise-dev/cropwise/internal/auth"
	"github.com/cropwise-dev/cropwise/internal/models"
)

const (
	// resetTokenTTL is how long a password reset token stays usable
	resetTokenTTL = 30 * time.Minute

	missingFieldsMessage  = "Missing required fields"
	invalidEmailMessage   = "Invalid email address"
	weakPasswordMessage   = "Password must be at least 8 chars, one uppercase, one number"
	forgotPasswordMessage = "If the email exists, a reset link has been sent"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Message      string      `json:"message"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         *UserDetail `json:"user"`
}

// UserDetail represents user information returned in responses
type UserDetail struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest represents a sign-up request
type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LogoutRequest optionally names the refresh token to revoke
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func toUserDetail(user *models.User) *UserDetail {
	return &UserDetail{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// checkEmail returns an error message when email is not a valid address
func (s *Server) checkEmail(email string) string {
	if err := s.validator.Var(email, "required,email"); err != nil {
		return invalidEmailMessage
	}
	return ""
}

// checkPassword returns an error message when password is too weak
func (s *Server) checkPassword(password string) string {
	if err := s.validator.Var(password, "strongpassword"); err != nil {
		return weakPasswordMessage
	}
	return ""
}

func (s *Server) internalError(c *gin.Context, err error, msg string) {
	s.logger.Error().Err(err).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}
		s.internalError(c, err, "Failed to find user")
		return
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	accessToken, refreshToken, err := auth.GenerateTokenPair(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		s.internalError(c, err, "Failed to generate tokens")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User logged in")

	c.JSON(http.StatusOK, LoginResponse{
		Message:      "Login successful",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toUserDetail(&user),
	})
}

func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingFieldsMessage})
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = normalizeEmail(req.Email)
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingFieldsMessage})
		return
	}
	if msg := s.checkEmail(req.Email); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if msg := s.checkPassword(req.Password); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		s.internalError(c, err, "Failed to count users")
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(c, err, "Failed to hash password")
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
	}
	if err := s.db.Create(user).Error; err != nil {
		s.internalError(c, err, "Failed to create user")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User registered")
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// refreshToken exchanges a refresh token from the Authorization header for a new access token
func (s *Server) refreshToken(c *gin.Context) {
	token, err := extractBearerToken(c.GetHeader("Authorization"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": bearerErrorMessage(err)})
		return
	}

	claims, err := auth.ValidateToken(token, auth.TokenRefresh)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Rejected refresh token")
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired refresh token"})
		return
	}

	revoked, err := models.IsTokenRevoked(s.db, claims.ID)
	if err != nil {
		s.internalError(c, err, "Failed to check token revocation")
		return
	}
	if revoked {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token has been revoked"})
		return
	}

	var user models.User
	if err := models.FindByID(s.db, claims.UserID, &user); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
		return
	}

	accessToken, err := auth.GenerateToken(user.ID, user.Email, user.IsAdmin, auth.TokenAccess)
	if err != nil {
		s.internalError(c, err, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
}

func (s *Server) logout(c *gin.Context) {
	session, _ := GetSessionData(c)

	// The body is optional
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if req.RefreshToken != "" {
		claims, err := auth.ValidateToken(req.RefreshToken, auth.TokenRefresh)
		switch {
		case err != nil:
			s.logger.Debug().Err(err).Msg("Ignoring invalid refresh token on logout")
		case claims.UserID != session.UserID:
			s.logger.Warn().Str("user_id", session.UserID).Msg("Refresh token belongs to another user")
		default:
			revoked := &models.RevokedToken{
				TokenID:   claims.ID,
				UserID:    claims.UserID,
				ExpiresAt: claims.ExpiresAt.Time,
			}
			if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(revoked).Error; err != nil {
				s.internalError(c, err, "Failed to revoke refresh token")
				return
			}
		}
	}

	s.logger.Info().Str("user_id", session.UserID).Msg("User logged out")
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (s *Server) getCurrentUser(c *gin.Context) {
	session, _ := GetSessionData(c)

	var user models.User
	if err := models.FindByID(s.db, session.UserID, &user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, toUserDetail(&user))
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	response := gin.H{"message": forgotPasswordMessage}

	var user models.User
	err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Same answer either way so accounts cannot be probed
	case err != nil:
		s.internalError(c, err, "Failed to find user")
		return
	default:
		token, hash, err := auth.GenerateResetToken()
		if err != nil {
			s.internalError(c, err, "Failed to generate reset token")
			return
		}

		reset := &models.PasswordReset{
			UserID:    user.ID,
			TokenHash: hash,
			ExpiresAt: s.now().Add(resetTokenTTL),
		}
		if err := s.db.Create(reset).Error; err != nil {
			s.internalError(c, err, "Failed to store reset token")
			return
		}

		s.logger.Info().Str("user_id", user.ID).Msg("Password reset requested")
		if s.config.IsDevelopment() {
			response["reset_token"] = token
		}
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) resetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingFieldsMessage})
		return
	}
	if msg := s.checkPassword(req.NewPassword); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	now := s.now()

	var reset models.PasswordReset
	err := s.db.Where("token_hash = ? AND used_at IS NULL AND expires_at > ?", auth.HashResetToken(req.Token), now).
		First(&reset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}
	if err != nil {
		s.internalError(c, err, "Failed to find reset token")
		return
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.internalError(c, err, "Failed to hash password")
		return
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			Update("password_hash", passwordHash).Error; err != nil {
			return err
		}
		return tx.Model(&reset).Update("used_at", now).Error
	})
	if err != nil {
		s.internalError(c, err, "Failed to reset password")
		return
	}

	s.logger.Info().Str("user_id", reset.UserID).Msg("Password reset completed")
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}
