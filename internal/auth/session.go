package auth

import "time"

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CanAccessUser reports whether the session may read another user's data
func (s *SessionData) CanAccessUser(userID string) bool {
	return s.IsAdmin || s.UserID == userID
}
