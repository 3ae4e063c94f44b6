package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cropwise-dev/cropwise/internal/models"
)

func (s *Server) listUsers(c *gin.Context) {
	page, perPage := pagination(c)

	var users []models.User
	if err := s.db.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users).Error; err != nil {
		s.internalError(c, err, "Failed to list users")
		return
	}

	details := make([]*UserDetail, len(users))
	for i := range users {
		details[i] = toUserDetail(&users[i])
	}

	c.JSON(http.StatusOK, details)
}

func (s *Server) listPredictions(c *gin.Context) {
	page, perPage := pagination(c)

	records := []models.Prediction{}
	if err := s.db.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&records).Error; err != nil {
		s.internalError(c, err, "Failed to list predictions")
		return
	}

	c.JSON(http.StatusOK, records)
}
