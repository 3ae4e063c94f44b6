package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cropwise-dev/cropwise/internal/models"
	"github.com/cropwise-dev/cropwise/internal/predictor"
)

const (
	historyLimit   = 10
	defaultPerPage = 20
	maxPerPage     = 100
)

// PredictRequest is one soil sample. Pointers let zero readings pass the
// required check.
type PredictRequest struct {
	N           *float64 `json:"N" validate:"required,gte=0,lte=200"`
	P           *float64 `json:"P" validate:"required,gte=0,lte=200"`
	K           *float64 `json:"K" validate:"required,gte=0,lte=200"`
	Temperature *float64 `json:"temperature" validate:"required,gte=-20,lte=60"`
	Humidity    *float64 `json:"humidity" validate:"required,gte=0,lte=100"`
	Ph          *float64 `json:"ph" validate:"required,gte=0,lte=14"`
	Rainfall    *float64 `json:"rainfall" validate:"required,gte=0,lte=500"`
}

func (r PredictRequest) sample() predictor.Sample {
	return predictor.Sample{
		N:           *r.N,
		P:           *r.P,
		K:           *r.K,
		Temperature: *r.Temperature,
		Humidity:    *r.Humidity,
		Ph:          *r.Ph,
		Rainfall:    *r.Rainfall,
	}
}

func (s *Server) predict(c *gin.Context) {
	session, _ := GetSessionData(c)

	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := s.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	result, err := s.predictor.Predict(req.sample())
	if errors.Is(err, predictor.ErrInvalidSample) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.internalError(c, err, "Prediction failed")
		return
	}

	in := result.Input
	record := &models.Prediction{
		UserID:        session.UserID,
		Nitrogen:      in.N,
		Phosphorus:    in.P,
		Potassium:     in.K,
		Temperature:   in.Temperature,
		Humidity:      in.Humidity,
		Ph:            in.Ph,
		Rainfall:      in.Rainfall,
		PredictedCrop: result.RecommendedCrop,
		BestModel:     result.BestModel,
		Predictions:   result.Predictions,
	}
	if err := s.db.Create(record).Error; err != nil {
		s.internalError(c, err, "Failed to store prediction")
		return
	}

	s.logger.Info().
		Str("user_id", session.UserID).
		Str("crop", result.RecommendedCrop).
		Str("best_model", result.BestModel).
		Msg("Prediction stored")

	c.JSON(http.StatusOK, result)
}

// history lists a user's latest predictions, newest first
func (s *Server) history(c *gin.Context) {
	session, _ := GetSessionData(c)
	userID := c.Param("userId")

	if !session.CanAccessUser(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	records := []models.Prediction{}
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(historyLimit).
		Find(&records).Error; err != nil {
		s.internalError(c, err, "Failed to load history")
		return
	}

	c.JSON(http.StatusOK, records)
}

// pagination reads page/per_page query parameters, falling back to defaults
// for missing or invalid values
func pagination(c *gin.Context) (page, perPage int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err = strconv.Atoi(c.Query("per_page"))
	if err != nil || perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
