package models

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User represents a registered grower account
type User struct {
	BaseModel
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	FullName     string    `json:"full_name" gorm:"not null"`
	IsAdmin      bool      `json:"is_admin" gorm:"not null;default:false"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Prediction is one soil sample and the crop recommended for it
type Prediction struct {
	BaseModel
	UserID      string  `json:"user_id" gorm:"type:varchar(26);not null;index"`
	Nitrogen    float64 `json:"nitrogen" gorm:"not null"`
	Phosphorus  float64 `json:"phosphorus" gorm:"not null"`
	Potassium   float64 `json:"potassium" gorm:"not null"`
	Temperature float64 `json:"temperature" gorm:"not null"`
	Humidity    float64 `json:"humidity" gorm:"not null"`
	Ph          float64 `json:"ph" gorm:"not null"`
	Rainfall    float64 `json:"rainfall" gorm:"not null"`

	PredictedCrop string `json:"predicted_crop" gorm:"not null"`
	BestModel     string `json:"best_model" gorm:"not null"`

	// Per-model predictions, JSON encoded
	ModelPredictions string `json:"-" gorm:"type:text"`

	// Computed fields (populated at runtime, not persisted)
	Predictions map[string]string `json:"predictions,omitempty" gorm:"-"`

	// Relationships
	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeSave encodes per-model predictions
func (p *Prediction) BeforeSave(tx *gorm.DB) error {
	if p.Predictions == nil {
		return nil
	}
	data, err := json.Marshal(p.Predictions)
	if err != nil {
		return err
	}
	p.ModelPredictions = string(data)
	return nil
}

// AfterFind populates computed fields after loading from database
func (p *Prediction) AfterFind(tx *gorm.DB) error {
	if p.ModelPredictions == "" {
		return nil
	}
	return json.Unmarshal([]byte(p.ModelPredictions), &p.Predictions)
}

// RevokedToken records a refresh token that may no longer be used
type RevokedToken struct {
	BaseModel
	TokenID   string    `json:"token_id" gorm:"unique;not null"` // jti claim
	UserID    string    `json:"user_id" gorm:"type:varchar(26);not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
}

// PasswordReset is a pending password reset. Only a hash of the token is stored.
type PasswordReset struct {
	BaseModel
	UserID    string     `json:"user_id" gorm:"type:varchar(26);not null;index"`
	TokenHash string     `json:"-" gorm:"unique;not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null;index"`
	UsedAt    *time.Time `json:"used_at"`

	// Relationships
	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&User{}, &Prediction{}, &RevokedToken{}, &PasswordReset{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// IsTokenRevoked reports whether a refresh token id has been revoked
func IsTokenRevoked(db *gorm.DB, tokenID string) (bool, error) {
	var count int64
	if err := db.Model(&RevokedToken{}).Where("token_id = ?", tokenID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpired deletes revoked tokens and password resets that can no longer
// matter and returns how many rows were removed
func PurgeExpired(db *gorm.DB, now time.Time) (int64, error) {
	tokens := db.Where("expires_at < ?", now).Delete(&RevokedToken{})
	if tokens.Error != nil {
		return 0, tokens.Error
	}

	resets := db.Where("expires_at < ? OR used_at IS NOT NULL", now).Delete(&PasswordReset{})
	if resets.Error != nil {
		return tokens.RowsAffected, resets.Error
	}

	return tokens.RowsAffected + resets.RowsAffected, nil
}
