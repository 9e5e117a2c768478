package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xaeon-Innovation/Medflow-sub000/cache"
	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/models"
	"github.com/Xaeon-Innovation/Medflow-sub000/security"
)

// Hospital Controllers
type CreateHospitalInput struct {
	Code  string  `json:"code" binding:"required,max=20"`
	Name  string  `json:"name" binding:"required,max=200"`
	City  *string `json:"city" binding:"omitempty,max=100"`
	Phone *string `json:"phone" binding:"omitempty,max=20"`
}

const hospitalsCacheKey = "hospitals:active"

func CreateHospital(c *gin.Context) {
	var input CreateHospitalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var codeExists bool
	err := config.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM hospitals WHERE code = $1)`, input.Code).Scan(&codeExists)
	if err != nil {
		security.SendDatabaseError(c, "Database error while checking hospital code")
		return
	}
	if codeExists {
		security.SendConflictError(c, "Hospital code already exists")
		return
	}

	var hospital models.Hospital
	err = config.DB.QueryRow(`
		INSERT INTO hospitals (code, name, city, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, code, name, city, phone, is_active, created_at
	`, input.Code, input.Name, input.City, input.Phone).Scan(
		&hospital.ID, &hospital.Code, &hospital.Name, &hospital.City, &hospital.Phone,
		&hospital.IsActive, &hospital.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create hospital")
		return
	}

	// Best-effort: drop the cached list so readers see the new hospital
	if err := appCache.Invalidate(context.Background(), hospitalsCacheKey); err != nil {
		logger.Warn("failed to invalidate hospitals cache", zap.Error(err))
	}

	c.JSON(http.StatusCreated, hospital)
}

func GetHospitals(c *gin.Context) {
	ctx := context.Background()

	if cached, err := appCache.Get(ctx, hospitalsCacheKey); err == nil {
		var hospitals []models.Hospital
		if json.Unmarshal([]byte(cached), &hospitals) == nil {
			c.JSON(http.StatusOK, hospitals)
			return
		}
	} else if err != cache.ErrMiss {
		logger.Warn("hospitals cache read failed", zap.Error(err))
	}

	rows, err := config.DB.Query(`
		SELECT id, code, name, city, phone, is_active, created_at
		FROM hospitals WHERE is_active = true ORDER BY name
	`)
	if err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}
	defer rows.Close()

	var hospitals []models.Hospital
	for rows.Next() {
		var hospital models.Hospital
		err := rows.Scan(&hospital.ID, &hospital.Code, &hospital.Name, &hospital.City,
			&hospital.Phone, &hospital.IsActive, &hospital.CreatedAt)
		if err != nil {
			security.SendDatabaseError(c, "Database error")
			return
		}
		hospitals = append(hospitals, hospital)
	}

	if payload, err := json.Marshal(hospitals); err == nil {
		if err := appCache.Set(ctx, hospitalsCacheKey, string(payload), 10*time.Minute); err != nil {
			logger.Warn("hospitals cache write failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, hospitals)
}
