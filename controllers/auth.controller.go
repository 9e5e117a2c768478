package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/models"
	"github.com/Xaeon-Innovation/Medflow-sub000/security"
)

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	// Test database connection
	err := config.DB.Ping()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "Database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "referral-backend",
		"timestamp": time.Now().Unix(),
	})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	// Fetch employee
	var employee models.Employee
	err := config.DB.QueryRow(`
		SELECT id, name, email, password_hash, role
		FROM employees
		WHERE email = $1 AND is_active = true
	`, input.Email).Scan(&employee.ID, &employee.Name, &employee.Email, &employee.PasswordHash, &employee.Role)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	accessToken, err := security.SignAccessToken(employee.ID, employee.Name, employee.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	refreshToken, err := security.SignRefreshToken(employee.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	expiresAt := time.Now().Add(7 * 24 * time.Hour)
	_, err = config.DB.Exec(`INSERT INTO refresh_tokens (employee_id, token, expires_at) VALUES ($1,$2,$3)`,
		employee.ID, refreshToken, expiresAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"employee": models.EmployeeInfo{
			ID:   employee.ID,
			Name: employee.Name,
			Role: employee.Role,
		},
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func Refresh(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	token, err := security.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	employeeID, _ := claims["sub"].(string)

	// Token must still be stored and unexpired
	var exists bool
	err = config.DB.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM refresh_tokens WHERE employee_id = $1 AND token = $2 AND expires_at > NOW())
	`, employeeID, input.RefreshToken).Scan(&exists)
	if err != nil {
		security.SendDatabaseError(c, "Failed to verify refresh token")
		return
	}
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token revoked or expired"})
		return
	}

	var employee models.Employee
	err = config.DB.QueryRow(`
		SELECT id, name, role FROM employees WHERE id = $1 AND is_active = true
	`, employeeID).Scan(&employee.ID, &employee.Name, &employee.Role)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Employee not found or inactive"})
		return
	}

	accessToken, err := security.SignAccessToken(employee.ID, employee.Name, employee.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}
