package controllers

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Xaeon-Innovation/Medflow-sub000/cache"
	"github.com/Xaeon-Innovation/Medflow-sub000/classification"
	"github.com/Xaeon-Innovation/Medflow-sub000/commission"
	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/targets"
)

// setupHandlerTest points the shared services at a sqlmock pool so
// handlers can run without a real database.
func setupHandlerTest(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	config.DB = config.NewDatabase(db)
	loader = classification.NewContextLoader(config.DB)
	ledger = commission.NewLedger(config.DB)
	calculator = targets.NewCalculator(config.DB)
	appCache = cache.NewMemory()
	logger = zap.NewNop()

	return mock
}

// asEmployee stamps the authenticated employee the way AuthMiddleware
// does after verifying a token.
func asEmployee(id, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("employee_id", id)
		c.Set("employee_role", role)
		c.Next()
	}
}
