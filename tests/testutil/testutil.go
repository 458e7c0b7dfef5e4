// Package testutil holds helpers shared by the storefront's package tests:
// a migrated SQLite database, catalog fixtures, principals and JSON requests.
package testutil

import (
	"strings"
	"testing"

	"github.com/apparel/storefront/internal/domain/identity"
	"github.com/apparel/storefront/internal/infrastructure/persistence/models"
	"github.com/apparel/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewSQLiteDB opens an in-memory database private to the test with every
// storefront table migrated.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// AsPrincipal returns middleware that authenticates every request as p,
// standing in for the JWT middleware in handler tests.
func AsPrincipal(p identity.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTPrincipalKey, p)
		c.Set(middleware.JWTUserIDKey, p.UserID)
		c.Set(middleware.JWTEmailKey, p.Email)
		c.Next()
	}
}

// Customer returns an authenticated non-admin principal.
func Customer(userID string) identity.Principal {
	return identity.Principal{UserID: userID, Email: userID + "@example.com"}
}

// Admin returns an authenticated admin principal.
func Admin() identity.Principal {
	return identity.Principal{UserID: "admin", Email: "admin@example.com", Admin: true}
}

// NewTestUUID derives a stable UUID from seed
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
}
