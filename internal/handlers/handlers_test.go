package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MpenduloXulu/TTI-Website/db"
	"github.com/MpenduloXulu/TTI-Website/internal/middleware"
	"github.com/MpenduloXulu/TTI-Website/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB points the package-level connection at a sqlmock instance for
// the duration of one test.
func setupTestDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	previous := db.DB
	db.DB = gormDB

	t.Cleanup(func() {
		db.DB = previous
		sqlDB.Close()
	})

	return mock
}

func newTestContext(t *testing.T, method, body string, params gin.Params, user *middleware.AuthenticatedUser) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)

	req, err := http.NewRequest(method, "/", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	ctx.Request = req
	ctx.Params = params

	if user != nil {
		ctx.Set(types.ContextUserKey, *user)
	}

	return ctx, recorder
}

func adminUser() *middleware.AuthenticatedUser {
	return &middleware.AuthenticatedUser{
		ID:        1,
		Email:     "admin@example.com",
		FirstName: "Ada",
		LastName:  "Admin",
		Role:      types.RoleAdmin,
	}
}

func applicantUser() *middleware.AuthenticatedUser {
	return &middleware.AuthenticatedUser{
		ID:        3,
		Email:     "applicant@example.com",
		FirstName: "Alex",
		LastName:  "Applicant",
		Role:      types.RoleApplicant,
	}
}
