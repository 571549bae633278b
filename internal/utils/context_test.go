package utils

import (
	"testing"

	"github.com/MpenduloXulu/TTI-Website/internal/middleware"
	"github.com/MpenduloXulu/TTI-Website/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin(middleware.AuthenticatedUser{Role: types.RoleAdmin}))
	assert.False(t, IsAdmin(middleware.AuthenticatedUser{Role: types.RoleApplicant}))
	assert.False(t, IsAdmin(middleware.AuthenticatedUser{}))
}
