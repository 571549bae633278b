package utils

import (
	"fmt"

	"github.com/MpenduloXulu/TTI-Website/internal/middleware"
	"github.com/MpenduloXulu/TTI-Website/internal/types"
	"github.com/gin-gonic/gin"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

// IsAdmin reports whether the authenticated user holds the admin role.
// Handlers that widen a listing or bypass an ownership check use this rather
// than comparing roles inline.
func IsAdmin(user middleware.AuthenticatedUser) bool {
	return user.Role == types.RoleAdmin
}
