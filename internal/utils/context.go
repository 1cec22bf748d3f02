package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/thesishub-dev/thesishub/internal/middleware"
	"github.com/thesishub-dev/thesishub/internal/policy"
	"github.com/thesishub-dev/thesishub/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("user not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("invalid user type in context")
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

// GetCaller returns the policy identity for the request. Behind optional
// auth the zero Caller stands for an anonymous request.
func GetCaller(ctx *gin.Context) policy.Caller {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return policy.Caller{}
	}

	return policy.Caller{
		ID:      user.ID,
		Name:    user.Name,
		Role:    user.Role,
		IsAdmin: user.IsAdmin,
	}
}
