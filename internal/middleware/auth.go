package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thesishub-dev/thesishub/db"
	"github.com/thesishub-dev/thesishub/internal/auth"
	"github.com/thesishub-dev/thesishub/internal/models"
	"github.com/thesishub-dev/thesishub/internal/types"
)

type AuthenticatedUser struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"is_admin"`
	PhotoURL string `json:"photo_url"`
}

func bearerToken(ctx *gin.Context) string {
	if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		// Malformed header, fall through to the cookie.
	}

	if cookie, err := ctx.Cookie("token"); err == nil {
		return cookie
	}

	return ""
}

// resolveUser verifies the bearer credential and re-loads the user row.
// Role and IsAdmin always reflect the store, not the token.
func resolveUser(ctx *gin.Context) (AuthenticatedUser, bool) {
	tokenString := bearerToken(ctx)

	if tokenString == "" {
		return AuthenticatedUser{}, false
	}

	claims, err := auth.ParseJWT(tokenString)

	if err != nil {
		return AuthenticatedUser{}, false
	}

	var user models.User

	if err := db.DB.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		return AuthenticatedUser{}, false
	}

	return AuthenticatedUser{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		IsAdmin:  user.IsAdmin,
		PhotoURL: user.PhotoURL,
	}, true
}

func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := resolveUser(ctx)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or missing authorization token",
				"code":  "unauthenticated",
			})
			return
		}

		ctx.Set(types.ContextUserKey, user)
		ctx.Next()
	}
}

// OptionalAuthMiddleware resolves the caller when a valid credential is
// present and lets the request through anonymously otherwise.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if user, ok := resolveUser(ctx); ok {
			ctx.Set(types.ContextUserKey, user)
		}
		ctx.Next()
	}
}
