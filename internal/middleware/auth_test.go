package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func requestContext(t *testing.T, header, cookie string) *gin.Context {
	t.Helper()

	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: cookie})
	}
	ctx.Request = req

	return ctx
}

func TestBearerTokenHeaderWins(t *testing.T) {
	ctx := requestContext(t, "Bearer header-token", "cookie-token")

	assert.Equal(t, "header-token", bearerToken(ctx))
}

func TestBearerTokenCookieFallback(t *testing.T) {
	ctx := requestContext(t, "", "cookie-token")

	assert.Equal(t, "cookie-token", bearerToken(ctx))
}

func TestBearerTokenMalformedHeaderFallsBackToCookie(t *testing.T) {
	for _, header := range []string{"Bearer", "Basic dXNlcjpwYXNz", "garbage"} {
		ctx := requestContext(t, header, "cookie-token")

		assert.Equal(t, "cookie-token", bearerToken(ctx), "header %q", header)
	}
}

func TestBearerTokenNoCredentials(t *testing.T) {
	ctx := requestContext(t, "", "")

	assert.Empty(t, bearerToken(ctx))
}
