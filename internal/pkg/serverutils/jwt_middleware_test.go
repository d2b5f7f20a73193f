package serverutils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedApp(t *testing.T) (*fiber.App, *string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "middleware-test-secret")

	var seenUserId string
	app := fiber.New()
	app.Use(JwtMiddleware)
	app.Get("/protected", func(ctx *fiber.Ctx) error {
		seenUserId, _ = ctx.Locals("user_id").(string)
		return ctx.SendStatus(fiber.StatusOK)
	})
	return app, &seenUserId
}

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJwtMiddlewareAcceptsValidToken(t *testing.T) {
	app, seenUserId := newProtectedApp(t)
	userId := uuid.New()

	token := signedToken(t, "middleware-test-secret", jwt.MapClaims{"user_id": userId.String()})
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, userId.String(), *seenUserId)
}

func TestJwtMiddlewareMissingToken(t *testing.T) {
	app, _ := newProtectedApp(t)

	res, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestJwtMiddlewareWrongSecret(t *testing.T) {
	app, _ := newProtectedApp(t)

	token := signedToken(t, "some-other-secret", jwt.MapClaims{"user_id": uuid.NewString()})
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

// Unsigned tokens must be rejected even though they parse: only HMAC
// signatures are acceptable, matching the websocket verifier.
func TestJwtMiddlewareRejectsNoneAlgorithm(t *testing.T) {
	app, _ := newProtectedApp(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": uuid.NewString(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestJwtMiddlewareRejectsMalformedUserId(t *testing.T) {
	app, _ := newProtectedApp(t)

	for _, claims := range []jwt.MapClaims{
		{"user_id": "not-a-uuid"},
		{"user_id": 42},
		{},
	} {
		token := signedToken(t, "middleware-test-secret", claims)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	}
}
