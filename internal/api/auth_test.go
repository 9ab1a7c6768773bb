package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-value"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func ginTestContext(method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return c, w
}

func TestRequireAuth_MissingHeaderIsUnauthorized(t *testing.T) {
	c, w := ginTestContext(http.MethodGet, "/stats/refresh/s1")

	RequireAuth(testSecret)(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.True(t, c.IsAborted())
}

func TestRequireAuth_MalformedHeaderIsUnauthorized(t *testing.T) {
	c, w := ginTestContext(http.MethodGet, "/stats/refresh/s1")
	c.Request.Header.Set("Authorization", "NotBearer abc")

	RequireAuth(testSecret)(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.True(t, c.IsAborted())
}

func TestRequireAuth_InvalidTokenIsUnauthorized(t *testing.T) {
	c, w := ginTestContext(http.MethodGet, "/stats/refresh/s1")
	c.Request.Header.Set("Authorization", "Bearer not-a-real-token")

	RequireAuth(testSecret)(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_WrongSigningSecretIsUnauthorized(t *testing.T) {
	token := signToken(t, "other-secret", Claims{Sub: "u1", Role: "user"})
	c, w := ginTestContext(http.MethodGet, "/stats/refresh/s1")
	c.Request.Header.Set("Authorization", "Bearer "+token)

	RequireAuth(testSecret)(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_ExpiredTokenIsUnauthorized(t *testing.T) {
	claims := Claims{
		Sub:  "u1",
		Role: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token := signToken(t, testSecret, claims)
	c, w := ginTestContext(http.MethodGet, "/stats/refresh/s1")
	c.Request.Header.Set("Authorization", "Bearer "+token)

	RequireAuth(testSecret)(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_ValidTokenStoresClaimsAndContinues(t *testing.T) {
	token := signToken(t, testSecret, Claims{Sub: "u1", Role: "user"})
	c, w := ginTestContext(http.MethodGet, "/stats/refresh/s1")
	c.Request.Header.Set("Authorization", "Bearer "+token)

	RequireAuth(testSecret)(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.False(t, c.IsAborted())

	claims, ok := getClaims(c)
	require.True(t, ok)
	require.Equal(t, "u1", claims.Sub)
	require.Equal(t, "user", claims.Role)
}

func TestRequireStaff_MissingClaimsIsForbidden(t *testing.T) {
	c, w := ginTestContext(http.MethodPost, "/rankings/calculate")

	RequireStaff()(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.True(t, c.IsAborted())
}

func TestRequireStaff_NonStaffRoleIsForbidden(t *testing.T) {
	c, w := ginTestContext(http.MethodPost, "/rankings/calculate")
	c.Set("claims", &Claims{Sub: "u1", Role: "user"})

	RequireStaff()(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireStaff_StaffRolePassesThrough(t *testing.T) {
	c, w := ginTestContext(http.MethodPost, "/rankings/calculate")
	c.Set("claims", &Claims{Sub: "u1", Role: roleStaff})

	RequireStaff()(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.False(t, c.IsAborted())
}
