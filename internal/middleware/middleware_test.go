package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func sign(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(wid string, perms ...string) *JWTClaims {
	return &JWTClaims{
		UserID:      "u-1",
		WorkspaceID: wid,
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "nimo-qc",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("", JWTAuth(testSecret, "nimo-qc"), RequireWorkspace())
	g.GET("/read", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyWorkspaceID)) })
	g.POST("/write", RequirePermission("qc:write"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/read", "").Code)

	w := do(r, http.MethodGet, "/read", sign(t, validClaims("ws-9"), jwt.SigningMethodHS256, []byte(testSecret)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ws-9", w.Body.String())

	wrongIssuer := validClaims("ws-9")
	wrongIssuer.Issuer = "someone-else"
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/read", sign(t, wrongIssuer, jwt.SigningMethodHS256, []byte(testSecret))).Code)

	expired := validClaims("ws-9")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/read", sign(t, expired, jwt.SigningMethodHS256, []byte(testSecret))).Code)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/read", sign(t, validClaims("ws-9"), jwt.SigningMethodHS384, []byte(testSecret))).Code)

	tokenInQuery := sign(t, validClaims("ws-q"), jwt.SigningMethodHS256, []byte(testSecret))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/read?token="+tokenInQuery, "").Code)
}

func TestRequireWorkspaceAndPermission(t *testing.T) {
	r := newRouter()

	noWorkspace := sign(t, validClaims(""), jwt.SigningMethodHS256, []byte(testSecret))
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/read", noWorkspace).Code)

	readOnly := sign(t, validClaims("ws", "qc:read"), jwt.SigningMethodHS256, []byte(testSecret))
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/write", readOnly).Code)

	scoped := sign(t, validClaims("ws", "qc:*"), jwt.SigningMethodHS256, []byte(testSecret))
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/write", scoped).Code)
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission([]string{"*"}, "qc:write"))
	assert.True(t, HasPermission([]string{"qc:*"}, "qc:write"))
	assert.False(t, HasPermission([]string{"qcx:*"}, "qc:write"))
	assert.False(t, HasPermission(nil, "qc:write"))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("https://qc.example.com"), RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://qc.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://qc.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("X-Request-ID", "rid-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "rid-1", w.Header().Get("X-Request-ID"))
}
