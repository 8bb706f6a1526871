package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-insights-api/internal/models"
	appErrors "github.com/noah-isme/intervention-insights-api/pkg/errors"
)

type tokenStub struct {
	claims *models.JWTClaims
	seen   string
}

func (s *tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	s.seen = token
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

type observerStub struct {
	path   string
	status int
}

func (o *observerStub) ObserveHTTPRequest(_, path string, status int, _ time.Duration) {
	o.path = path
	o.status = status
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": Claims(c).UserID})
	})...)
	return r
}

func serve(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	validator := &tokenStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleStaff}}
	r := newRouter(JWT(validator))

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/protected", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/protected", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/protected", "Bearer bad").Code)
	assert.Equal(t, "bad", validator.seen)
}

func TestJWTAttachesClaims(t *testing.T) {
	validator := &tokenStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleStaff}}
	r := newRouter(JWT(validator))

	w := serve(r, "/protected", "bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"u1"`)
}

func TestRequireRoles(t *testing.T) {
	validator := &tokenStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleStaff}}
	r := newRouter(JWT(validator), RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	assert.Equal(t, http.StatusForbidden, serve(r, "/protected", "Bearer good").Code)

	validator.claims = &models.JWTClaims{UserID: "a1", Role: models.RoleSuperAdmin}
	assert.Equal(t, http.StatusOK, serve(r, "/protected", "Bearer good").Code)

	unauthenticated := newRouter(RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, serve(unauthenticated, "/protected", "").Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	observer := &observerStub{}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(observer))
	r.GET("/goals/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	serve(r, "/goals/abc", "")
	assert.Equal(t, "/goals/:id", observer.path)
	assert.Equal(t, http.StatusNoContent, observer.status)

	serve(r, "/nowhere", "")
	assert.Equal(t, "unmatched", observer.path)
	assert.Equal(t, http.StatusNotFound, observer.status)
}

func TestResponseMetaFlags(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	SetCacheHit(c, true)
	SetDemo(c, false)
	meta := ExtractMeta(c)
	require.NotNil(t, meta)
	assert.Equal(t, true, meta["cache_hit"])
	_, flagged := meta["demo"]
	assert.False(t, flagged)

	SetDemo(c, true)
	assert.Equal(t, true, ExtractMeta(c)["demo"])
}
