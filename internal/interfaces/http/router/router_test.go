package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	g := NewDomainGroup("materials", "/materials")
	assert.Equal(t, "materials", g.Name())
	assert.Equal(t, "/materials", g.Prefix())

	reply := func(body string) gin.HandlerFunc {
		return func(c *gin.Context) { c.String(http.StatusOK, body) }
	}
	g.GET("", reply("list")).
		POST("", reply("create")).
		PUT("/:id", reply("update")).
		PATCH("/:id", reply("patch")).
		DELETE("/:id", reply("delete"))
	g.Use(func(c *gin.Context) {
		c.Header("X-Group", "materials")
		c.Next()
	})

	engine := gin.New()
	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/v1/materials", "list"},
		{http.MethodPost, "/api/v1/materials", "create"},
		{http.MethodPut, "/api/v1/materials/1", "update"},
		{http.MethodPatch, "/api/v1/materials/1", "patch"},
		{http.MethodDelete, "/api/v1/materials/1", "delete"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
			assert.Equal(t, "materials", w.Header().Get("X-Group"))
		})
	}
}
