package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tienda-api/internal/pkg/jwtutil"
)

func TestAuthJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", AuthJWT("s"), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", c.GetUint(ContextUserIDKey))
	})

	token, _ := jwtutil.GenerateToken("s", time.Hour, 5, "ana")
	cases := map[string]struct {
		header string
		status int
	}{
		"missing":      {"", http.StatusUnauthorized},
		"wrong scheme": {"Token " + token, http.StatusUnauthorized},
		"bad token":    {"Bearer nope", http.StatusUnauthorized},
		"valid":        {"Bearer " + token, http.StatusOK},
	}
	for name, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", name, tc.status, rec.Code)
		}
		if tc.status == http.StatusOK && rec.Body.String() != "5" {
			t.Fatalf("%s: unexpected user id %q", name, rec.Body.String())
		}
	}
}

func TestRequestLoggerTagsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ping/:id", func(c *gin.Context) {
		Logger(c).Info("inside handler")
		c.Status(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping/1", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get(RequestIDHeader) != "req-123" {
		t.Fatalf("request id not echoed")
	}
	out := buf.String()
	if strings.Count(out, `"request_id":"req-123"`) != 2 {
		t.Fatalf("both log lines should carry the request id: %s", out)
	}
	if !strings.Contains(out, `"path":"/ping/:id"`) || !strings.Contains(out, `"status":418`) {
		t.Fatalf("unexpected access log: %s", out)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping/2", nil))
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("a request id should be generated")
	}
}
