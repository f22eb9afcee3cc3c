package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"estate-api/internal/core/auth"
	"estate-api/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

func gatedEngine() *gin.Engine {
	r := gin.New()
	g := &auth.Gate{StaticToken: "s3cret"}
	r.GET("/who", Gate(g, "access_token"), func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.String(http.StatusOK, p.ID+"/"+p.Role)
	})
	return r
}

func TestGateStatuses(t *testing.T) {
	r := gatedEngine()
	cases := []struct {
		name   string
		setup  func(*http.Request)
		status int
		body   string
	}{
		{"no credential", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"wrong cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "access_token", Value: "nope"})
		}, http.StatusForbidden, ""},
		{"static cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "access_token", Value: "s3cret"})
		}, http.StatusOK, "admin/" + domain.RoleAdmin},
		{"bearer header", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer s3cret")
		}, http.StatusOK, "admin/" + domain.RoleAdmin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/who", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("status %d, want %d (%s)", w.Code, tc.status, w.Body.String())
			}
			if tc.body != "" && w.Body.String() != tc.body {
				t.Fatalf("body %q, want %q", w.Body.String(), tc.body)
			}
		})
	}
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(1, 2, 0))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes %v", codes)
	}
}

func TestRequestIDEchoesOrMints(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc" || w.Header().Get(KeyRequestID) != "abc" {
		t.Fatalf("echo: body %q header %q", w.Body.String(), w.Header().Get(KeyRequestID))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(w.Body.String()) != 36 {
		t.Fatalf("minted id %q", w.Body.String())
	}
}
