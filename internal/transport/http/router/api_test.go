package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"estate-api/internal/core/auth"
	"estate-api/internal/core/config"
	"estate-api/internal/domain"
	"estate-api/internal/imagehost"
	"estate-api/internal/repo"
	"estate-api/internal/service"
	"estate-api/internal/transport/http/handler"
)

const staticToken = "s3cret-static-token"

func init() { gin.SetMode(gin.TestMode) }

type fixture struct {
	engine   *gin.Engine
	admin    *gin.Engine
	listings *repo.MemoryListingRepo
	jwt      *auth.JWTer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	l := zap.NewNop()
	listings := repo.NewMemoryListingRepo()
	users := repo.NewMemoryUserRepo()
	jwt := &auth.JWTer{Secret: []byte("jwt-test"), Issuer: "estate-api", TTL: time.Hour}

	userSvc := service.NewUserService(users, jwt, l)
	listingSvc := service.NewListingService(listings, service.WithLogger(l))

	reg := &Registry{}
	reg.Register(
		handler.Auth{Users: userSvc, Cookie: handler.Cookie{Name: "access_token", MaxAge: 3600}},
		handler.Listings{Svc: listingSvc, Users: userSvc},
		handler.Users{Users: userSvc, Listings: listingSvc},
		handler.Upload{Host: imagehost.NewHost(imagehost.Disabled(), 2<<20, l)},
	)
	o := Options{
		Logger:     l,
		Gate:       &auth.Gate{StaticToken: staticToken, JWT: jwt},
		CookieName: "access_token",
		Limits:     config.Limits{MaxBodyMB: 1},
	}
	return &fixture{
		engine:   NewAPIEngine(o, reg),
		admin:    NewAdminEngine(o, reg),
		listings: listings,
		jwt:      jwt,
	}
}

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func (f *fixture) do(t *testing.T, e *gin.Engine, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: body is not an envelope: %s", method, path, w.Body.String())
	}
	if env.StatusCode != w.Code {
		t.Fatalf("%s %s: envelope status %d, http status %d", method, path, env.StatusCode, w.Code)
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func (f *fixture) signUp(t *testing.T, name string) (id, token string) {
	t.Helper()
	code, env := f.do(t, f.engine, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": name, "email": name + "@example.com", "password": "pw-" + name,
	})
	if code != http.StatusOK {
		t.Fatalf("signup %s: %d %s", name, code, env.Message)
	}
	u := decode[domain.User](t, env.Data)
	tok, err := f.jwt.Issue(u.ID, domain.RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	return u.ID, tok
}

func listingBody(name, typ string) map[string]any {
	return map[string]any{
		"name":         name,
		"type":         typ,
		"imageUrls":    []string{"x"},
		"regularPrice": 100,
		"offer":        false,
	}
}

func TestGateOnMutatingRoutes(t *testing.T) {
	f := newFixture(t)
	if code, _ := f.do(t, f.engine, http.MethodPost, "/api/listing/create", "", listingBody("A", "rent")); code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", code)
	}
	if code, _ := f.do(t, f.engine, http.MethodPost, "/api/listing/create", "wrong", listingBody("A", "rent")); code != http.StatusForbidden {
		t.Fatalf("bad token: %d", code)
	}
	code, env := f.do(t, f.engine, http.MethodPost, "/api/listing/create", staticToken, listingBody("A", "rent"))
	if code != http.StatusOK {
		t.Fatalf("static token: %d %s", code, env.Message)
	}
	if l := decode[domain.Listing](t, env.Data); l.UserRef != "admin" {
		t.Fatalf("owner %q, want admin", l.UserRef)
	}
}

func TestCreateAssignsIDAndOwner(t *testing.T) {
	f := newFixture(t)
	uid, tok := f.signUp(t, "ann")

	code, env := f.do(t, f.engine, http.MethodPost, "/api/listing/create", tok, listingBody("A", "rent"))
	if code != http.StatusOK || !env.Success {
		t.Fatalf("create: %d %s", code, env.Message)
	}
	l := decode[domain.Listing](t, env.Data)
	if l.ID == "" || l.UserRef != uid {
		t.Fatalf("listing %+v", l)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	_, tok := f.signUp(t, "ann")

	noImages := listingBody("A", "rent")
	noImages["imageUrls"] = []string{}
	seven := listingBody("A", "rent")
	seven["imageUrls"] = []string{"1", "2", "3", "4", "5", "6", "7"}
	badOffer := listingBody("A", "rent")
	badOffer["offer"] = true
	badOffer["discountPrice"] = 100

	for name, body := range map[string]map[string]any{"no images": noImages, "seven images": seven, "discount >= regular": badOffer} {
		if code, env := f.do(t, f.engine, http.MethodPost, "/api/listing/create", tok, body); code != http.StatusBadRequest || env.Message == "" {
			t.Errorf("%s: %d %q", name, code, env.Message)
		}
	}
}

func TestCreateForUnknownOwnerIs404(t *testing.T) {
	f := newFixture(t)
	ghost, _ := f.jwt.Issue("000000000000000000000000", domain.RoleUser)
	if code, _ := f.do(t, f.engine, http.MethodPost, "/api/listing/create", ghost, listingBody("A", "rent")); code != http.StatusNotFound {
		t.Fatalf("got %d", code)
	}
}

func TestUpdateByNonOwnerIsForbiddenAndLeavesRecord(t *testing.T) {
	f := newFixture(t)
	_, owner := f.signUp(t, "ann")
	_, other := f.signUp(t, "bob")

	_, env := f.do(t, f.engine, http.MethodPost, "/api/listing/create", owner, listingBody("A", "rent"))
	l := decode[domain.Listing](t, env.Data)

	code, _ := f.do(t, f.engine, http.MethodPost, "/api/listing/update/"+l.ID, other, map[string]any{"name": "hijacked"})
	if code != http.StatusForbidden {
		t.Fatalf("non-owner update: %d", code)
	}
	stored, err := f.listings.FindByID(t.Context(), l.ID)
	if err != nil || stored.Name != "A" {
		t.Fatalf("record changed: %+v %v", stored, err)
	}

	// the static admin principal gets no override on the standard path
	if code, _ := f.do(t, f.engine, http.MethodPost, "/api/listing/update/"+l.ID, staticToken, map[string]any{"name": "x"}); code != http.StatusForbidden {
		t.Fatalf("admin on owner path: %d", code)
	}

	code, env = f.do(t, f.engine, http.MethodPost, "/api/listing/update/"+l.ID, owner, map[string]any{"name": "B", "bedrooms": 4})
	if code != http.StatusOK {
		t.Fatalf("owner update: %d %s", code, env.Message)
	}
	if up := decode[domain.Listing](t, env.Data); up.Name != "B" || up.Bedrooms != 4 || len(up.ImageURLs) != 1 {
		t.Fatalf("updated %+v", up)
	}
}

func TestAdminDeleteThenGetIs404(t *testing.T) {
	f := newFixture(t)
	_, owner := f.signUp(t, "ann")
	_, env := f.do(t, f.engine, http.MethodPost, "/api/listing/create", owner, listingBody("A", "rent"))
	l := decode[domain.Listing](t, env.Data)

	if code, _ := f.do(t, f.engine, http.MethodDelete, "/api/admin/listings/"+l.ID, owner, nil); code != http.StatusForbidden {
		t.Fatalf("user on admin route: %d", code)
	}
	if code, env := f.do(t, f.admin, http.MethodDelete, "/api/admin/listings/"+l.ID, staticToken, nil); code != http.StatusOK {
		t.Fatalf("admin delete: %d %s", code, env.Message)
	}
	if code, _ := f.do(t, f.engine, http.MethodGet, "/api/listing/get/"+l.ID, "", nil); code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", code)
	}
	if code, _ := f.do(t, f.engine, http.MethodDelete, "/api/admin/listings/"+l.ID, staticToken, nil); code != http.StatusNotFound {
		t.Fatalf("second delete: %d", code)
	}
}

func TestOwnerDelete(t *testing.T) {
	f := newFixture(t)
	_, owner := f.signUp(t, "ann")
	_, other := f.signUp(t, "bob")
	_, env := f.do(t, f.engine, http.MethodPost, "/api/listing/create", owner, listingBody("A", "rent"))
	l := decode[domain.Listing](t, env.Data)

	if code, _ := f.do(t, f.engine, http.MethodDelete, "/api/listing/delete/"+l.ID, other, nil); code != http.StatusForbidden {
		t.Fatalf("non-owner delete: %d", code)
	}
	if code, _ := f.do(t, f.engine, http.MethodDelete, "/api/listing/delete/"+l.ID, owner, nil); code != http.StatusOK {
		t.Fatalf("owner delete: %d", code)
	}
}

func TestReadManyFilterAndLimit(t *testing.T) {
	f := newFixture(t)
	_, tok := f.signUp(t, "ann")
	for i, typ := range []string{"rent", "sale", "rent", "rent", "sale"} {
		if code, env := f.do(t, f.engine, http.MethodPost, "/api/listing/create", tok, listingBody(string(rune('A'+i)), typ)); code != 200 {
			t.Fatalf("seed: %d %s", code, env.Message)
		}
	}

	code, env := f.do(t, f.engine, http.MethodGet, "/api/listing/get?type=rent&limit=2", "", nil)
	if code != http.StatusOK {
		t.Fatalf("list: %d", code)
	}
	ls := decode[[]domain.Listing](t, env.Data)
	if len(ls) > 2 || len(ls) == 0 {
		t.Fatalf("got %d listings", len(ls))
	}
	for _, l := range ls {
		if l.Type != domain.ListingRent {
			t.Fatalf("type %q", l.Type)
		}
	}

	if code, _ := f.do(t, f.engine, http.MethodGet, "/api/listing/get?type=villa", "", nil); code != http.StatusBadRequest {
		t.Fatalf("bad type: %d", code)
	}

	_, env = f.do(t, f.admin, http.MethodGet, "/api/admin/listings", staticToken, nil)
	if all := decode[[]domain.Listing](t, env.Data); len(all) != 5 {
		t.Fatalf("admin list: %d", len(all))
	}
}

func TestReadOneMissingIs404(t *testing.T) {
	f := newFixture(t)
	code, env := f.do(t, f.engine, http.MethodGet, "/api/listing/get/nope", "", nil)
	if code != http.StatusNotFound || env.Success || env.Message != "Not Found" {
		t.Fatalf("got %d %+v", code, env)
	}
}

func TestSignInSetsCookie(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "ann")

	b, _ := json.Marshal(map[string]string{"email": "ann@example.com", "password": "pw-ann"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("signin: %d %s", w.Code, w.Body.String())
	}
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "access_token" {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly || cookie.Value == "" {
		t.Fatalf("cookie %+v", cookie)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("pw-ann")) || bytes.Contains(w.Body.Bytes(), []byte("$2a$")) {
		t.Fatal("credential material leaked")
	}

	if code, _ := f.do(t, f.engine, http.MethodPost, "/api/listing/create", cookie.Value, listingBody("A", "sale")); code != http.StatusOK {
		t.Fatalf("create with signin cookie: %d", code)
	}
}

func TestUserListingsRequireSelf(t *testing.T) {
	f := newFixture(t)
	annID, ann := f.signUp(t, "ann")
	_, bob := f.signUp(t, "bob")
	f.do(t, f.engine, http.MethodPost, "/api/listing/create", ann, listingBody("A", "rent"))

	if code, _ := f.do(t, f.engine, http.MethodGet, "/api/user/listings/"+annID, bob, nil); code != http.StatusForbidden {
		t.Fatalf("other user: %d", code)
	}
	code, env := f.do(t, f.engine, http.MethodGet, "/api/user/listings/"+annID, ann, nil)
	if code != http.StatusOK || len(decode[[]domain.Listing](t, env.Data)) != 1 {
		t.Fatalf("own listings: %d %s", code, env.Data)
	}
	if code, _ := f.do(t, f.engine, http.MethodGet, "/api/user/"+annID, bob, nil); code != http.StatusOK {
		t.Fatalf("get user: %d", code)
	}
}

func TestAdminEngineServesOnlyAdmin(t *testing.T) {
	f := newFixture(t)
	if code, _ := f.do(t, f.admin, http.MethodGet, "/api/listing/get", "", nil); code != http.StatusNotFound {
		t.Fatalf("public route on admin engine: %d", code)
	}
	if code, _ := f.do(t, f.admin, http.MethodGet, "/health", "", nil); code != http.StatusOK {
		t.Fatalf("health: %d", code)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	f := newFixture(t)
	var body bytes.Buffer
	body.WriteString("--b\r\nContent-Disposition: form-data; name=\"images\"; filename=\"a.png\"\r\nContent-Type: image/png\r\n\r\nxx\r\n--b--\r\n")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	req.AddCookie(&http.Cookie{Name: "access_token", Value: staticToken})
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	// "xx" fails sniffing before the uploader is reached
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}
