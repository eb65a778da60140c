package web

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/portal"
	"github.com/erazemk/lostfound/internal/store"
)

type testSite struct {
	handler http.Handler
	issuer  *auth.Issuer
	db      *sql.DB
	admin   *model.User
	staff   *model.User
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	database := db.NewTestDB(t)
	issuer := auth.NewIssuer("test-secret", 0)

	s := &Server{
		DB:     database,
		Issuer: issuer,
		Portal: portal.NewService(&store.ItemRepository{DB: database}, &store.ImageRepository{DB: database}),
	}
	h, err := NewRouter(s)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	admin, err := store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin)
	if err != nil {
		t.Fatalf("creating admin: %v", err)
	}
	staff, err := store.CreateUser(ctx, database, "desk", string(hash), model.RoleStaff)
	if err != nil {
		t.Fatalf("creating staff: %v", err)
	}

	return &testSite{handler: h, issuer: issuer, db: database, admin: admin, staff: staff}
}

// request serves a request as u (anonymous when nil).
func (ts *testSite) request(t *testing.T, u *model.User, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if u != nil {
		token, err := ts.issuer.Issue(u)
		if err != nil {
			t.Fatalf("issuing token: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestLoadTemplates(t *testing.T) {
	if _, err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
}

func TestLoginSetsCookie(t *testing.T) {
	ts := newTestSite(t)

	rec := ts.request(t, nil, "POST", "/login", url.Values{"username": {"admin"}, "password": {"password"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after login, got %d", rec.Code)
	}
	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatal("expected session cookie")
	}

	rec = ts.request(t, nil, "POST", "/login", url.Values{"username": {"admin"}, "password": {"nope"}})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Wrong username or password") {
		t.Errorf("expected login form with error, got %d", rec.Code)
	}
}

func TestLoginThrottled(t *testing.T) {
	ts := newTestSite(t)
	ts.handler, _ = NewRouter(&Server{
		DB:      ts.db,
		Issuer:  ts.issuer,
		Limiter: auth.NewLoginLimiter(time.Minute, 1),
	})

	ts.request(t, nil, "POST", "/login", url.Values{"username": {"admin"}, "password": {"nope"}})
	rec := ts.request(t, nil, "POST", "/login", url.Values{"username": {"admin"}, "password": {"password"}})
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 on second attempt, got %d", rec.Code)
	}
}

func TestRedirectsWithoutSession(t *testing.T) {
	ts := newTestSite(t)

	rec := ts.request(t, nil, "GET", "/", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Errorf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestPagesRender(t *testing.T) {
	ts := newTestSite(t)

	for _, path := range []string{"/", "/lost/new", "/found/new", "/items", "/items?type=lost&q=x&with_image=1", "/admin", "/users", "/settings"} {
		rec := ts.request(t, ts.admin, "GET", path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestStaffCannotReachAdmin(t *testing.T) {
	ts := newTestSite(t)

	for _, path := range []string{"/admin", "/users"} {
		if rec := ts.request(t, ts.staff, "GET", path, nil); rec.Code != http.StatusForbidden {
			t.Errorf("GET %s as staff: expected 403, got %d", path, rec.Code)
		}
	}
	if rec := ts.request(t, ts.staff, "GET", "/items", nil); rec.Code != http.StatusOK {
		t.Errorf("GET /items as staff: expected 200, got %d", rec.Code)
	}
}

func TestSubmitFoundMatchesLost(t *testing.T) {
	ts := newTestSite(t)

	rec := ts.request(t, ts.staff, "POST", "/lost", url.Values{
		"name": {"Blue Umbrella"}, "description": {"folding umbrella"}, "contact": {"041 111 222"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after lost post, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasSuffix(loc, "?result="+portal.ResultSaved) {
		t.Errorf("unexpected redirect %q", loc)
	}

	rec = ts.request(t, ts.staff, "POST", "/found", url.Values{
		"name": {"umbrella"}, "description": {"black handle"}, "contact": {"reception"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after found post, got %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasSuffix(loc, "?result="+portal.ResultMatched) {
		t.Fatalf("expected matched result, got %q", loc)
	}

	rec = ts.request(t, ts.staff, "GET", loc, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s: %d", loc, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "matched with open lost reports") || !strings.Contains(body, "Blue Umbrella") {
		t.Errorf("expected match banner and lost item on found detail page")
	}

	items, _ := store.ListItems(context.Background(), ts.db)
	for _, it := range items {
		if it.Type == model.TypeLost && it.Status != model.StatusMatched {
			t.Errorf("expected lost item to be matched, got %s", it.Status)
		}
	}
}

func TestSubmitInvalidRerendersForm(t *testing.T) {
	ts := newTestSite(t)

	rec := ts.request(t, ts.staff, "POST", "/found", url.Values{"name": {"Keys"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `value="Keys"`) {
		t.Error("expected the form to keep the submitted name")
	}
}

func TestAdminActions(t *testing.T) {
	ts := newTestSite(t)
	ctx := context.Background()

	it, err := store.CreateItem(ctx, ts.db, model.Item{
		Type: model.TypeFound, Name: "Scarf", Description: "wool", Contact: "desk", Date: "2025-01-10",
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	for _, action := range []string{"verify", "retrieved"} {
		rec := ts.request(t, ts.admin, "POST", "/admin/items/"+it.ID+"/"+action, url.Values{"q": {"scarf"}})
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("%s: expected redirect, got %d", action, rec.Code)
		}
		if loc := rec.Header().Get("Location"); !strings.Contains(loc, "q=scarf") {
			t.Errorf("%s: expected search to be kept, got %q", action, loc)
		}
	}

	vs, _ := store.ListVerifications(ctx, ts.db, it.ID)
	rs, _ := store.ListRetrievals(ctx, ts.db, it.ID)
	if len(vs) != 1 || len(rs) != 1 {
		t.Errorf("expected one verification and one retrieval, got %d and %d", len(vs), len(rs))
	}
	if vs[0].VerifiedBy == nil || *vs[0].VerifiedBy != ts.admin.ID {
		t.Errorf("expected verification by admin")
	}

	if rec := ts.request(t, ts.staff, "POST", "/admin/items/"+it.ID+"/delete", nil); rec.Code != http.StatusForbidden {
		t.Errorf("expected staff delete to be forbidden, got %d", rec.Code)
	}
	ts.request(t, ts.admin, "POST", "/admin/items/"+it.ID+"/delete", nil)
	if got, _ := store.GetItem(ctx, ts.db, it.ID); got != nil {
		t.Error("expected item to be deleted")
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	ts := newTestSite(t)

	token, _ := ts.issuer.Issue(ts.staff)
	req := httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	ts.handler.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/items", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected revoked session to redirect, got %d", rec.Code)
	}
}

func TestPagesReportStoreFailure(t *testing.T) {
	ts := newTestSite(t)
	ctx := context.Background()

	item, err := store.CreateItem(ctx, ts.db, model.Item{
		Type: model.TypeLost, Name: "Scarf", Description: "red wool", Contact: "desk",
		Date: "2025-03-14", CreatedAt: 100,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if _, err := ts.db.Exec(`DROP TABLE matches`); err != nil {
		t.Fatalf("dropping matches: %v", err)
	}
	rec := ts.request(t, ts.admin, "GET", "/items/"+item.ID, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("GET /items/{id}: expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "could not be loaded") {
		t.Error("GET /items/{id}: expected an error banner")
	}

	if _, err := ts.db.Exec(`ALTER TABLE items RENAME TO items_gone`); err != nil {
		t.Fatalf("renaming items: %v", err)
	}
	for _, path := range []string{"/", "/items", "/admin"} {
		rec := ts.request(t, ts.admin, "GET", path, nil)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("GET %s: expected 500, got %d", path, rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "Items could not be loaded") {
			t.Errorf("GET %s: expected an error banner", path)
		}
	}
}
