package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookshelf/library-api/internal/api/handler"
	"github.com/bookshelf/library-api/internal/core/ports"
	"github.com/bookshelf/library-api/internal/core/service"
	"github.com/bookshelf/library-api/internal/infrastructure/db/memory"
	"github.com/bookshelf/library-api/internal/infrastructure/security"
)

const testSecret = "router-test-secret-0123456789abcdef"

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type replayStore struct {
	data map[string]ports.StoredResponse
}

func (s *replayStore) Lookup(_ context.Context, key string) (*ports.StoredResponse, error) {
	if r, ok := s.data[key]; ok {
		return &r, nil
	}
	return nil, nil
}

func (s *replayStore) Save(_ context.Context, key string, r ports.StoredResponse) error {
	s.data[key] = r
	return nil
}

func newTestRouter(t *testing.T, health map[string]handler.Pinger) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()
	users := memory.NewUserRepository()
	books := memory.NewBookRepository()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	tokens := security.NewJWTService([]byte(testSecret), time.Minute)
	reg := prometheus.NewRegistry()

	return NewRouter(Dependencies{
		Logger:      log,
		Auth:        service.NewAuthService(users, hasher, tokens, log),
		Users:       service.NewUserService(users, hasher, log),
		Books:       service.NewBookService(books, log),
		Idempotency: &replayStore{data: map[string]ports.StoredResponse{}},
		Health:      health,
		CORSOrigins: []string{"http://localhost:8080"},
		Registerer:  reg,
		Gatherer:    reg,
	})
}

func do(e *echo.Echo, method, path, body, token string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(e *echo.Echo, username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func mustCreateUser(t *testing.T, e *echo.Echo, username, password string) {
	t.Helper()
	rec := do(e, http.MethodPost, "/users/", `{"username":"`+username+`","password":"`+password+`"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create %s: expected 201, got %d: %s", username, rec.Code, rec.Body.String())
	}
}

func mustLogin(t *testing.T, e *echo.Echo, username, password string) string {
	t.Helper()
	rec := login(e, username, password)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, rec.Code, rec.Body.String())
	}
	return decode(t, rec)["access_token"].(string)
}

func assertChallenge(t *testing.T, rec *httptest.ResponseRecorder, wantMsg string) {
	t.Helper()
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Errorf("expected WWW-Authenticate: Bearer, got %q", rec.Header().Get("WWW-Authenticate"))
	}
	if got := decode(t, rec)["error"]; got != wantMsg {
		t.Errorf("expected error %q, got %v", wantMsg, got)
	}
}

func TestScenario_CreateLoginMe(t *testing.T) {
	e := newTestRouter(t, nil)

	rec := do(e, http.MethodPost, "/users/", `{"username":"alice","password":"secret123","email":"alice@example.com"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode(t, rec)
	if _, ok := created["password"]; ok {
		t.Errorf("response leaks password: %v", created)
	}
	if _, ok := created["password_hash"]; ok {
		t.Errorf("response leaks password digest: %v", created)
	}
	if created["id"] != float64(1) || created["email"] != "alice@example.com" {
		t.Errorf("unexpected user: %v", created)
	}

	tokenRec := login(e, "alice", "secret123")
	if tokenRec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", tokenRec.Code, tokenRec.Body.String())
	}
	tok := decode(t, tokenRec)
	if tok["token_type"] != "bearer" {
		t.Errorf("expected bearer token type, got %v", tok["token_type"])
	}
	if exp, _ := tok["expires_in"].(float64); exp < 58 || exp > 60 {
		t.Errorf("expected expires_in close to 60, got %v", tok["expires_in"])
	}
	access, _ := tok["access_token"].(string)
	if strings.Count(access, ".") != 2 {
		t.Fatalf("expected a compact JWS, got %q", access)
	}

	me := do(e, http.MethodGet, "/users/me", "", access)
	if me.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", me.Code, me.Body.String())
	}
	body := decode(t, me)
	if body["username"] != "alice" {
		t.Errorf("expected alice, got %v", body["username"])
	}
	if _, ok := body["password"]; ok {
		t.Errorf("me leaks password")
	}
}

func TestScenario_DuplicateUsername(t *testing.T) {
	e := newTestRouter(t, nil)
	mustCreateUser(t, e, "bob", "pw1")

	rec := do(e, http.MethodPost, "/users/", `{"username":"bob","password":"pw2"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["field"] != "username" {
		t.Errorf("expected conflict on username, got %v", body)
	}
	if !strings.Contains(body["error"].(string), "bob") {
		t.Errorf("expected message naming the username, got %v", body["error"])
	}
}

func TestScenario_UnknownUserMatchesWrongPassword(t *testing.T) {
	e := newTestRouter(t, nil)
	mustCreateUser(t, e, "alice", "secret123")

	unknown := login(e, "nobody", "secret123")
	wrong := login(e, "alice", "not-it")

	assertChallenge(t, unknown, "Incorrect username or password")
	assertChallenge(t, wrong, "Incorrect username or password")
	if unknown.Body.String() != wrong.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", unknown.Body.String(), wrong.Body.String())
	}
}

func TestScenario_LoginMissingField(t *testing.T) {
	e := newTestRouter(t, nil)

	rec := login(e, "alice", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestScenario_UserNotFound(t *testing.T) {
	e := newTestRouter(t, nil)
	mustCreateUser(t, e, "alice", "secret123")
	token := mustLogin(t, e, "alice", "secret123")

	rec := do(e, http.MethodGet, "/users/999999", "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}

	bad := do(e, http.MethodGet, "/users/abc", "", token)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-numeric id, got %d", bad.Code)
	}
}

func TestScenario_RejectedTokens(t *testing.T) {
	e := newTestRouter(t, nil)
	mustCreateUser(t, e, "alice", "secret123")
	good := mustLogin(t, e, "alice", "secret123")

	past := security.NewJWTService([]byte(testSecret), time.Minute,
		security.WithClock(func() time.Time { return time.Now().Add(-2 * time.Minute) }))
	expired, err := past.Issue("alice", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	foreign, err := security.NewJWTService([]byte("another-secret-0123456789abcdefgh"), time.Minute).Issue("alice", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(good, ".")
	otherParts := strings.Split(foreign.Value, ".")
	tampered := parts[0] + "." + otherParts[1] + "." + parts[2]

	cases := map[string]string{
		"expired":        expired.Value,
		"foreign secret": foreign.Value,
		"tampered":       tampered,
		"garbage":        "not.a.token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			assertChallenge(t, do(e, http.MethodGet, "/users/me", "", token), "Could not validate credentials")
		})
	}

	t.Run("missing header", func(t *testing.T) {
		assertChallenge(t, do(e, http.MethodGet, "/users/me", "", ""), "Could not validate credentials")
	})
}

func TestScenario_PasswordChangeAndDisable(t *testing.T) {
	e := newTestRouter(t, nil)
	mustCreateUser(t, e, "alice", "old-password")
	mustCreateUser(t, e, "carol", "carol-pw")
	aliceToken := mustLogin(t, e, "alice", "old-password")
	carolToken := mustLogin(t, e, "carol", "carol-pw")

	rec := do(e, http.MethodPatch, "/users/1", `{"password":"new-password"}`, aliceToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if login(e, "alice", "old-password").Code != http.StatusUnauthorized {
		t.Errorf("old password must stop working")
	}
	mustLogin(t, e, "alice", "new-password")

	rec = do(e, http.MethodPatch, "/users/2", `{"disabled":true}`, aliceToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("disable: expected 200, got %d", rec.Code)
	}
	assertChallenge(t, do(e, http.MethodGet, "/users/me", "", carolToken), "Could not validate credentials")
	assertChallenge(t, login(e, "carol", "carol-pw"), "Incorrect username or password")
}

func TestScenario_UserListUpdateDelete(t *testing.T) {
	e := newTestRouter(t, nil)
	mustCreateUser(t, e, "alice", "pw")
	mustCreateUser(t, e, "bob", "pw")
	token := mustLogin(t, e, "alice", "pw")

	list := do(e, http.MethodGet, "/users/?limit=1&offset=1", "", token)
	if list.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", list.Code)
	}
	var page []map[string]any
	if err := json.Unmarshal(list.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(page) != 1 || page[0]["username"] != "bob" {
		t.Fatalf("unexpected page: %v", page)
	}

	if rec := do(e, http.MethodGet, "/users/", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("listing users requires a token, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/users/?limit=-1", "", token); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative limit: expected 422, got %d", rec.Code)
	}

	rename := do(e, http.MethodPatch, "/users/2", `{"username":"alice"}`, token)
	if rename.Code != http.StatusBadRequest || decode(t, rename)["field"] != "username" {
		t.Fatalf("rename onto existing user: expected 400 naming username, got %d: %s", rename.Code, rename.Body.String())
	}

	if rec := do(e, http.MethodDelete, "/users/2", "", token); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	if rec := do(e, http.MethodDelete, "/users/2", "", token); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestScenario_Books(t *testing.T) {
	e := newTestRouter(t, nil)
	mustCreateUser(t, e, "alice", "pw")
	token := mustLogin(t, e, "alice", "pw")

	if rec := do(e, http.MethodGet, "/books/", "", ""); rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("empty catalogue: expected 200 [], got %d %q", rec.Code, rec.Body.String())
	}

	dune := `{"title":"Dune","author":"Frank Herbert","published_year":1965}`
	assertChallenge(t, do(e, http.MethodPost, "/books/", dune, ""), "Could not validate credentials")

	rec := do(e, http.MethodPost, "/books/", dune, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["id"] != float64(1) {
		t.Errorf("expected id 1, got %s", rec.Body.String())
	}

	if rec := do(e, http.MethodGet, "/books/1", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("public get: expected 200, got %d", rec.Code)
	}

	rec = do(e, http.MethodPatch, "/books/1", `{"published_year":1966}`, token)
	if rec.Code != http.StatusOK || decode(t, rec)["title"] != "Dune" {
		t.Fatalf("patch: unexpected %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodPut, "/books/1", `{"title":"Emma","author":"Jane Austen","published_year":1815}`, token)
	if rec.Code != http.StatusOK || decode(t, rec)["author"] != "Jane Austen" {
		t.Fatalf("put: unexpected %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(e, http.MethodPut, "/books/1", `{"title":""}`, token); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid put: expected 422, got %d", rec.Code)
	}
	if rec := do(e, http.MethodPut, "/books/9", `{"title":"x","author":"y","published_year":1}`, token); rec.Code != http.StatusNotFound {
		t.Errorf("put missing: expected 404, got %d", rec.Code)
	}

	if rec := do(e, http.MethodDelete, "/books/1", "", token); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/books/1", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", rec.Code)
	}
}

func TestScenario_IdempotentCreate(t *testing.T) {
	e := newTestRouter(t, nil)
	mustCreateUser(t, e, "alice", "pw")
	token := mustLogin(t, e, "alice", "pw")

	book := `{"title":"Dune","author":"Frank Herbert","published_year":1965}`
	first := do(e, http.MethodPost, "/books/", book, token, "Idempotency-Key", "abc")
	second := do(e, http.MethodPost, "/books/", book, token, "Idempotency-Key", "abc")

	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("expected two 201s, got %d and %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay differs: %q vs %q", first.Body.String(), second.Body.String())
	}

	var books []map[string]any
	_ = json.Unmarshal(do(e, http.MethodGet, "/books/", "", "").Body.Bytes(), &books)
	if len(books) != 1 {
		t.Fatalf("expected one stored book, got %d", len(books))
	}
}

func TestScenario_AnonymousSignupsShareKey(t *testing.T) {
	e := newTestRouter(t, nil)

	alice := `{"username":"alice","password":"pw","email":"alice@example.com"}`
	first := do(e, http.MethodPost, "/users/", alice, "", "Idempotency-Key", "1")
	if first.Code != http.StatusCreated {
		t.Fatalf("alice: expected 201, got %d: %s", first.Code, first.Body.String())
	}

	mallory := `{"username":"mallory","password":"pw2"}`
	second := do(e, http.MethodPost, "/users/", mallory, "", "Idempotency-Key", "1")
	if second.Code != http.StatusUnprocessableEntity {
		t.Fatalf("mallory: expected 422, got %d: %s", second.Code, second.Body.String())
	}
	if strings.Contains(second.Body.String(), "alice") {
		t.Fatalf("another caller's account leaked: %s", second.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "" {
		t.Errorf("mismatched request must not be replayed")
	}

	// A genuine retry of the same signup still replays.
	retry := do(e, http.MethodPost, "/users/", alice, "", "Idempotency-Key", "1")
	if retry.Code != http.StatusCreated || retry.Body.String() != first.Body.String() {
		t.Fatalf("retry: expected identical 201, got %d: %s", retry.Code, retry.Body.String())
	}

	// Without the reused key mallory signs up normally.
	mustCreateUser(t, e, "mallory", "pw2")
	mustLogin(t, e, "mallory", "pw2")
}

func TestScenario_BlankEmail(t *testing.T) {
	e := newTestRouter(t, nil)

	for _, name := range []string{"alice", "bob"} {
		rec := do(e, http.MethodPost, "/users/", `{"username":"`+name+`","password":"pw","email":""}`, "")
		if rec.Code != http.StatusCreated {
			t.Fatalf("%s: expected 201, got %d: %s", name, rec.Code, rec.Body.String())
		}
		if got := decode(t, rec)["email"]; got != nil {
			t.Fatalf("%s: blank email must be stored as none, got %v", name, got)
		}
	}

	token := mustLogin(t, e, "alice", "pw")
	rec := do(e, http.MethodPatch, "/users/1", `{"email":"alice@example.com"}`, token)
	if rec.Code != http.StatusOK || decode(t, rec)["email"] != "alice@example.com" {
		t.Fatalf("set email: got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(e, http.MethodPatch, "/users/1", `{"email":""}`, token)
	if rec.Code != http.StatusOK || decode(t, rec)["email"] != nil {
		t.Fatalf("clear email: got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestOperationalEndpoints(t *testing.T) {
	e := newTestRouter(t, map[string]handler.Pinger{"store": fakePinger{}})

	if rec := do(e, http.MethodGet, "/", "", ""); rec.Code != http.StatusOK || decode(t, rec)["message"] == nil {
		t.Errorf("root: unexpected %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Errorf("liveness: expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/health/ready", "", ""); rec.Code != http.StatusOK {
		t.Errorf("readiness: expected 200, got %d", rec.Code)
	}

	do(e, http.MethodGet, "/books/", "", "")
	metrics := do(e, http.MethodGet, "/metrics", "", "")
	if metrics.Code != http.StatusOK || !strings.Contains(metrics.Body.String(), "requests_total") {
		t.Errorf("metrics: expected request counters, got %d", metrics.Code)
	}
}

func TestReadinessDegraded(t *testing.T) {
	e := newTestRouter(t, map[string]handler.Pinger{
		"store": fakePinger{},
		"redis": fakePinger{err: context.DeadlineExceeded},
	})

	rec := do(e, http.MethodGet, "/health/ready", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	body := decode(t, rec)
	deps := body["dependencies"].(map[string]any)
	if deps["redis"].(map[string]any)["status"] != "unhealthy" || deps["store"].(map[string]any)["status"] != "ok" {
		t.Errorf("unexpected dependency report: %v", deps)
	}
}
