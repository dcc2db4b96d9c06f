package itest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mergington/activities/internal/adapters/apiclient"
	"github.com/mergington/activities/internal/adapters/httpapi"
	memactivityrepo "github.com/mergington/activities/internal/adapters/memory/activityrepo"
	memclock "github.com/mergington/activities/internal/adapters/memory/clock"
	memidempotency "github.com/mergington/activities/internal/adapters/memory/idempotency"
	pgactivityrepo "github.com/mergington/activities/internal/adapters/postgres/activityrepo"
	pgidempotency "github.com/mergington/activities/internal/adapters/postgres/idempotency"
	postgres_testutil "github.com/mergington/activities/internal/adapters/postgres/testutil"
	"github.com/mergington/activities/internal/adapters/web"
	"github.com/mergington/activities/internal/app/activities"
	"github.com/mergington/activities/internal/app/viewcontroller"
	activityrepoport "github.com/mergington/activities/internal/ports/out/activityrepo"
	idempotencyport "github.com/mergington/activities/internal/ports/out/idempotency"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
	// browser keeps cookies so the signup page redirects carry their result.
	browser *http.Client
}

// newTestServer runs the API and the signup view on one server, with the view talking
// to the API over HTTP as it does in production.
func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var (
		repo      activityrepoport.Repository
		idemStore idempotencyport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		repo = pgactivityrepo.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool, time.Hour)
	case backendMemory:
		repo = memactivityrepo.NewRepo()
		idemStore = memidempotency.NewStore(clk, time.Hour)
	default:
		t.Fatalf("unknown backend: %s", b)
	}
	if err := repo.Seed(context.Background(), activities.DefaultCatalog()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	var handler http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := apiclient.New(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	view := viewcontroller.New(client, nil)
	ui := web.NewHandler(view, httpapi.UIPath, nil)

	api := httpapi.NewServer(activities.NewService(repo, nil), idemStore, clk, nil)
	handler = httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{UI: ui.Routes()})

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
		browser: &http.Client{Jar: jar, Transport: srv.Client().Transport},
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) do(t *testing.T, method string, path string, header http.Header) (int, []byte, http.Header) {
	t.Helper()

	req, err := http.NewRequest(method, s.url(path), nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

func (s *testServer) postForm(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()

	resp, err := s.browser.PostForm(s.url(path), form)
	if err != nil {
		t.Fatalf("post form: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(out)
}

type errorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

type participant struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type activity struct {
	Description     string        `json:"description"`
	Schedule        string        `json:"schedule"`
	MaxParticipants int           `json:"max_participants"`
	Participants    []participant `json:"participants"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireError(t *testing.T, status int, body []byte, wantStatus int, wantCode, wantDetail string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Code != wantCode || got.Detail != wantDetail {
		t.Fatalf("error=%+v want code=%q detail=%q", got, wantCode, wantDetail)
	}
}

// uniqueEmail keeps tests independent when they share a database.
func uniqueEmail(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8] + "@mergington.com"
}

func signupPath(activity, email, first, last string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("first_name", first)
	q.Set("last_name", last)
	return "/activities/" + url.PathEscape(activity) + "/signup?" + q.Encode()
}

func unregisterPath(activity, email string) string {
	return "/activities/" + url.PathEscape(activity) + "/participants?email=" + url.QueryEscape(email)
}

func (s *testServer) listActivities(t *testing.T) map[string]activity {
	t.Helper()
	status, body, _ := s.do(t, http.MethodGet, "/activities", nil)
	if status != http.StatusOK {
		t.Fatalf("list status=%d body=%s", status, string(body))
	}
	return mustUnmarshal[map[string]activity](t, body)
}

func containsEmail(a activity, email string) bool {
	for _, p := range a.Participants {
		if strings.EqualFold(p.Email, email) {
			return true
		}
	}
	return false
}
