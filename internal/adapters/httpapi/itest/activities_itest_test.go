package itest

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestActivities_ListHasCatalog(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			s := newTestServer(t, b)
			list := s.listActivities(t)

			chess, ok := list["Chess Club"]
			if !ok {
				t.Fatalf("missing Chess Club: %v", list)
			}
			if chess.MaxParticipants != 12 || chess.Schedule != "Fridays, 3:30 PM - 5:00 PM" {
				t.Fatalf("chess=%+v", chess)
			}
			for _, name := range []string{"Programming Class", "Gym Class", "Soccer Team", "Basketball Team", "Drama Club", "Art Club", "Debate Team", "Robotics Club"} {
				if _, ok := list[name]; !ok {
					t.Fatalf("missing %q", name)
				}
			}
		})
	}
}

func TestActivities_SignupAndUnregisterRoundTrip(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			s := newTestServer(t, b)
			email := uniqueEmail("roundtrip")

			status, body, _ := s.do(t, http.MethodPost, signupPath("Chess Club", email, "Round", "Trip"), nil)
			if status != http.StatusOK {
				t.Fatalf("signup status=%d body=%s", status, string(body))
			}
			if !containsEmail(s.listActivities(t)["Chess Club"], email) {
				t.Fatalf("participant missing after signup")
			}

			status, body, _ = s.do(t, http.MethodPost, signupPath("Chess Club", strings.ToUpper(email[:1])+email[1:], "Round", "Trip"), nil)
			requireError(t, status, body, http.StatusBadRequest, "ALREADY_SIGNED_UP", "Student already signed up for this activity")

			status, body, _ = s.do(t, http.MethodDelete, unregisterPath("Chess Club", email), nil)
			if status != http.StatusOK {
				t.Fatalf("unregister status=%d body=%s", status, string(body))
			}
			if containsEmail(s.listActivities(t)["Chess Club"], email) {
				t.Fatalf("participant still listed after unregister")
			}

			status, body, _ = s.do(t, http.MethodDelete, unregisterPath("Chess Club", email), nil)
			requireError(t, status, body, http.StatusNotFound, "NOT_REGISTERED", "Student not registered for this activity")
		})
	}
}

func TestActivities_SignupRejectsOtherDomains(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			s := newTestServer(t, b)
			status, body, _ := s.do(t, http.MethodPost, signupPath("Chess Club", "baduser@example.com", "Bad", "User"), nil)
			requireError(t, status, body, http.StatusBadRequest, "INVALID_EMAIL_DOMAIN", "Email must be a Merginton account ending with @mergington.com")
		})
	}
}

func TestActivities_IdempotentSignup(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			s := newTestServer(t, b)
			key := http.Header{"Idempotency-Key": {"itest-" + uniqueEmail("key")}}
			email := uniqueEmail("idem")

			status, first, _ := s.do(t, http.MethodPost, signupPath("Drama Club", email, "Idem", "Potent"), key)
			if status != http.StatusOK {
				t.Fatalf("first status=%d body=%s", status, string(first))
			}
			status, second, h := s.do(t, http.MethodPost, signupPath("Drama Club", email, "Idem", "Potent"), key)
			if status != http.StatusOK || h.Get("Idempotent-Replay") != "true" || string(second) != string(first) {
				t.Fatalf("replay status=%d header=%q body=%s", status, h.Get("Idempotent-Replay"), string(second))
			}

			status, body, _ := s.do(t, http.MethodPost, signupPath("Drama Club", uniqueEmail("other"), "O", "T"), key)
			requireError(t, status, body, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload")
		})
	}
}

func TestSignupPage_EndToEnd(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			s := newTestServer(t, b)

			status, page := s.postForm(t, "/ui/", nil)
			if status != http.StatusMethodNotAllowed {
				t.Fatalf("POST /ui/ status=%d", status)
			}

			req, _ := http.NewRequest(http.MethodGet, s.url("/ui/"), nil)
			resp, err := s.client.Do(req)
			if err != nil {
				t.Fatalf("GET /ui/: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("GET /ui/ status=%d", resp.StatusCode)
			}

			status, page = s.postForm(t, "/ui/signup", url.Values{
				"first_name": {"Page"},
				"last_name":  {"User"},
				"email":      {"page@example.com"},
				"activity":   {"Chess Club"},
			})
			if status != http.StatusOK || !strings.Contains(page, "Email must end with @mergington.com") {
				t.Fatalf("local validation page status=%d:\n%s", status, page)
			}

			email := uniqueEmail("page")
			status, page = s.postForm(t, "/ui/signup", url.Values{
				"first_name": {"Page"},
				"last_name":  {"User"},
				"email":      {email},
				"activity":   {"Chess Club"},
			})
			if status != http.StatusOK {
				t.Fatalf("signup page status=%d", status)
			}
			if !strings.Contains(page, "Signed up Page User &lt;"+email+"&gt; for Chess Club") {
				t.Fatalf("success message missing:\n%s", page)
			}
			if !strings.Contains(page, "Page User — "+email) {
				t.Fatalf("new participant row missing:\n%s", page)
			}

			resp, err = s.browser.Get(s.url("/ui/"))
			if err != nil {
				t.Fatalf("reload /ui/: %v", err)
			}
			reloaded, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if strings.Contains(string(reloaded), "Signed up Page User") || !strings.Contains(string(reloaded), "Page User — "+email) {
				t.Fatalf("reload should list %s without the flash message:\n%s", email, reloaded)
			}

			status, page = s.postForm(t, "/ui/unregister", url.Values{"activity": {"Chess Club"}, "email": {email}})
			if status != http.StatusOK || strings.Contains(page, email) {
				t.Fatalf("unregister page status=%d still lists %s", status, email)
			}

			status, page = s.postForm(t, "/ui/unregister", url.Values{"activity": {"Chess Club"}, "email": {email}})
			if status != http.StatusOK || !strings.Contains(page, "Student not registered for this activity") {
				t.Fatalf("failed unregister page status=%d:\n%s", status, page)
			}
		})
	}
}
