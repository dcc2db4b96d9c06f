package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mergington/activities/internal/domain"
	"github.com/mergington/activities/internal/ports/out/activitiesapi"
)

// Client talks to the activities API over HTTP. It sets no timeout of its own.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ activitiesapi.Client = (*Client)(nil)

func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: strings.TrimRight(u.String(), "/"), http: httpClient}, nil
}

type activityBody struct {
	Description     string            `json:"description"`
	Schedule        string            `json:"schedule"`
	MaxParticipants int               `json:"max_participants"`
	Participants    []json.RawMessage `json:"participants"`
}

type participantBody struct {
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	FirstNameCamel string `json:"firstName"`
	LastNameCamel  string `json:"lastName"`
}

type messageBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (c *Client) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	body, err := c.do(ctx, http.MethodGet, "/activities", nil)
	if err != nil {
		return nil, err
	}
	if err := validateActivities(body); err != nil {
		return nil, err
	}
	return decodeActivities(body)
}

func (c *Client) Signup(ctx context.Context, activity domain.ActivityName, email, firstName, lastName string) (string, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("first_name", firstName)
	q.Set("last_name", lastName)
	return c.message(ctx, http.MethodPost, "/activities/"+url.PathEscape(string(activity))+"/signup", q)
}

func (c *Client) Unregister(ctx context.Context, activity domain.ActivityName, email string) (string, error) {
	q := url.Values{}
	q.Set("email", email)
	return c.message(ctx, http.MethodDelete, "/activities/"+url.PathEscape(string(activity))+"/participants", q)
}

func (c *Client) message(ctx context.Context, method, path string, q url.Values) (string, error) {
	body, err := c.do(ctx, method, path, q)
	if err != nil {
		return "", err
	}
	var m messageBody
	if err := json.Unmarshal(body, &m); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return m.Message, nil
}

// do performs the request and returns the body of a 2xx response. A non-2xx response with
// a JSON body is a *activitiesapi.StatusError; anything else is a transport or parse error.
func (c *Client) do(ctx context.Context, method, path string, q url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	var m messageBody
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decode error response (status %d): %w", resp.StatusCode, err)
	}
	return nil, &activitiesapi.StatusError{
		StatusCode: resp.StatusCode,
		Detail:     m.Detail,
		Message:    m.Message,
	}
}

// decodeActivities keeps activities in server order.
func decodeActivities(body []byte) ([]domain.Activity, error) {
	om := orderedmap.New[string, activityBody]()
	if err := json.Unmarshal(body, om); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}

	out := make([]domain.Activity, 0, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		name, ab := pair.Key, pair.Value
		a := domain.Activity{
			Name:            domain.ActivityName(name),
			Description:     ab.Description,
			Schedule:        ab.Schedule,
			MaxParticipants: ab.MaxParticipants,
			Participants:    make([]domain.Participant, 0, len(ab.Participants)),
		}
		for _, raw := range ab.Participants {
			p, err := decodeParticipant(raw)
			if err != nil {
				return nil, fmt.Errorf("decode activity %q: %w", name, err)
			}
			a.Participants = append(a.Participants, p)
		}
		out = append(out, a)
	}
	return out, nil
}

// decodeParticipant accepts an object or a bare email string.
func decodeParticipant(raw json.RawMessage) (domain.Participant, error) {
	if t := bytes.TrimSpace(raw); len(t) > 0 && t[0] == '"' {
		var email string
		if err := json.Unmarshal(t, &email); err != nil {
			return domain.Participant{}, err
		}
		return domain.ParticipantFromLegacyEmail(email), nil
	}
	var pb participantBody
	if err := json.Unmarshal(raw, &pb); err != nil {
		return domain.Participant{}, err
	}
	return domain.Participant{
		Email:     pb.Email,
		FirstName: firstNonEmpty(pb.FirstName, pb.FirstNameCamel),
		LastName:  firstNonEmpty(pb.LastName, pb.LastNameCamel),
	}, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
