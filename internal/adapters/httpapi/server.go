package httpapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/mergington/activities/internal/app/activities"
	"github.com/mergington/activities/internal/domain"
	clockport "github.com/mergington/activities/internal/ports/out/clock"
	"github.com/mergington/activities/internal/ports/out/idempotency"
)

const (
	signupRoute     = "/activities/{activity_name}/signup"
	unregisterRoute = "/activities/{activity_name}/participants"

	idempotencyKeyHeader    = "Idempotency-Key"
	idempotentReplayHeader  = "Idempotent-Replay"
	idempotencyKeyReuseCode = "IDEMPOTENCY_KEY_REUSE"
)

// Server is the HTTP adapter for the activities API.
type Server struct {
	Activities *activities.Service
	Idem       idempotency.Store
	Clock      clockport.Clock
	Log        *zap.Logger
}

func NewServer(svc *activities.Service, idem idempotency.Store, clk clockport.Clock, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		Activities: svc,
		Idem:       idem,
		Clock:      clk,
		Log:        log,
	}
}

func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	as, err := s.Activities.ListActivities(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activitiesResponseFromDomain(as))
}

func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, ok := activityNameParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var in activities.SignupInput
	if err := runtime.BindQueryParameter("form", true, true, "email", q, &in.Email); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid format for parameter email", map[string]any{"email": err.Error()})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "first_name", q, &in.FirstName); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid format for parameter first_name", map[string]any{"first_name": err.Error()})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "last_name", q, &in.LastName); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid format for parameter last_name", map[string]any{"last_name": err.Error()})
		return
	}

	// Idempotency handling:
	// - Replay if same key+route+request hash
	// - Reject if same key+route with a different request hash (409)
	var respFP *idempotency.Fingerprint
	if key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader)); key != "" && s.Idem != nil {
		fp := idempotency.Fingerprint{
			Key:      idempotency.Key(key),
			Method:   http.MethodPost,
			Route:    signupRoute,
			BodyHash: hashSignupRequest(name, in),
		}
		if marker, ok, err := s.Idem.Get(ctx, fp.Marker()); err != nil {
			s.writeAppError(w, r, err)
			return
		} else if ok {
			if string(marker.Body) != fp.BodyHash {
				writeError(w, r, http.StatusConflict, idempotencyKeyReuseCode, "idempotency key reuse with different payload", nil)
				return
			}
		} else if err := s.Idem.Put(ctx, fp.Marker(), idempotency.Record{
			ContentType: "text/plain",
			Body:        []byte(fp.BodyHash),
			CreatedAt:   s.now(),
		}); err != nil {
			s.Log.Warn("store idempotency marker", zap.String("key", key), zap.Error(err))
		}

		if rec, ok, err := s.Idem.Get(ctx, fp); err != nil {
			s.writeAppError(w, r, err)
			return
		} else if ok && !rec.IsMarker() {
			w.Header().Set("Content-Type", rec.ContentType)
			w.Header().Set(idempotentReplayHeader, "true")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.Body)
			return
		}
		respFP = &fp
	}

	res, err := s.Activities.Signup(ctx, name, in)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	resp := MessageResponse{Message: res.Message}
	// Store successful response for replay.
	if respFP != nil {
		if b, err := json.Marshal(resp); err == nil {
			if err := s.Idem.Put(ctx, *respFP, idempotency.Record{
				StatusCode:  http.StatusOK,
				ContentType: "application/json",
				Body:        append(b, '\n'),
				CreatedAt:   s.now(),
			}); err != nil {
				s.Log.Warn("store idempotent response", zap.String("key", string(respFP.Key)), zap.Error(err))
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) Unregister(w http.ResponseWriter, r *http.Request) {
	name, ok := activityNameParam(w, r)
	if !ok {
		return
	}
	var email string
	if err := runtime.BindQueryParameter("form", true, true, "email", r.URL.Query(), &email); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid format for parameter email", map[string]any{"email": err.Error()})
		return
	}

	res, err := s.Activities.Unregister(r.Context(), name, email)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: res.Message})
}

func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	if ae := (*activities.Error)(nil); errors.As(err, &ae) {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	if errors.Is(err, context.Canceled) {
		// Client went away; nothing useful to send.
		return
	}
	s.Log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}

func (s *Server) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

// activityNameParam resolves the {activity_name} segment. chi matches on the raw path
// when it differs from the decoded one (e.g. an encoded "/"), in which case the segment
// is still escaped.
func activityNameParam(w http.ResponseWriter, r *http.Request) (domain.ActivityName, bool) {
	raw := chi.URLParam(r, "activity_name")
	if r.URL.RawPath != "" {
		v, err := url.PathUnescape(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid format for parameter activity_name", nil)
			return "", false
		}
		raw = v
	}
	if raw == "" {
		writeError(w, r, http.StatusNotFound, "ACTIVITY_NOT_FOUND", "Activity not found", nil)
		return "", false
	}
	return domain.ActivityName(raw), true
}

func hashSignupRequest(name domain.ActivityName, in activities.SignupInput) string {
	// Canonicalize fields that have normalization semantics before hashing.
	canon := struct {
		Activity  string `json:"activity"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}{
		Activity:  string(name),
		Email:     strings.ToLower(domain.NormalizeEmail(in.Email)),
		FirstName: domain.NormalizeHumanName(in.FirstName),
		LastName:  domain.NormalizeHumanName(in.LastName),
	}
	raw, _ := json.Marshal(canon)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
