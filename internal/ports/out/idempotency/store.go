package idempotency

import (
	"context"
	"time"
)

// Key is the Idempotency-Key request header value.
type Key string

// Fingerprint names one stored signup outcome: key, method, route template and the hash of
// the normalised request (activity, email, first and last name).
type Fingerprint struct {
	Key      Key
	Method   string
	Route    string
	BodyHash string
}

// Marker is the fingerprint that pins Key to the first request hash it was used with.
// Its record carries the hash as Body and a zero StatusCode.
func (fp Fingerprint) Marker() Fingerprint {
	fp.BodyHash = ""
	return fp
}

// Record is a stored response, replayed verbatim on retry.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// IsMarker reports whether rec only pins a request hash and has no response to replay.
func (r Record) IsMarker() bool { return r.StatusCode == 0 }

// Expired reports whether the record is older than ttl at now. ttl <= 0 never expires.
func (r Record) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 || r.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(r.CreatedAt) >= ttl
}

// Store persists signup outcomes keyed by Fingerprint.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
