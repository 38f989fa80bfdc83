package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/studiosite/studiosite-backend/api/responses"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/logger"
)

const (
	idempotencyHeader       = "Idempotency-Key"
	idempotentReplayHeader  = "Idempotent-Replay"
	maxIdempotencyKeyLength = 255

	// DefaultIdempotencyTTL is how long a completed response is replayed.
	DefaultIdempotencyTTL = 24 * time.Hour
	// pendingIdempotencyTTL bounds how long a crashed request blocks its key.
	pendingIdempotencyTTL = time.Minute
)

const (
	replayPending  = "pending"
	replayComplete = "complete"
)

// replayedHeaders are stored with a completed response. Set-Cookie is kept so a
// retried registration still receives its session.
var replayedHeaders = []string{"Content-Type", "Set-Cookie"}

// IdempotencyStore is the Redis surface behind Idempotency.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

type replayRecord struct {
	State       string              `json:"state"`
	RequestHash string              `json:"request_hash"`
	Status      int                 `json:"status,omitempty"`
	Body        string              `json:"body,omitempty"`
	Headers     map[string][]string `json:"headers,omitempty"`
}

// Idempotency replays the first response for a repeated Idempotency-Key on the
// same caller and path. Requests without the header are served normally. A key
// reused with a different body is rejected, as is a key whose first request is
// still running. Server errors are not stored so the client can retry them.
// Store failures fall through to the handler.
func Idempotency(store IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if id == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if len(id) > maxIdempotencyKeyLength {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key must be at most 255 characters"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashRequest(r.Method, r.URL.Path, body)
			key := store.IdempotencyKey(idempotencyScope(r), id)

			pending, _ := json.Marshal(replayRecord{State: replayPending, RequestHash: requestHash})
			claimed, err := store.SetNX(ctx, key, string(pending), pendingIdempotencyTTL)
			if err != nil {
				logIdempotencyError(ctx, logg, "idempotency.claim_failed", err)
				next.ServeHTTP(w, r)
				return
			}
			if !claimed {
				replayExisting(w, r, next, store, key, requestHash, logg)
				return
			}

			capture := &responseCapture{statusRecorder: statusRecorder{ResponseWriter: w}}
			next.ServeHTTP(capture, r)

			storeCtx := context.WithoutCancel(ctx)
			status := capture.statusCode()
			if status >= http.StatusInternalServerError {
				if err := store.Del(storeCtx, key); err != nil {
					logIdempotencyError(ctx, logg, "idempotency.release_failed", err)
				}
				return
			}
			record := replayRecord{
				State:       replayComplete,
				RequestHash: requestHash,
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
				Headers:     pickHeaders(capture.Header()),
			}
			payload, err := json.Marshal(record)
			if err != nil {
				logIdempotencyError(ctx, logg, "idempotency.encode_failed", err)
				return
			}
			if err := store.Set(storeCtx, key, string(payload), ttl); err != nil {
				logIdempotencyError(ctx, logg, "idempotency.persist_failed", err)
			}
		})
	}
}

func replayExisting(w http.ResponseWriter, r *http.Request, next http.Handler, store IdempotencyStore, key, requestHash string, logg *logger.Logger) {
	ctx := r.Context()
	stored, err := store.Get(ctx, key)
	if err != nil {
		// the pending marker expired between the two calls
		if !errors.Is(err, redis.Nil) {
			logIdempotencyError(ctx, logg, "idempotency.lookup_failed", err)
		}
		next.ServeHTTP(w, r)
		return
	}

	var record replayRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		logIdempotencyError(ctx, logg, "idempotency.decode_failed", err)
		next.ServeHTTP(w, r)
		return
	}
	if record.RequestHash != requestHash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "Idempotency-Key was already used with a different request"))
		return
	}
	if record.State != replayComplete {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRequestInFlight, "A request with this Idempotency-Key is still being processed"))
		return
	}

	body, err := base64.StdEncoding.DecodeString(record.Body)
	if err != nil {
		logIdempotencyError(ctx, logg, "idempotency.decode_failed", err)
		next.ServeHTTP(w, r)
		return
	}
	for name, values := range record.Headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.Header().Set(idempotentReplayHeader, "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write(body)
}

// idempotencyScope keeps keys from different callers and paths apart.
func idempotencyScope(r *http.Request) string {
	subject := "anonymous"
	if id := IdentityFromContext(r.Context()); id != nil && id.SubjectID != "" {
		subject = id.SubjectID
	}
	return strings.Join([]string{subject, r.Method, r.URL.Path}, "|")
}

func hashRequest(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func pickHeaders(h http.Header) map[string][]string {
	out := map[string][]string{}
	for _, name := range replayedHeaders {
		if values := h.Values(name); len(values) > 0 {
			out[name] = append([]string(nil), values...)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// responseCapture tees the response body so it can be stored for replay.
type responseCapture struct {
	statusRecorder
	body bytes.Buffer
}

func (c *responseCapture) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.statusRecorder.Write(b)
}

func logIdempotencyError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
