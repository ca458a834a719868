package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"

	// How long a request may hold the in-progress marker before another attempt can take over.
	provisionalLockTTL = 60 * time.Second
	storeTimeout       = 2 * time.Second
	maxKeyLength       = 255
	maxBodyBytes       = 1 << 20
	idempotencyPrefix  = "idemp:"
)

type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	CreatedAt   time.Time `json:"created_at"`
}

type respRecorder struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (r *respRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *respRecorder) WriteHeader(statusCode int) {
	r.code = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// Idempotency replays the stored response of a mutating request that carries
// an Idempotency-Key already seen within ttl. Reusing a key with a different
// body, or while the first request is still running, yields 409. Requests
// without the header pass through. Server errors are not stored so the client
// can retry with the same key.
func Idempotency(rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("component", "IdempotencyMiddleware")

	return func(next http.Handler) http.Handler {
		if rdb == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			idemKey := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
			if idemKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(idemKey) > maxKeyLength {
				writeError(w, http.StatusBadRequest, "Idempotency-Key is too long")
				return
			}

			var body []byte
			if r.Body != nil {
				var err error
				if body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes)); err != nil {
					var tooLarge *http.MaxBytesError
					if errors.As(err, &tooLarge) {
						writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
						return
					}
					writeError(w, http.StatusBadRequest, "Failed to read request body")
					return
				}
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			bhash := bodyHash(body)

			key := buildKey(r, idemKey)
			logCtx := logger.With("key", key)

			ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
			defer cancel()

			ok, err := provisionalSet(ctx, rdb, key, idempEntry{InProgress: true, BodySHA256: bhash, CreatedAt: time.Now().UTC()})
			if err != nil {
				logCtx.ErrorContext(r.Context(), "Idempotency store unavailable", "error", err)
				writeError(w, http.StatusServiceUnavailable, "Idempotency store unavailable")
				return
			}
			if !ok {
				cur, err := loadEntry(ctx, rdb, key)
				if err != nil {
					logCtx.WarnContext(r.Context(), "Failed to load idempotency entry", "error", err)
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					writeError(w, http.StatusConflict, "Idempotency-Key reused with a different request body")
					return
				}
				if !cur.InProgress && cur.Code != 0 {
					logCtx.InfoContext(r.Context(), "Replaying stored response", "status", cur.Code)
					replay(w, cur)
					return
				}
				writeError(w, http.StatusConflict, "A request with this Idempotency-Key is already in progress")
				return
			}

			rec := &respRecorder{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(rec, r)

			// The request context may already be done; the outcome must still be recorded.
			saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(r.Context()), storeTimeout)
			defer saveCancel()

			if rec.code >= http.StatusInternalServerError {
				if err := rdb.Del(saveCtx, key).Err(); err != nil {
					logCtx.WarnContext(r.Context(), "Failed to release idempotency key", "error", err)
				}
				return
			}
			final := idempEntry{
				Code:        rec.code,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.buf.Bytes(),
				BodySHA256:  bhash,
				CreatedAt:   time.Now().UTC(),
			}
			if err := saveFinal(saveCtx, rdb, key, final, ttl); err != nil {
				logCtx.WarnContext(r.Context(), "Failed to store idempotent response", "error", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, e idempEntry) {
	if e.ContentType != "" {
		w.Header().Set("Content-Type", e.ContentType)
	}
	w.Header().Set(HeaderReplayed, "true")
	w.WriteHeader(e.Code)
	_, _ = w.Write(e.Body)
}

func bodyHash(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

func buildKey(r *http.Request, idemKey string) string {
	path := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		path = rctx.RoutePattern()
	}
	scope := ""
	if sub, ok := SubjectFromContext(r.Context()); ok {
		scope = sub + ":"
	}
	return idempotencyPrefix + strings.ToLower(r.Method) + ":" + path + ":" + scope + idemKey
}

func provisionalSet(ctx context.Context, rdb redis.Cmdable, key string, entry idempEntry) (bool, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return false, err
	}
	return rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func loadEntry(ctx context.Context, rdb redis.Cmdable, key string) (idempEntry, error) {
	var e idempEntry
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return e, nil
		}
		return e, err
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return idempEntry{}, err
	}
	return e, nil
}

func saveFinal(ctx context.Context, rdb redis.Cmdable, key string, entry idempEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, payload, ttl).Err()
}
