package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/scraploop/scraploop-backend/api/responses"
	pkgerrors "github.com/scraploop/scraploop-backend/pkg/errors"
	"github.com/scraploop/scraploop-backend/pkg/logger"
	pkgredis "github.com/scraploop/scraploop-backend/pkg/redis"
)

// Mutating order endpoints replay within a day; money-moving wallet
// endpoints keep their records a full week so late retries from payment
// providers still hit the stored reply.
const (
	orderReplayTTL  = 24 * time.Hour
	walletReplayTTL = 7 * 24 * time.Hour
)

// replayRoutes maps "METHOD pattern" to the TTL of its stored reply.
// Patterns are chi route patterns, so path params appear as {id}.
var replayRoutes = map[string]time.Duration{
	"POST /api/v1/orders":                   orderReplayTTL,
	"POST /api/v1/orders/":                  orderReplayTTL,
	"POST /api/v1/orders/{orderId}/accept":  orderReplayTTL,
	"POST /api/v1/orders/{orderId}/forward": orderReplayTTL,
	"POST /api/v1/orders/{orderId}/cancel":  orderReplayTTL,
	"POST /api/v1/wallet/recharge/create":   walletReplayTTL,
	"POST /api/v1/wallet/recharge/verify":   walletReplayTTL,
	"POST /api/v1/wallet/withdraw":          walletReplayTTL,
	"POST /api/v1/wallet/apply-coupon":      walletReplayTTL,
}

// storedReply is the serialized response kept in Redis under the
// idempotency key. RequestHash pins the key to one request body.
type storedReply struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency makes registered mutating endpoints safe to retry. The first
// request through records its response; a retry with the same
// Idempotency-Key and body replays that response, and a retry with the same
// key but a different body is rejected.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, guarded := replayTTL(r)
			if !guarded || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			clientKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if clientKey == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			sum := sha256.Sum256(body)
			requestHash := base64.StdEncoding.EncodeToString(sum[:])
			scope := strings.Join([]string{UserIDFromContext(r.Context()), r.Method, r.URL.Path}, "|")
			key := store.IdempotencyKey(scope, clientKey)

			raw, err := store.Get(r.Context(), key)
			switch {
			case err != nil && !errors.Is(err, redis.Nil):
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			case raw != "":
				var reply storedReply
				if err := json.Unmarshal([]byte(raw), &reply); err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
					return
				}
				if reply.RequestHash != requestHash {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				replay(w, reply)
				return
			}

			rec := &replyRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			reply := storedReply{
				Status:      rec.status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				reply.Headers = map[string]string{"Content-Type": ct}
			}

			payload, err := json.Marshal(reply)
			if err != nil {
				if logg != nil {
					logg.Error(r.Context(), "marshal idempotency record", err)
				}
				return
			}
			// SetNX so a concurrent duplicate never overwrites the reply the
			// winner stored.
			if _, err := store.SetNX(r.Context(), key, string(payload), ttl); err != nil && logg != nil {
				logg.Error(r.Context(), "persist idempotency record", err)
			}
		})
	}
}

// replayTTL reports whether the request's route is idempotency-guarded and
// for how long its reply is kept.
func replayTTL(r *http.Request) (time.Duration, bool) {
	pattern := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			pattern = p
		}
	}
	ttl, ok := replayRoutes[r.Method+" "+pattern]
	return ttl, ok
}

func replay(w http.ResponseWriter, reply storedReply) {
	if ct := reply.Headers["Content-Type"]; ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(reply.Status)
	if decoded, err := base64.StdEncoding.DecodeString(reply.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

// replyRecorder tees the response so it can be stored after the handler
// runs.
type replyRecorder struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *replyRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *replyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
