package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	SessionIDKey ctxKey = "session_id"
)

// WithRequestID tags ctx so that every timed operation below it logs the id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// WithSessionID tags ctx with the analysis session being worked on.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}

// Time logs the duration of an operation, and its error if errp points to one.
//
//	defer obs.Time(ctx, "op")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID := RequestID(ctx)
	sessionID := SessionID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		prefix := "req_id=" + reqID
		if sessionID != "" {
			prefix += " session=" + sessionID
		}

		if errp != nil && *errp != nil {
			log.Printf("%s op=%s dur=%dms err=%v", prefix, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("%s op=%s dur=%dms", prefix, name, dur.Milliseconds())
	}
}
