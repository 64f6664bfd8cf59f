package httpadapter

import "context"

type ctxKey string

const ctxKeyRequestID ctxKey = "request-id"

// ----- request_id -----

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, rid)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(ctxKeyRequestID)
	s, ok := v.(string)
	return s, ok
}
