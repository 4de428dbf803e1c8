package audit

import "context"

type RequestMeta struct {
	IPAddress string
	UserAgent string
	RequestID string
}

type metaKey struct{}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

func RequestMetaFrom(ctx context.Context) RequestMeta {
	if ctx == nil {
		return RequestMeta{}
	}
	meta, _ := ctx.Value(metaKey{}).(RequestMeta)
	return meta
}

// UserRef is a convenience for the nullable actor of an Event.
func UserRef(id int) *int {
	if id <= 0 {
		return nil
	}
	return &id
}
