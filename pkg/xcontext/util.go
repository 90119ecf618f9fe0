package xcontext

import "context"

// WithViewerToken stores the session JWT of the local viewer.
func WithViewerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, viewerKey{}, token)
}

func ViewerToken(ctx context.Context) string {
	token, ok := ctx.Value(viewerKey{}).(string)
	if !ok {
		return ""
	}

	return token
}
