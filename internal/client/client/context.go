package client

import "context"

type accessTokenKey struct{}

// WithAccessToken makes requests issued with ctx use token instead of the
// client's current one. An empty token is ignored.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

func accessTokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey{}).(string)
	return token, ok && token != ""
}
