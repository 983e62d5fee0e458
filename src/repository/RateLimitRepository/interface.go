package RateLimitRepository

import "context"

type Interface interface {
	Allow(c context.Context, clientKey string, limit int) bool
}
