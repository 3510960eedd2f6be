package api

import (
	"context"
	"net/http"

	"github.com/stitch-ai/stitch-go-sdk/core"
)

// UserService reads account data and manages API keys.
type UserService struct {
	c *Client
}

func (s *UserService) Get(ctx context.Context, userID string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/user",
		query:  map[string]string{"userId": s.c.user(userID)},
	})
}

func (s *UserService) keyParams(userID, hashedID string) map[string]string {
	return map[string]string{"userId": s.c.user(userID), "hashedId": hashedID}
}

// APIKeys lists the keys of the wallet identified by hashedID.
func (s *UserService) APIKeys(ctx context.Context, userID, hashedID string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/user/api-key",
		query:  s.keyParams(userID, hashedID),
	})
}

func (s *UserService) CreateAPIKey(ctx context.Context, userID, hashedID, name string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/user/api-key",
		query:  s.keyParams(userID, hashedID),
		body:   map[string]string{"name": name},
	})
}

func (s *UserService) DeleteAPIKey(ctx context.Context, userID, hashedID, secret string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/user/api-key/" + segment(secret),
		query:  s.keyParams(userID, hashedID),
	})
}

// Stat returns dashboard counters.
func (s *UserService) Stat(ctx context.Context, userID string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/user/dashboard/stat",
		query:  map[string]string{"userId": s.c.user(userID)},
	})
}

func (s *UserService) Histories(ctx context.Context, userID string, opts core.ListOptions) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/user/dashboard/histories",
		query:  with(opts.Params(), map[string]string{"userId": s.c.user(userID)}),
	})
}

// Memory reads the user's memories. memoryNames is a comma separated filter.
// An empty apiKey uses the client's key.
func (s *UserService) Memory(ctx context.Context, userID, apiKey, memoryNames string) (*core.Response, error) {
	if apiKey == "" {
		apiKey = s.c.cfg.APIKey
	}
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/user/memory",
		query: with(nil, map[string]string{
			"userId":      s.c.user(userID),
			"apiKey":      apiKey,
			"memoryNames": memoryNames,
		}),
	})
}

func (s *UserService) Purchases(ctx context.Context, userID string, opts core.ListOptions) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/user/marketplace/purchases",
		query:  with(opts.Params(), map[string]string{"userId": s.c.user(userID)}),
	})
}
