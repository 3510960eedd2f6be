package api

import (
	"context"
	"net/http"

	"github.com/stitch-ai/stitch-go-sdk/core"
)

// MarketplaceService browses and buys published memory spaces.
type MarketplaceService struct {
	c *Client
}

// ListSpaces lists marketplace spaces of the given type. userID is optional.
func (s *MarketplaceService) ListSpaces(ctx context.Context, kind, userID string, opts core.ListOptions) (*core.Response, error) {
	q := with(opts.Params(), map[string]string{"userId": userID})
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/marketplace/memory-space/" + segment(kind),
		query:  q,
	})
}

// ListMemory lists a space on the marketplace. body is sent as-is.
func (s *MarketplaceService) ListMemory(ctx context.Context, userID, repo string, body any) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/marketplace/memory-space/" + segment(repo) + "/list",
		query:  s.c.auth(userID),
		body:   body,
	})
}

// Purchase buys a listed space. body is sent as-is.
func (s *MarketplaceService) Purchase(ctx context.Context, userID string, body any) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/marketplace/memory-space/purchase",
		query:  s.c.auth(userID),
		body:   body,
	})
}
