package api

import (
	"context"
	"net/http"

	"github.com/stitch-ai/stitch-go-sdk/core"
)

// SpaceService manages memory spaces as a whole.
type SpaceService struct {
	c *Client
}

func (s *SpaceService) Create(ctx context.Context, userID, repo string) (*core.Response, error) {
	return s.c.Memory.CreateSpace(ctx, userID, repo)
}

// Get returns a space. An empty ref leaves the choice to the service.
func (s *SpaceService) Get(ctx context.Context, userID, repo, ref string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/memory-space/" + segment(repo),
		query:  with(s.c.auth(userID), map[string]string{"ref": ref}),
	})
}

func (s *SpaceService) Delete(ctx context.Context, userID, repo string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/memory-space/" + segment(repo),
		query:  s.c.auth(userID),
	})
}

// Clone copies sourceOwnerID's space sourceName into repo.
func (s *SpaceService) Clone(ctx context.Context, userID, repo, sourceName, sourceOwnerID string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/memory-space/clone",
		query:  s.c.auth(userID),
		body: map[string]string{
			"repository":    repo,
			"sourceName":    sourceName,
			"sourceOwnerId": sourceOwnerID,
		},
	})
}

func (s *SpaceService) History(ctx context.Context, userID, repo string) (*core.Response, error) {
	return s.c.Memory.ListMemories(ctx, userID, repo)
}
