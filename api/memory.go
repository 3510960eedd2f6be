package api

import (
	"context"
	"net/http"

	"github.com/stitch-ai/stitch-go-sdk/core"
)

// DefaultRef is the branch pulled when none is given.
const DefaultRef = "main"

// MemoryService pushes and pulls memory snapshots.
type MemoryService struct {
	c *Client
}

// CreateSpace creates an empty memory space.
func (s *MemoryService) CreateSpace(ctx context.Context, userID, repo string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/memory-space/create",
		query:  s.c.auth(userID),
		body:   map[string]string{"repository": repo},
	})
}

// pushBody is the wire shape of a push.
type pushBody struct {
	Files   []core.File `json:"files"`
	Message string      `json:"message"`
}

// Push commits files to a memory space. Files may be empty.
func (s *MemoryService) Push(ctx context.Context, userID, repo, message string, files []core.File) (*core.Response, error) {
	if files == nil {
		files = []core.File{}
	}
	return s.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/memory/" + segment(repo) + "/create",
		query:  s.c.auth(userID),
		body:   pushBody{Files: files, Message: message},
	})
}

// Pull fetches the memory space at ref. An empty ref means DefaultRef.
func (s *MemoryService) Pull(ctx context.Context, userID, repo, ref string) (*core.Response, error) {
	if ref == "" {
		ref = DefaultRef
	}
	q := s.c.auth(userID)
	q["ref"] = ref
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/memory-space/" + segment(repo),
		query:  q,
	})
}

// PullExternal fetches a published memory by id. It needs no credentials.
func (s *MemoryService) PullExternal(ctx context.Context, memoryID string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/memory/external/" + segment(memoryID),
	})
}

// ListSpaces lists the spaces owned by userID.
func (s *MemoryService) ListSpaces(ctx context.Context, userID string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/user/memory-space",
		query:  map[string]string{"userId": s.c.user(userID)},
	})
}

// ListMemories returns the commit history of a space.
func (s *MemoryService) ListMemories(ctx context.Context, userID, repo string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/memory-space/" + segment(repo) + "/history",
		query:  s.c.auth(userID),
	})
}
