package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/stitch-ai/stitch-go-sdk/core"
)

// GitService covers the /git endpoints that back memory spaces.
type GitService struct {
	c *Client
}

// CreateRepo creates a repository owned by userID.
func (s *GitService) CreateRepo(ctx context.Context, userID, name string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/git/create",
		query:  s.c.auth(userID),
		body:   map[string]string{"name": name},
	})
}

// CloneRepo copies another user's repository under a new name.
func (s *GitService) CloneRepo(ctx context.Context, userID, name, sourceName, sourceOwnerID string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/git/clone",
		query:  s.c.auth(userID),
		body: map[string]string{
			"name":          name,
			"sourceName":    sourceName,
			"sourceOwnerId": sourceOwnerID,
		},
	})
}

func (s *GitService) ListBranches(ctx context.Context, userID, repo string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/git/" + segment(repo) + "/branches",
		query:  s.c.auth(userID),
	})
}

func (s *GitService) Checkout(ctx context.Context, userID, repo, branch string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/git/" + segment(repo) + "/checkout",
		query:  s.c.auth(userID),
		body:   map[string]string{"branch": branch},
	})
}

func (s *GitService) CreateBranch(ctx context.Context, userID, repo, branchName, baseBranch string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/git/" + segment(repo) + "/branch/create",
		query:  s.c.auth(userID),
		body:   map[string]string{"branchName": branchName, "baseBranch": baseBranch},
	})
}

func (s *GitService) DeleteBranch(ctx context.Context, userID, repo, branch string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/git/" + segment(repo) + "/branch/" + segment(branch),
		query:  s.c.auth(userID),
	})
}

// Merge merges theirs into ours with the given commit message.
func (s *GitService) Merge(ctx context.Context, userID, repo, ours, theirs, message string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/git/" + segment(repo) + "/merge",
		query:  s.c.auth(userID),
		body:   map[string]string{"ours": ours, "theirs": theirs, "message": message},
	})
}

// CommitFile writes a single file and commits it.
func (s *GitService) CommitFile(ctx context.Context, userID, repo, filePath, content, message string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/git/" + segment(repo) + "/commit",
		query:  s.c.auth(userID),
		body:   map[string]string{"filePath": filePath, "content": content, "message": message},
	})
}

// Log returns commit history. A nil depth lets the service pick.
func (s *GitService) Log(ctx context.Context, userID, repo string, depth *int) (*core.Response, error) {
	q := s.c.auth(userID)
	if depth != nil {
		q["depth"] = strconv.Itoa(*depth)
	}
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/git/" + segment(repo) + "/log",
		query:  q,
	})
}

// Depth is a helper for Log's optional argument.
func Depth(n int) *int {
	return &n
}

// File reads one file at ref.
func (s *GitService) File(ctx context.Context, userID, repo, filePath, ref string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/git/" + segment(repo) + "/file",
		query:  with(s.c.auth(userID), map[string]string{"filePath": filePath, "ref": ref}),
	})
}

// Diff compares two commits.
func (s *GitService) Diff(ctx context.Context, userID, repo, oid1, oid2 string) (*core.Response, error) {
	return s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/git/" + segment(repo) + "/diff",
		query:  with(s.c.auth(userID), map[string]string{"oid1": oid1, "oid2": oid2}),
	})
}
