package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stitch-ai/stitch-go-sdk"
	"github.com/stitch-ai/stitch-go-sdk/api"
	"github.com/stitch-ai/stitch-go-sdk/core"
)

// Git and space commands act for the configured --user-id.

func init() {
	git := &cobra.Command{
		Use:   "git",
		Short: "Low-level repository operations on memory spaces",
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a repository",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI("create repository", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.Git.CreateRepo(ctx, "", args[0])
		}),
	}

	clone := &cobra.Command{
		Use:   "clone <name> <source_name> <source_owner_id>",
		Short: "Clone another user's repository",
		Args:  cobra.ExactArgs(3),
		RunE: runAPI("clone repository", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.Git.CloneRepo(ctx, "", args[0], args[1], args[2])
		}),
	}

	branches := &cobra.Command{
		Use:   "branches <repo>",
		Short: "List branches",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI("list branches", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.Git.ListBranches(ctx, "", args[0])
		}),
	}

	checkout := &cobra.Command{
		Use:   "checkout <repo> <branch>",
		Short: "Check out a branch",
		Args:  cobra.ExactArgs(2),
		RunE: runAPI("checkout", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.Git.Checkout(ctx, "", args[0], args[1])
		}),
	}

	branch := &cobra.Command{
		Use:   "branch <repo> <name>",
		Short: "Create a branch",
		Args:  cobra.ExactArgs(2),
		RunE: runAPI("create branch", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error) {
			base, _ := cmd.Flags().GetString("base")
			return c.API.Git.CreateBranch(ctx, "", args[0], args[1], base)
		}),
	}
	branch.Flags().String("base", api.DefaultRef, "branch to start from")

	deleteBranch := &cobra.Command{
		Use:   "delete-branch <repo> <branch>",
		Short: "Delete a branch",
		Args:  cobra.ExactArgs(2),
		RunE: runAPI("delete branch", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.Git.DeleteBranch(ctx, "", args[0], args[1])
		}),
	}

	merge := &cobra.Command{
		Use:   "merge <repo> <ours> <theirs>",
		Short: "Merge theirs into ours",
		Args:  cobra.ExactArgs(3),
		RunE: runAPI("merge", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error) {
			message, _ := cmd.Flags().GetString("message")
			return c.API.Git.Merge(ctx, "", args[0], args[1], args[2], message)
		}),
	}
	merge.Flags().StringP("message", "m", "", "merge commit message")

	commit := &cobra.Command{
		Use:   "commit <repo> <file_path>",
		Short: "Commit one file",
		Long:  "Commit one file. Content comes from --content, or from --from-file when given.",
		Args:  cobra.ExactArgs(2),
		RunE: runAPI("commit", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error) {
			message, _ := cmd.Flags().GetString("message")
			content, err := commitContent(cmd)
			if err != nil {
				return nil, err
			}
			return c.API.Git.CommitFile(ctx, "", args[0], args[1], content, message)
		}),
	}
	commit.Flags().StringP("message", "m", "", "commit message")
	commit.Flags().String("content", "", "file content")
	commit.Flags().String("from-file", "", "read file content from this local path")
	_ = commit.MarkFlagRequired("message")

	logCmd := &cobra.Command{
		Use:   "log <repo>",
		Short: "Show commit log",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI("log", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error) {
			var depth *int
			if cmd.Flags().Changed("depth") {
				n, _ := cmd.Flags().GetInt("depth")
				depth = api.Depth(n)
			}
			return c.API.Git.Log(ctx, "", args[0], depth)
		}),
	}
	logCmd.Flags().Int("depth", 0, "number of commits to show")

	file := &cobra.Command{
		Use:   "file <repo> <file_path>",
		Short: "Read a file at a ref",
		Args:  cobra.ExactArgs(2),
		RunE: runAPI("read file", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error) {
			ref, _ := cmd.Flags().GetString("ref")
			return c.API.Git.File(ctx, "", args[0], args[1], ref)
		}),
	}
	file.Flags().String("ref", api.DefaultRef, "branch or commit ref")

	diff := &cobra.Command{
		Use:   "diff <repo> <oid1> <oid2>",
		Short: "Diff two commits",
		Args:  cobra.ExactArgs(3),
		RunE: runAPI("diff", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.Git.Diff(ctx, "", args[0], args[1], args[2])
		}),
	}

	git.AddCommand(create, clone, branches, checkout, branch, deleteBranch, merge, commit, logCmd, file, diff)
	rootCmd.AddCommand(git)
}

func commitContent(cmd *cobra.Command) (string, error) {
	content, _ := cmd.Flags().GetString("content")
	path, _ := cmd.Flags().GetString("from-file")
	if path == "" {
		if !cmd.Flags().Changed("content") {
			return "", errors.New("one of --content or --from-file is required")
		}
		return content, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
