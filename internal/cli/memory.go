package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stitch-ai/stitch-go-sdk"
	"github.com/stitch-ai/stitch-go-sdk/api"
	"github.com/stitch-ai/stitch-go-sdk/core"
)

// apiCall is the body of a command that makes one service call.
type apiCall func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error)

// runAPI wraps an apiCall: it builds the client, runs the call and prints
// the response as JSON.
func runAPI(op string, call apiCall) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(true)
		if err != nil {
			return err
		}
		defer e.Close()

		resp, err := call(cmd.Context(), e.client, cmd, args)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return printJSON(cmd, resp)
	}
}

func init() {
	createSpace := &cobra.Command{
		Use:   "create-space <user_id> <repository>",
		Short: "Create a new memory space",
		Args:  cobra.ExactArgs(2),
		RunE: runAPI("create space", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.CreateSpace(ctx, args[0], args[1])
		}),
	}

	push := &cobra.Command{
		Use:   "push <user_id> <repository>",
		Short: "Push local memory files to a space",
		Long: `Push episodic and/or character memory to a space as a new commit.
Episodic memory may be a SQLite database (.sqlite, .sqlite3, .db) or a text
file; character memory is JSON or text.`,
		Args: cobra.ExactArgs(2),
		RunE: runAPI("push memory", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error) {
			message, _ := cmd.Flags().GetString("message")
			episodic, _ := cmd.Flags().GetString("episodic")
			character, _ := cmd.Flags().GetString("character")
			resp, err := c.Push(ctx, stitch.PushParams{
				UserID:        args[0],
				Repository:    args[1],
				Message:       message,
				EpisodicPath:  episodic,
				CharacterPath: character,
			})
			if err == nil {
				notice(cmd, "pushed memory to space %s", args[1])
			}
			return resp, err
		}),
	}
	push.Flags().StringP("message", "m", "", "commit message")
	push.Flags().StringP("episodic", "e", "", "path to episodic memory file")
	push.Flags().StringP("character", "c", "", "path to character memory file")
	_ = push.MarkFlagRequired("message")

	pull := &cobra.Command{
		Use:   "pull <user_id> <repository>",
		Short: "Pull memory from a space into a local store or JSON file",
		Long: `Pull memory at a ref. A --db-path ending in .json receives the raw
response; any other path is a vector store directory whose short_term
collection is rebuilt (the previous contents are backed up first).`,
		Args: cobra.ExactArgs(2),
		RunE: runAPI("pull memory", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error) {
			path, _ := cmd.Flags().GetString("db-path")
			ref, _ := cmd.Flags().GetString("ref")
			resp, err := c.Pull(ctx, stitch.PullParams{
				UserID:     args[0],
				Repository: args[1],
				Ref:        ref,
				Path:       path,
			})
			if err == nil {
				notice(cmd, "pulled memory from space %s", args[1])
				reportSaved(cmd, path)
			}
			return resp, err
		}),
	}
	pull.Flags().StringP("db-path", "p", "", "vector store directory or .json file")
	pull.Flags().String("ref", api.DefaultRef, "branch or commit ref")
	_ = pull.MarkFlagRequired("db-path")

	pullExternal := &cobra.Command{
		Use:   "pull-external <memory_id>",
		Short: "Pull a published memory by id",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI("pull external memory", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error) {
			path, _ := cmd.Flags().GetString("rag-path")
			resp, err := c.PullExternal(ctx, args[0], path)
			if err == nil {
				notice(cmd, "pulled external memory %s", args[0])
				reportSaved(cmd, path)
			}
			return resp, err
		}),
	}
	pullExternal.Flags().StringP("rag-path", "p", "", "vector store directory or .json file")
	_ = pullExternal.MarkFlagRequired("rag-path")

	listSpaces := &cobra.Command{
		Use:   "list-spaces <user_id>",
		Short: "List memory spaces",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI("list spaces", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.ListSpaces(ctx, args[0])
		}),
	}

	listMemories := &cobra.Command{
		Use:   "list-memories <user_id> <repository>",
		Short: "List the commits of a memory space",
		Args:  cobra.ExactArgs(2),
		RunE: runAPI("list memories", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.ListMemories(ctx, args[0], args[1])
		}),
	}

	rootCmd.AddCommand(createSpace, push, pull, pullExternal, listSpaces, listMemories)
}

func reportSaved(cmd *cobra.Command, path string) {
	if stitch.IsJSONPath(path) {
		notice(cmd, "memory data saved to JSON file: %s", path)
		return
	}
	notice(cmd, "memory data saved to vector store at: %s", path)
}
