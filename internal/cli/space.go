package cli

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/stitch-ai/stitch-go-sdk"
	"github.com/stitch-ai/stitch-go-sdk/api"
	"github.com/stitch-ai/stitch-go-sdk/core"
)

func init() {
	space := &cobra.Command{
		Use:   "space",
		Short: "Memory space management",
	}

	get := &cobra.Command{
		Use:   "get <repo>",
		Short: "Show a memory space at a ref",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI("get space", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error) {
			ref, _ := cmd.Flags().GetString("ref")
			return c.API.Spaces.Get(ctx, "", args[0], ref)
		}),
	}
	get.Flags().String("ref", api.DefaultRef, "branch or commit ref")

	del := &cobra.Command{
		Use:   "delete <repo>",
		Short: "Delete a memory space",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI("delete space", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.Spaces.Delete(ctx, "", args[0])
		}),
	}

	clone := &cobra.Command{
		Use:   "clone <repo> <source_name> <source_owner_id>",
		Short: "Clone another user's memory space",
		Args:  cobra.ExactArgs(3),
		RunE: runAPI("clone space", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.Spaces.Clone(ctx, "", args[0], args[1], args[2])
		}),
	}

	history := &cobra.Command{
		Use:   "history <repo>",
		Short: "Show a memory space's commit history",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI("space history", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.Spaces.History(ctx, "", args[0])
		}),
	}

	space.AddCommand(get, del, clone, history)

	market := &cobra.Command{
		Use:   "market",
		Short: "Marketplace listings and purchases",
	}

	list := &cobra.Command{
		Use:   "list <type>",
		Short: "List marketplace spaces of a type",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI("list marketplace", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error) {
			return c.API.Marketplace.ListSpaces(ctx, args[0], "", listOptions(cmd.Flags()))
		}),
	}
	addListFlags(list.Flags())

	listMemory := &cobra.Command{
		Use:   "list-memory <repo>",
		Short: "List a memory space on the marketplace",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI("list memory on marketplace", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error) {
			body, err := jsonBody(cmd)
			if err != nil {
				return nil, err
			}
			return c.API.Marketplace.ListMemory(ctx, "", args[0], body)
		}),
	}
	listMemory.Flags().String("body", "{}", "listing details as JSON")

	purchase := &cobra.Command{
		Use:   "purchase",
		Short: "Purchase a marketplace listing",
		Args:  cobra.NoArgs,
		RunE: runAPI("purchase", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, _ []string) (*core.Response, error) {
			body, err := jsonBody(cmd)
			if err != nil {
				return nil, err
			}
			return c.API.Marketplace.Purchase(ctx, "", body)
		}),
	}
	purchase.Flags().String("body", "", "purchase request as JSON")
	_ = purchase.MarkFlagRequired("body")

	market.AddCommand(list, listMemory, purchase)
	rootCmd.AddCommand(space, market)
}

// jsonBody reads the --body flag, which must be valid JSON.
func jsonBody(cmd *cobra.Command) (json.RawMessage, error) {
	raw, _ := cmd.Flags().GetString("body")
	if !json.Valid([]byte(raw)) {
		return nil, errors.New("--body is not valid JSON")
	}
	return json.RawMessage(raw), nil
}
