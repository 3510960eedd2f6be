package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stitch-ai/stitch-go-sdk"
	"github.com/stitch-ai/stitch-go-sdk/core"
)

// addListFlags registers the optional paginate/sort/filters flags.
func addListFlags(fs *pflag.FlagSet) {
	fs.String("paginate", "", "pagination (passed through)")
	fs.String("sort", "", "sort order (passed through)")
	fs.String("filters", "", "filters (passed through)")
}

func listOptions(fs *pflag.FlagSet) core.ListOptions {
	paginate, _ := fs.GetString("paginate")
	sort, _ := fs.GetString("sort")
	filters, _ := fs.GetString("filters")
	return core.ListOptions{Paginate: paginate, Sort: sort, Filters: filters}
}

func init() {
	key := &cobra.Command{
		Use:   "key <user_id> <hashed_id> <name>",
		Short: "Generate a new API key",
		Args:  cobra.ExactArgs(3),
		RunE: runAPI("create api key", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.User.CreateAPIKey(ctx, args[0], args[1], args[2])
		}),
	}

	user := &cobra.Command{
		Use:   "user",
		Short: "User account and dashboard",
	}

	get := &cobra.Command{
		Use:   "get <user_id>",
		Short: "Get user info",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI("get user", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.User.Get(ctx, args[0])
		}),
	}

	keys := &cobra.Command{
		Use:   "keys <user_id> <hashed_id>",
		Short: "List API keys",
		Args:  cobra.ExactArgs(2),
		RunE: runAPI("list api keys", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.User.APIKeys(ctx, args[0], args[1])
		}),
	}

	createKey := &cobra.Command{
		Use:   "create-key <user_id> <hashed_id> <name>",
		Short: "Create an API key",
		Args:  cobra.ExactArgs(3),
		RunE: runAPI("create api key", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.User.CreateAPIKey(ctx, args[0], args[1], args[2])
		}),
	}

	deleteKey := &cobra.Command{
		Use:   "delete-key <user_id> <hashed_id> <secret>",
		Short: "Delete an API key",
		Args:  cobra.ExactArgs(3),
		RunE: runAPI("delete api key", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.User.DeleteAPIKey(ctx, args[0], args[1], args[2])
		}),
	}

	stat := &cobra.Command{
		Use:   "stat <user_id>",
		Short: "Dashboard statistics",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI("get user stat", func(ctx context.Context, c *stitch.Client, _ *cobra.Command, args []string) (*core.Response, error) {
			return c.API.User.Stat(ctx, args[0])
		}),
	}

	histories := &cobra.Command{
		Use:   "histories <user_id>",
		Short: "Dashboard activity history",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI("get user histories", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error) {
			return c.API.User.Histories(ctx, args[0], listOptions(cmd.Flags()))
		}),
	}
	addListFlags(histories.Flags())

	mem := &cobra.Command{
		Use:   "memory <user_id> <api_key>",
		Short: "Get memory visible to an API key",
		Args:  cobra.ExactArgs(2),
		RunE: runAPI("get user memory", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error) {
			names, _ := cmd.Flags().GetString("memory-names")
			return c.API.User.Memory(ctx, args[0], args[1], names)
		}),
	}
	mem.Flags().String("memory-names", "", "comma separated memory names")

	purchases := &cobra.Command{
		Use:   "purchases <user_id>",
		Short: "Marketplace purchases",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI("get user purchases", func(ctx context.Context, c *stitch.Client, cmd *cobra.Command, args []string) (*core.Response, error) {
			return c.API.User.Purchases(ctx, args[0], listOptions(cmd.Flags()))
		}),
	}
	addListFlags(purchases.Flags())

	user.AddCommand(get, keys, createKey, deleteKey, stat, histories, mem, purchases)
	rootCmd.AddCommand(key, user)
}
