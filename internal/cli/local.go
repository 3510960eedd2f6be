package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stitch-ai/stitch-go-sdk/api"
	"github.com/stitch-ai/stitch-go-sdk/engine"
	"github.com/stitch-ai/stitch-go-sdk/memory"
	"github.com/stitch-ai/stitch-go-sdk/memory/store/chromem"
	"github.com/stitch-ai/stitch-go-sdk/tools"
)

// Commands in this file work on a pulled vector store and need no API key.

// openStore opens an existing store directory.
func openStore(e *env, dir string) (*chromem.Store, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("no vector store at %s: %w", dir, err)
	}
	return chromem.Open(dir, chromem.WithLogger(e.logger), chromem.WithCompression(e.settings.Compress))
}

type searchHit struct {
	ID         string  `json:"id"`
	Category   string  `json:"category"`
	Similarity float32 `json:"similarity"`
	Text       string  `json:"text"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")
	query := strings.Join(args[1:], " ")

	e, err := newEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	store, err := openStore(e, args[0])
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	defer store.Close()

	matches, err := memory.NewRetriever(store, e.embedder, e.logger).Retrieve(cmd.Context(), query, limit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if format == "text" {
		if len(matches) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "No matching memory found.")
			return err
		}
		_, err := fmt.Fprint(cmd.OutOrStdout(), memory.Format(matches, 0))
		return err
	}

	hits := make([]searchHit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, searchHit{ID: m.ID, Category: m.Category(), Similarity: m.Similarity, Text: m.Text})
	}
	return printJSON(cmd, hits)
}

func runAsk(cmd *cobra.Command, args []string) error {
	model, _ := cmd.Flags().GetString("model")
	maxTurns, _ := cmd.Flags().GetInt("max-turns")
	prefetch, _ := cmd.Flags().GetInt("prefetch")
	verbose, _ := cmd.Flags().GetBool("json")
	question := strings.Join(args[1:], " ")

	e, err := newEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	store, err := openStore(e, args[0])
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	defer store.Close()

	var opts []option.RequestOption
	if key := viper.GetString("anthropic_api_key"); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	if u := viper.GetString("anthropic_base_url"); u != "" {
		opts = append(opts, option.WithBaseURL(u))
	}
	client := anthropic.NewClient(opts...)

	retriever := memory.NewRetriever(store, e.embedder, e.logger)
	eng := engine.New(&client,
		engine.WithTools(tools.SearchMemory(retriever)),
		engine.WithPrefetch(retriever, prefetch),
		engine.WithLogger(e.logger),
	)

	out, err := eng.Ask(cmd.Context(), engine.AskInput{
		Question: question,
		Model:    model,
		MaxTurns: maxTurns,
	})
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	if verbose {
		return printJSON(cmd, out)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out.Text)
	return err
}

type backupInfo struct {
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	Records   int       `json:"records"`
}

func runBackups(cmd *cobra.Command, args []string) error {
	paths, err := memory.ListBackups(filepath.Join(args[0], memory.BackupDir))
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}
	infos := make([]backupInfo, 0, len(paths))
	for _, p := range paths {
		b, err := memory.ReadBackup(p)
		if err != nil {
			return fmt.Errorf("read backup: %w", err)
		}
		infos = append(infos, backupInfo{Path: p, CreatedAt: b.CreatedAt, Records: len(b.Records)})
	}
	return printJSON(cmd, infos)
}

type storeStatus struct {
	Path       string            `json:"path"`
	Collection string            `json:"collection"`
	Records    int               `json:"records"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Backups    int               `json:"backups"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := newEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	store, err := openStore(e, args[0])
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	defer store.Close()

	backups, err := memory.ListBackups(filepath.Join(args[0], memory.BackupDir))
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	return printJSON(cmd, storeStatus{
		Path:       args[0],
		Collection: memory.ShortTermCollection,
		Records:    store.Count(memory.ShortTermCollection),
		Metadata:   store.Metadata(memory.ShortTermCollection),
		Backups:    len(backups),
	})
}

func init() {
	search := &cobra.Command{
		Use:   "search <db_path> <query...>",
		Short: "Search pulled memory",
		Long:  "Embed the query and return the closest passages from the store's short_term collection.",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runSearch,
	}
	search.Flags().IntP("limit", "n", 5, "max results")
	search.Flags().StringP("format", "f", "json", "output format: json or text")

	ask := &cobra.Command{
		Use:   "ask <db_path> <question...>",
		Short: "Ask Claude a question about pulled memory",
		Long: `Ask a question about pulled memory. Claude searches the store with the
search_memory tool before answering. Needs ANTHROPIC_API_KEY (or
--anthropic-api-key) and the same --embedder the memory was pulled with.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runAsk,
	}
	ask.Flags().String("model", engine.DefaultModel, "Claude model")
	ask.Flags().Int("max-turns", engine.DefaultMaxTurns, "maximum model turns")
	ask.Flags().Int("prefetch", 3, "passages added to the system prompt before the first turn (0 to disable)")
	ask.Flags().Bool("json", false, "print the full result, including tool calls and token usage")
	ask.Flags().String("anthropic-api-key", "", "Anthropic API key (default $ANTHROPIC_API_KEY)")
	ask.Flags().String("anthropic-base-url", "", "Anthropic API base URL")
	_ = viper.BindPFlag("anthropic_api_key", ask.Flags().Lookup("anthropic-api-key"))
	_ = viper.BindPFlag("anthropic_base_url", ask.Flags().Lookup("anthropic-base-url"))

	backups := &cobra.Command{
		Use:   "backups <db_path>",
		Short: "List short-term backups taken before each pull",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackups,
	}

	status := &cobra.Command{
		Use:   "status <db_path>",
		Short: "Show what a local store holds",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatus,
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the SDK version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), api.Version)
			return err
		},
	}

	rootCmd.AddCommand(search, ask, backups, status, version)
}
