// Package cli implements the stitch command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stitch-ai/stitch-go-sdk/api"
	"github.com/stitch-ai/stitch-go-sdk/core"
	"github.com/stitch-ai/stitch-go-sdk/memory/chunker"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "stitch",
	Short: "Stitch AI memory CLI",
	Long: `stitch manages memory spaces on the Stitch memory service: push local
agent memory, pull it back into a local vector store, and search or question
what was pulled.`,
	Version:       api.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.stitch/config.json)")
	pf.String("api-key", "", "API key (env STITCH_API_KEY)")
	pf.String("base-url", core.DefaultBaseURL, "service base URL (env STITCH_BASE_URL)")
	pf.String("user-id", "", "default wallet address (env STITCH_USER_ID)")
	pf.Duration("timeout", core.DefaultTimeout, "HTTP timeout per request")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")

	pf.String("embedder", embedMock, "embedding backend: mock, ollama, openai or onnx")
	pf.String("embed-model", "", "embedding model name")
	pf.String("embed-url", "", "embedding endpoint base URL")
	pf.String("embed-key", "", "embedding API key (default $OPENAI_API_KEY for openai)")
	pf.String("onnx-model", "", "path to the ONNX model file")
	pf.String("onnx-tokenizer", "", "path to the tokenizer.json vocabulary")
	pf.String("onnx-library", "", "path to the onnxruntime shared library")
	pf.Int64("embed-cache-bytes", 0, "embedding cache size in bytes (0 for default)")

	pf.Int("chunk-size", chunker.DefaultSize, "chunk size in bytes for pulled memory")
	pf.Int("chunk-overlap", chunker.DefaultOverlap, "overlap between consecutive chunks")
	pf.Bool("compress", false, "gzip the local vector store files")

	for _, name := range []string{
		"api-key", "base-url", "user-id", "timeout", "log-level",
		"embedder", "embed-model", "embed-url", "embed-key",
		"onnx-model", "onnx-tokenizer", "onnx-library", "embed-cache-bytes",
		"chunk-size", "chunk-overlap", "compress",
	} {
		_ = viper.BindPFlag(configKey(name), pf.Lookup(name))
	}

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// GetRootCmd returns the root command for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// printJSON writes v to the command's stdout as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

// notice writes a status line to stderr so stdout stays machine readable.
func notice(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}
