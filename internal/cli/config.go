package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// settings is the resolved configuration. Precedence: flags, STITCH_* env
// (a .env file in the working directory is loaded first), config file,
// flag defaults.
type settings struct {
	APIKey   string
	BaseURL  string
	UserID   string
	Timeout  time.Duration
	LogLevel string

	Embedder      string
	EmbedModel    string
	EmbedURL      string
	EmbedKey      string
	ONNXModel     string
	ONNXTokenizer string
	ONNXLibrary   string
	CacheBytes    int64

	ChunkSize    int
	ChunkOverlap int
	Compress     bool
}

// configKey maps a flag name to its viper key: "api-key" -> "api_key",
// read from STITCH_API_KEY or "api_key" in the config file.
func configKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

func initConfig() {
	_ = godotenv.Load()

	viper.SetEnvPrefix("STITCH")
	viper.AutomaticEnv()

	path := cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		path = filepath.Join(home, ".stitch", "config.json")
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return
		}
	}

	viper.SetConfigFile(path)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		logger := newLogger(viper.GetString("log_level"), os.Stderr)
		logger.Warn().Err(err).Str("path", path).Msg("config file ignored")
	}
}

func loadSettings() settings {
	return settings{
		APIKey:   viper.GetString("api_key"),
		BaseURL:  viper.GetString("base_url"),
		UserID:   viper.GetString("user_id"),
		Timeout:  viper.GetDuration("timeout"),
		LogLevel: viper.GetString("log_level"),

		Embedder:      viper.GetString("embedder"),
		EmbedModel:    viper.GetString("embed_model"),
		EmbedURL:      viper.GetString("embed_url"),
		EmbedKey:      viper.GetString("embed_key"),
		ONNXModel:     viper.GetString("onnx_model"),
		ONNXTokenizer: viper.GetString("onnx_tokenizer"),
		ONNXLibrary:   viper.GetString("onnx_library"),
		CacheBytes:    viper.GetInt64("embed_cache_bytes"),

		ChunkSize:    viper.GetInt("chunk_size"),
		ChunkOverlap: viper.GetInt("chunk_overlap"),
		Compress:     viper.GetBool("compress"),
	}
}
