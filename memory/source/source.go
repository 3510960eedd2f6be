// Package source reads local agent memory into the files a push uploads.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stitch-ai/stitch-go-sdk/core"
)

// ErrNoMemoryFiles is returned when a push names neither memory file.
var ErrNoMemoryFiles = errors.New("at least one of episodic or character path is required")

// Files reads the given paths into upload files. Either path may be empty,
// but not both.
func Files(ctx context.Context, episodicPath, characterPath string) ([]core.File, error) {
	if episodicPath == "" && characterPath == "" {
		return nil, ErrNoMemoryFiles
	}

	var files []core.File
	if episodicPath != "" {
		content, err := ReadEpisodic(ctx, episodicPath)
		if err != nil {
			return nil, err
		}
		files = append(files, core.File{FilePath: core.EpisodicFile, Content: content})
	}
	if characterPath != "" {
		content, err := ReadCharacter(characterPath)
		if err != nil {
			return nil, err
		}
		files = append(files, core.File{FilePath: core.CharacterFile, Content: content})
	}
	return files, nil
}

// ReadEpisodic reads episodic memory. SQLite databases (.sqlite, .sqlite3,
// .db) go through ReadSQLite; anything else is read as text.
func ReadEpisodic(ctx context.Context, path string) (string, error) {
	if IsSQLite(path) {
		return ReadSQLite(ctx, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read episodic memory: %w", err)
	}
	return string(data), nil
}

// IsSQLite reports whether path looks like a SQLite database by extension.
func IsSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".sqlite3", ".db":
		return true
	}
	return false
}

// ReadCharacter reads a character file. Valid JSON is compacted; anything
// else is passed through as text.
func ReadCharacter(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read character memory: %w", err)
	}
	if !json.Valid(data) {
		return string(data), nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return "", fmt.Errorf("compact character memory: %w", err)
	}
	return buf.String(), nil
}
