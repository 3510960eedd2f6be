package source

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	_ "modernc.org/sqlite"
)

// memoriesTable is where agent frameworks such as ElizaOS keep memories.
// Each row's content column holds JSON with the text under "text".
const memoriesTable = "memories"

// ReadSQLite reads every memory row from a SQLite database, oldest first
// when the table has a createdAt column, and joins their text with newlines.
// The database is opened read-only.
func ReadSQLite(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("open sqlite memory: %w", err)
	}

	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return "", fmt.Errorf("open sqlite memory: %w", err)
	}
	defer db.Close()

	columns, err := tableColumns(ctx, db, memoriesTable)
	if err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("sqlite memory %s: no %q table", path, memoriesTable)
	}
	if !columns["content"] {
		return "", fmt.Errorf("sqlite memory %s: table %q has no content column", path, memoriesTable)
	}

	query := "SELECT content FROM " + memoriesTable
	if columns["createdAt"] {
		query += " ORDER BY createdAt"
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var content sql.NullString
		if err := rows.Scan(&content); err != nil {
			return "", fmt.Errorf("scan memory row: %w", err)
		}
		if text := rowText(content.String); text != "" {
			lines = append(lines, text)
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("read memories: %w", err)
	}
	return strings.Join(lines, "\n"), nil
}

// rowText extracts "text" from a JSON content cell, or returns the cell as is.
func rowText(content string) string {
	content = strings.TrimSpace(content)
	if gjson.Valid(content) {
		if text := gjson.Get(content, "text"); text.Exists() {
			return strings.TrimSpace(text.String())
		}
	}
	return content
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("inspect %s: %w", table, err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
