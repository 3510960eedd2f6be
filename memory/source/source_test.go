package source

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitch-ai/stitch-go-sdk/core"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func makeDB(t *testing.T, schema string, rows ...[]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(schema)
	require.NoError(t, err)
	for _, r := range rows {
		_, err := db.Exec("INSERT INTO memories VALUES (?, ?)", r...)
		require.NoError(t, err)
	}
	return path
}

func TestFiles_RequiresAPath(t *testing.T) {
	_, err := Files(context.Background(), "", "")
	require.ErrorIs(t, err, ErrNoMemoryFiles)
}

func TestFiles_TextAndCharacter(t *testing.T) {
	episodic := writeFile(t, "notes.txt", "met the user\nthey like tea\n")
	character := writeFile(t, "character.json", "{\n  \"name\": \"Ava\",\n  \"bio\": [\"calm\"]\n}\n")

	files, err := Files(context.Background(), episodic, character)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, core.File{FilePath: "episodic.data", Content: "met the user\nthey like tea\n"}, files[0])
	assert.Equal(t, core.File{FilePath: "character.data", Content: `{"name":"Ava","bio":["calm"]}`}, files[1])
}

func TestFiles_CharacterOnly(t *testing.T) {
	character := writeFile(t, "character.txt", "not json at all")

	files, err := Files(context.Background(), "", character)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, core.CharacterFile, files[0].FilePath)
	assert.Equal(t, "not json at all", files[0].Content)
}

func TestFiles_MissingFile(t *testing.T) {
	_, err := Files(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), "")
	require.Error(t, err)
}

func TestReadSQLite_OrdersByCreatedAt(t *testing.T) {
	path := makeDB(t, `CREATE TABLE memories (content TEXT, createdAt INTEGER)`,
		[]any{`{"text":"second","source":"chat"}`, 2},
		[]any{`{"text":"first"}`, 1},
		[]any{`plain row`, 3},
		[]any{`{"text":"   "}`, 4},
	)

	got, err := ReadEpisodic(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\nplain row", got)
}

func TestReadSQLite_WithoutCreatedAt(t *testing.T) {
	path := makeDB(t, `CREATE TABLE memories (id INTEGER, content TEXT)`,
		[]any{1, `{"text":"only"}`},
	)

	got, err := ReadSQLite(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "only", got)
}

func TestReadSQLite_NoMemoriesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE other (x TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = ReadSQLite(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memories")
}

func TestReadSQLite_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.sqlite")
	_, err := ReadSQLite(context.Background(), missing)
	require.Error(t, err)

	_, statErr := os.Stat(missing)
	assert.True(t, os.IsNotExist(statErr), "read must not create the database")
}

func TestIsSQLite(t *testing.T) {
	assert.True(t, IsSQLite("a/b.sqlite"))
	assert.True(t, IsSQLite("x.DB"))
	assert.False(t, IsSQLite("memory.json"))
}
