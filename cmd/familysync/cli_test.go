package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akilaweerasekara/Home-Inventory/internal/metrics"
	"github.com/akilaweerasekara/Home-Inventory/internal/storage"
	"github.com/akilaweerasekara/Home-Inventory/internal/storage/sqlite"
)

// run executes the CLI with args and stdin and returns its standard output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"FAMILYSYNC_DB_PATH", "DB_PATH", "LOG_LEVEL", "FAMILYSYNC_CREDENTIAL", "FAMILYSYNC_METRICS_FILE"} {
		t.Setenv(key, "")
	}

	a := &app{}
	cmd := newRootCmd(a)

	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))

	err := cmd.ExecuteContext(context.Background())
	a.close()
	return out.String(), err
}

func lines(input ...string) string {
	return strings.Join(input, "\n") + "\n"
}

func TestMembersCmd(t *testing.T) {
	out, err := run(t, "", "--ephemeral", "members")
	require.NoError(t, err)
	assert.Contains(t, out, "Admin")
	assert.Contains(t, out, "John")
	assert.Contains(t, out, "Jane")
}

func TestSearchCmd(t *testing.T) {
	t.Run("guest sees family items", func(t *testing.T) {
		out, err := run(t, "", "--ephemeral", "search")
		require.NoError(t, err)
		assert.Contains(t, out, "Toolbox")
		assert.NotContains(t, out, "Passport")
	})

	t.Run("query and category", func(t *testing.T) {
		out, err := run(t, "", "--ephemeral", "search", "--category", "medicine", "aid")
		require.NoError(t, err)
		assert.Contains(t, out, "First Aid Kit")
		assert.NotContains(t, out, "Toolbox")
	})

	t.Run("unlocked member sees own private items", func(t *testing.T) {
		out, err := run(t, lines("john123"), "--ephemeral", "search", "--as", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "Passport")
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := run(t, lines("nope"), "--ephemeral", "search", "--as", "2")
		assert.Error(t, err)
	})
}

func TestExportImportCmds(t *testing.T) {
	dir := t.TempDir()
	backup := filepath.Join(dir, "backup.json")

	out, err := run(t, "", "--ephemeral", "export", "--out", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "Data exported to")

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("{\n  \"users\"")))

	out, err = run(t, lines("n"), "--ephemeral", "import", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "Import cancelled.")

	out, err = run(t, "", "--ephemeral", "import", backup, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Data imported successfully: 3 members, 3 items")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"users": []}`), 0644))
	_, err = run(t, "", "--ephemeral", "import", bad, "--yes")
	assert.Error(t, err)
}

func TestShellSession(t *testing.T) {
	input := lines(
		"search",
		"unlock 2",
		"john123",
		"private",
		"add",
		"Drill",
		"Garage",
		"tools",
		"2",
		"Cordless drill",
		"family",
		"",
		"",
		"found 4",
		"remove 3",
		"stats",
		"lock",
		"private",
		"remove 99",
		"bogus",
		"exit",
	)

	out, err := run(t, input, "--ephemeral", "shell")
	require.NoError(t, err)

	assert.Contains(t, out, "Welcome John! Private inventory unlocked.")
	assert.Contains(t, out, "Passport")
	assert.Contains(t, out, `Added "Drill" (#4) to the family inventory.`)
	assert.Contains(t, out, `Great! "Drill" is in Garage.`)
	assert.Contains(t, out, "Deleted item #3.")
	assert.Contains(t, out, "Total items:    3")
	assert.Contains(t, out, "Private items locked.")
	assert.Contains(t, out, "Error: private items are locked")
	assert.Contains(t, out, "Error: item 99 not found")
	assert.Contains(t, out, `Error: unknown command "bogus"`)
	assert.Contains(t, out, "Goodbye!")
}

func TestShellMembers(t *testing.T) {
	input := lines(
		"add-member",
		"Grandma",
		"knit",
		"passwd 4",
		"knit",
		"yarn1",
		"yarn1",
		"remove-member 1",
		"admin123",
		"remove-member 4",
		"yarn1",
		"members",
	)

	out, err := run(t, input, "--ephemeral")
	require.NoError(t, err)

	assert.Contains(t, out, "Added member Grandma (#4).")
	assert.Contains(t, out, "Password changed successfully.")
	assert.Contains(t, out, "Error: cannot remove the admin")
	assert.Contains(t, out, "Removed Grandma and 0 private item(s).")
}

func TestShellGuestCannotAddPrivate(t *testing.T) {
	input := lines(
		"add",
		"Passport",
		"Safe",
		"documents",
		"",
		"",
		"private",
		"",
		"",
	)

	out, err := run(t, input, "--ephemeral")
	require.NoError(t, err)
	assert.Contains(t, out, "Error: guest cannot add private items")
}

func TestShellFailedAddDiscardsPhoto(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "home.db")
	photo := filepath.Join(dir, "passport.jpg")
	require.NoError(t, os.WriteFile(photo, []byte{0xff, 0xd8, 0xff}, 0o600))

	input := lines(
		"add",
		"Passport",
		"Safe",
		"documents",
		"",
		"",
		"private",
		"",
		photo,
	)

	out, err := run(t, input, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Error: guest cannot add private items")

	p, err := sqlite.New(db)
	require.NoError(t, err)
	defer p.Close()
	keys, err := p.Keys(context.Background(), storage.PhotoKeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSQLitePersistence(t *testing.T) {
	db := filepath.Join(t.TempDir(), "home.db")

	_, err := run(t, lines("add", "Ladder", "Shed", "", "", "", "", "", ""), "--db", db)
	require.NoError(t, err)

	out, err := run(t, "", "--db", db, "search", "ladder")
	require.NoError(t, err)
	assert.Contains(t, out, "Ladder")
	assert.Contains(t, out, "Guest")
}

func TestResetCmd(t *testing.T) {
	db := filepath.Join(t.TempDir(), "home.db")

	_, err := run(t, lines("add", "Ladder", "Shed", "", "", "", "", "", ""), "--db", db)
	require.NoError(t, err)

	out, err := run(t, lines("n"), "--db", db, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset cancelled.")

	out, err = run(t, "", "--db", db, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "All data cleared.")

	out, err = run(t, "", "--db", db, "search")
	require.NoError(t, err)
	assert.NotContains(t, out, "Ladder")
	assert.Contains(t, out, "Toolbox")
}

func TestMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "familysync.prom")

	_, err := run(t, lines("john123"), "--ephemeral", "--metrics-file", path, "search", "--as", "2")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), metrics.MetricUnlockAttemptsTotal)
	assert.Contains(t, string(data), metrics.MetricItems)
}
