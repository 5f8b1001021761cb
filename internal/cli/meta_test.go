package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeta_ImportAndList(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "metas.db")
	alice := keygen(t, dir, "alice")
	bob := keygen(t, dir, "bob")

	out, err := execute(t, "meta", "import", "--db", db, alice, filepath.Join(dir, "alice.meta.json"))
	require.NoError(t, err)
	assert.Equal(t, "imported "+alice+"\n", out)

	_, err = execute(t, "meta", "import", "--db", db, bob, filepath.Join(dir, "bob.meta.json"))
	require.NoError(t, err)

	out, err = execute(t, "meta", "list", "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], alice)
	assert.Contains(t, lines[1], bob)

	out, err = execute(t, "meta", "list", "--db", db, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data []MetaListEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, alice, resp.Data[0].ID)
	assert.Equal(t, "ED25519", resp.Data[0].Algorithm)
}

func TestMeta_ImportMismatch(t *testing.T) {
	dir := t.TempDir()
	alice := keygen(t, dir, "alice")
	keygen(t, dir, "bob")

	_, err := execute(t, "meta", "import", "--db", filepath.Join(dir, "m.db"), alice, filepath.Join(dir, "bob.meta.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to import meta")
}

func TestMeta_ImportInvalidFile(t *testing.T) {
	dir := t.TempDir()
	alice := keygen(t, dir, "alice")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"version":1}`), 0o644))

	_, err := execute(t, "meta", "import", "--db", filepath.Join(dir, "m.db"), alice, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid meta")
}

func TestMeta_ListEmpty(t *testing.T) {
	out, err := execute(t, "meta", "list", "--db", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	assert.Equal(t, "No metas.\n", out)
}

func TestMeta_DatabaseFromConfig(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "from-config.db")
	cfgPath := filepath.Join(dir, "dwitter.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database: "+db+"\n"), 0o644))
	alice := keygen(t, dir, "alice")

	_, err := execute(t, "--config", cfgPath, "meta", "import", alice, filepath.Join(dir, "alice.meta.json"))
	require.NoError(t, err)

	out, err := execute(t, "meta", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, alice)
}
