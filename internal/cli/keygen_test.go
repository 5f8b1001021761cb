package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dwitter/internal/identity"
	"github.com/roach88/dwitter/internal/message"
	"github.com/roach88/dwitter/internal/page"
)

// keygen runs keygen with a passphrase and returns the identifier.
func keygen(t *testing.T, dir, seed string) string {
	t.Helper()
	out, err := execute(t, "keygen", seed, "--out", dir, "--passphrase", seed)
	require.NoError(t, err)
	return strings.TrimSpace(out)
}

func TestKeygen_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	id := keygen(t, dir, "alice")

	_, want, err := identity.GenerateFromKey("alice", identity.DeriveKey("alice"))
	require.NoError(t, err)
	assert.Equal(t, want.String(), id)

	metaData, err := os.ReadFile(filepath.Join(dir, "alice.meta.json"))
	require.NoError(t, err)
	meta, err := identity.ParseMeta(metaData)
	require.NoError(t, err)
	assert.True(t, meta.Matches(want))

	info, err := os.Stat(filepath.Join(dir, "alice.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	priv, err := readKeyFile(filepath.Join(dir, "alice.key"))
	require.NoError(t, err)
	assert.Equal(t, identity.DeriveKey("alice"), priv)
}

func TestKeygen_RandomKeysDiffer(t *testing.T) {
	a, err := execute(t, "keygen", "bob", "--out", t.TempDir())
	require.NoError(t, err)
	b, err := execute(t, "keygen", "bob", "--out", t.TempDir())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "bob@"))
	assert.NotEqual(t, a, b)
}

func TestKeygen_JSON(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "keygen", "carol", "--out", dir, "--passphrase", "x", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   KeygenResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, filepath.Join(dir, "carol.key"), resp.Data.KeyFile)
	assert.Equal(t, filepath.Join(dir, "carol.meta.json"), resp.Data.MetaFile)
}

func TestKeygen_BadSeed(t *testing.T) {
	_, err := execute(t, "keygen", "no spaces", "--out", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSign_MessageVerifies(t *testing.T) {
	dir := t.TempDir()
	id := keygen(t, dir, "dave")

	out, err := execute(t, "sign", "--key", filepath.Join(dir, "dave.key"), "--sender", id,
		"--text", "hello", "--title", "Hello", "--time", "1700000000")
	require.NoError(t, err)

	var msg message.Message
	require.NoError(t, json.Unmarshal([]byte(out), &msg))
	assert.Equal(t, id, msg.Sender)
	assert.Equal(t, "Hello", msg.Title)
	assert.Equal(t, int64(1700000000), msg.Time)

	content, err := message.DecodeContent(msg.Data)
	require.NoError(t, err)
	assert.Equal(t, "hello", content.Text)

	metaData, err := os.ReadFile(filepath.Join(dir, "dave.meta.json"))
	require.NoError(t, err)
	meta, err := identity.ParseMeta(metaData)
	require.NoError(t, err)
	assert.NoError(t, identity.NewFacebook().VerifyMessage(&msg, meta))
}

func TestSign_ChannelRendersOnPage(t *testing.T) {
	dir := t.TempDir()
	id := keygen(t, dir, "erin")

	out, err := execute(t, "sign", "--key", filepath.Join(dir, "erin.key"), "--sender", id,
		"--text", "from the cli", "--channel", "moments")
	require.NoError(t, err)

	metaData, err := os.ReadFile(filepath.Join(dir, "erin.meta.json"))
	require.NoError(t, err)
	meta, err := identity.ParseMeta(metaData)
	require.NoError(t, err)
	sender, err := identity.ParseID(id)
	require.NoError(t, err)

	p, err := page.New(page.Options{Template: "<p>${title}</p>", Logger: discardLogger()})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, p.Framework().SaveMeta(ctx, sender, meta))
	p.FrameworkLoaded(ctx)

	p.Deliver(ctx, "/channel/moments.js", []byte(out))
	assert.Equal(t, "<p>from the cli</p>", p.Container().HTML())
}

func TestSign_VerboseLinkUsesConfigPrefix(t *testing.T) {
	dir := t.TempDir()
	id := keygen(t, dir, "hank")
	cfgPath := filepath.Join(dir, "dwitter.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("link_prefix: /m/\n"), 0o644))

	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"sign", "--config", cfgPath, "--verbose",
		"--key", filepath.Join(dir, "hank.key"), "--sender", id, "--text", "hi"})
	require.NoError(t, cmd.Execute())

	var msg message.Message
	require.NoError(t, json.Unmarshal(out.Bytes(), &msg))
	assert.Contains(t, errOut.String(), "link "+message.Link("/m/", msg.Signature))
	assert.NotContains(t, errOut.String(), message.DefaultLinkPrefix)
}

func TestSign_BadConfig(t *testing.T) {
	dir := t.TempDir()
	id := keygen(t, dir, "ivy")
	cfgPath := filepath.Join(dir, "dwitter.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("link_prefix: nope\n"), 0o644))

	_, err := execute(t, "sign", "--config", cfgPath,
		"--key", filepath.Join(dir, "ivy.key"), "--sender", id, "--text", "x")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSign_WrongSender(t *testing.T) {
	dir := t.TempDir()
	keygen(t, dir, "frank")
	other := keygen(t, dir, "gina")

	_, err := execute(t, "sign", "--key", filepath.Join(dir, "frank.key"), "--sender", other, "--text", "x")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "key does not belong to sender")
}

func TestSign_MissingKeyFile(t *testing.T) {
	_, err := execute(t, "sign", "--key", "/nonexistent.key", "--sender", "a@b", "--text", "x")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
