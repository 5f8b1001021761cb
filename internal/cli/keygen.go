package cli

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/dwitter/internal/identity"
)

// KeygenOptions holds flags for the keygen command.
type KeygenOptions struct {
	*RootOptions
	OutDir     string
	Passphrase string
}

// KeygenResult describes the files keygen wrote.
type KeygenResult struct {
	ID       string `json:"id"`
	MetaFile string `json:"meta_file"`
	KeyFile  string `json:"key_file"`
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen <seed>",
		Short: "Generate an identity",
		Long: `Generate an ed25519 identity named by seed.

Writes <seed>.meta.json (the public meta) and <seed>.key (the private key
seed, base64) to the output directory and prints the identifier.

With --passphrase the key is derived from the passphrase, so the same
passphrase always yields the same identity. Use it for fixtures only.

Examples:
  dwitter keygen moky
  dwitter keygen moky --out ./keys
  dwitter keygen fixture --passphrase fixture --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&opts.Passphrase, "passphrase", "", "derive the key from a passphrase")

	return cmd
}

func runKeygen(opts *KeygenOptions, seed string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	var (
		meta *identity.Meta
		priv ed25519.PrivateKey
		id   identity.ID
		err  error
	)
	if opts.Passphrase != "" {
		priv = identity.DeriveKey(opts.Passphrase)
		meta, id, err = identity.GenerateFromKey(seed, priv)
	} else {
		meta, priv, id, err = identity.Generate(seed)
	}
	if err != nil {
		return out.Fail(ExitCommandError, CodeKey, "failed to generate identity", err)
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return out.Fail(ExitCommandError, CodeKey, "failed to create output directory", err)
	}

	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return out.Fail(ExitCommandError, CodeKey, "failed to encode meta", err)
	}

	result := KeygenResult{
		ID:       id.String(),
		MetaFile: filepath.Join(opts.OutDir, seed+".meta.json"),
		KeyFile:  filepath.Join(opts.OutDir, seed+".key"),
	}
	if err := os.WriteFile(result.MetaFile, append(metaJSON, '\n'), 0o644); err != nil {
		return out.Fail(ExitCommandError, CodeKey, "failed to write meta", err)
	}
	if err := os.WriteFile(result.KeyFile, []byte(identity.EncodePrivateKey(priv)+"\n"), 0o600); err != nil {
		return out.Fail(ExitCommandError, CodeKey, "failed to write key", err)
	}

	out.VerboseLog("wrote %s and %s", result.MetaFile, result.KeyFile)
	return out.Success(result, result.ID)
}

// readKeyFile loads a key written by keygen.
func readKeyFile(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return identity.DecodePrivateKey(string(data))
}
