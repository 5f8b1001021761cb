package cli

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dwitter/internal/identity"
	"github.com/roach88/dwitter/internal/message"
	"github.com/roach88/dwitter/internal/page"
)

// SignOptions holds flags for the sign command.
type SignOptions struct {
	*RootOptions
	KeyFile string
	Sender  string
	Text    string
	Title   string
	Channel string
	Time    int64
}

// NewSignCommand creates the sign command.
func NewSignCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SignOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message",
		Long: `Sign a message with a key written by keygen and print it as JSON.

The sender must be the identifier printed by keygen for that key. With
--channel the message is wrapped in a channel event of that title, ready to
be delivered to /channel/<name>.js.

Examples:
  dwitter sign --key moky.key --sender moky@3a1f... --text "hello"
  dwitter sign --key moky.key --sender moky@3a1f... --text "hello" --channel moments`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.KeyFile, "key", "", "private key file (required)")
	cmd.Flags().StringVar(&opts.Sender, "sender", "", "sender identifier (required)")
	cmd.Flags().StringVar(&opts.Text, "text", "", "message text")
	cmd.Flags().StringVar(&opts.Title, "title", "", "display title")
	cmd.Flags().StringVar(&opts.Channel, "channel", "", "wrap the message in a channel event")
	cmd.Flags().Int64Var(&opts.Time, "time", 0, "timestamp in unix seconds (default now)")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("sender")

	return cmd
}

func runSign(opts *SignOptions, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	cfg, err := opts.loadConfig()
	if err != nil {
		return out.Fail(ExitCommandError, CodeConfig, "failed to load config", err)
	}

	priv, err := readKeyFile(opts.KeyFile)
	if err != nil {
		return out.Fail(ExitCommandError, CodeKey, "failed to load key", err)
	}

	sender, err := identity.ParseID(opts.Sender)
	if err != nil {
		return out.Fail(ExitCommandError, CodeKey, "invalid sender", err)
	}
	_, owner, err := identity.GenerateFromKey(sender.Name, priv)
	if err != nil {
		return out.Fail(ExitCommandError, CodeKey, "invalid sender", err)
	}
	if owner != sender {
		return out.Fail(ExitCommandError, CodeKey, "key does not belong to sender "+sender.String(), nil)
	}

	at := time.Now()
	if opts.Time != 0 {
		at = time.Unix(opts.Time, 0)
	}
	msg, err := identity.NewSignedMessage(priv, sender, opts.Text, at)
	if err != nil {
		return out.Fail(ExitCommandError, CodeKey, "failed to sign message", err)
	}
	msg.Title = opts.Title

	var payload []byte
	if opts.Channel != "" {
		payload, err = page.EncodeChannel(opts.Channel, msg)
	} else {
		payload, err = json.Marshal(msg)
	}
	if err != nil {
		return out.Fail(ExitCommandError, CodeKey, "failed to encode message", err)
	}

	out.VerboseLog("signed %d bytes for %s, link %s", len(msg.Data), sender, message.Link(cfg.LinkPrefix, msg.Signature))
	return out.Success(json.RawMessage(payload), string(payload))
}
