package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dwitter/internal/harness"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
}

// ReplayResult is the outcome of replaying one scenario.
type ReplayResult struct {
	Name     string   `json:"name"`
	HTML     string   `json:"html"`
	Rendered []string `json:"rendered"`
	Queue    int      `json:"queue"`
	Dropped  int64    `json:"dropped"`
	Pass     bool     `json:"pass"`
	Errors   []string `json:"errors,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Replay a page scenario",
		Long: `Run a scenario against a fresh page and print the rendered container
and the number of messages still waiting.

With --config the page uses the configured template, element ids and
link prefix; otherwise each message renders as <li>title</li>. Page logs
go to stderr at the configured level. Assertion failures are
listed but do not change the exit code; use "dwitter test" for that.

Examples:
  dwitter replay scenarios/scoped_meta.yaml
  dwitter replay scenarios/scoped_meta.yaml -v --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	cfg, err := opts.loadConfig()
	if err != nil {
		return out.Fail(ExitCommandError, CodeConfig, "failed to load config", err)
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return out.Fail(ExitCommandError, CodeScenario, "failed to load scenario", err)
	}

	runOpts := []harness.Option{harness.WithLogger(opts.newLogger(cfg, cmd.ErrOrStderr()))}
	if opts.ConfigPath != "" {
		runOpts = append(runOpts, harness.WithConfig(cfg))
	}
	result, err := harness.Run(scenario, runOpts...)
	if err != nil {
		return out.Fail(ExitCommandError, CodeScenario, "failed to run scenario", err)
	}

	replay := ReplayResult{
		Name:     scenario.Name,
		HTML:     result.HTML,
		Rendered: result.Final.Rendered,
		Queue:    result.Final.Queue,
		Dropped:  result.Final.Dropped,
		Pass:     result.Pass,
		Errors:   result.Errors,
	}

	lines := []string{result.HTML, fmt.Sprintf("queue: %d", replay.Queue)}
	if replay.Dropped > 0 {
		lines = append(lines, fmt.Sprintf("dropped: %d", replay.Dropped))
	}
	for _, e := range replay.Errors {
		lines = append(lines, "assertion: "+e)
	}
	return out.Success(replay, lines...)
}
