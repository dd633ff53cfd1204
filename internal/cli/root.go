package cli

import (
	"io"
	"log"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/svetsed/gosh/internal/cmd"
	"github.com/svetsed/gosh/internal/config"
	"github.com/svetsed/gosh/internal/shell"
)

type rootOptions struct {
	cfgPath string
	verbose bool
	command string
}

// NewRootCmd builds the gosh command. The interpreter's exit status is
// stored in *status.
func NewRootCmd(fs afero.Fs, status *int) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "gosh",
		Short:         "A small line-oriented command interpreter",
		Long:          `Runs commands, pipelines and sequences read from stdin or given with -c.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.Load(fs, opts.cfgPath)
			if err != nil {
				return err
			}

			// the debug log and command reports interleave on one stream
			stderr := cmd.ShareWriter(c.ErrOrStderr())

			logger := log.New(io.Discard, "", 0)
			if opts.verbose {
				logger = log.New(stderr, "[gosh] ", 0)
			}

			stdio := cmd.OSStdio()
			stdio.Stdin = c.InOrStdin()
			stdio.Stdout = c.OutOrStdout()
			stdio.Stderr = stderr

			session := shell.New(cfg,
				shell.WithStdio(stdio),
				shell.WithLogger(logger),
				shell.WithFs(fs),
			)

			if c.Flags().Changed("command") {
				code, err := session.Execute(opts.command)
				if exitCode, ok := shell.ExitCode(err); ok {
					code = exitCode
				}
				*status = code
				return nil
			}

			*status = session.Run()
			return nil
		},
	}

	rootCmd.Flags().StringVar(&opts.cfgPath, "config", "", "config file path")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log interpreter decisions to stderr")
	rootCmd.Flags().StringVarP(&opts.command, "command", "c", "", "execute one line and exit")

	return rootCmd
}

// Execute runs the root command against the host filesystem and returns
// the process exit status. This is called by main.main().
func Execute() int {
	status := 0
	if err := NewRootCmd(afero.NewOsFs(), &status).Execute(); err != nil {
		cmd.Report(nil, err)
		return 2
	}
	return status
}
