package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/iwat/iostream/internal/application"
	"github.com/iwat/iostream/internal/config"
	"github.com/iwat/iostream/internal/domain"
	"github.com/iwat/iostream/internal/infrastructure/dblib"
	"github.com/iwat/iostream/internal/infrastructure/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type AppBuilder struct {
	fs      application.Filesystem
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
	journal application.Journal
	closer  io.Closer
	app     *application.App
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

func (b *AppBuilder) WithFilesystem(fs application.Filesystem) *AppBuilder {
	b.fs = fs
	return b
}

func (b *AppBuilder) WithStdout(w io.Writer) *AppBuilder {
	b.stdout = w
	return b
}

func (b *AppBuilder) WithStderr(w io.Writer) *AppBuilder {
	b.stderr = w
	return b
}

func (b *AppBuilder) WithJournal(journal application.Journal) *AppBuilder {
	b.journal = journal
	return b
}

// Build resolves the configuration from defaults, the optional config file
// and the flags set on the command line, in that order.
func (b *AppBuilder) Build(ctx context.Context, flags *pflag.FlagSet) error {
	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		cfg, err = config.LoadFile(path)
		if err != nil {
			return err
		}
	}
	if err := applyFlags(cfg, flags); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	b.logger = tui.NewLogger(b.stderr, level)
	slog.SetDefault(b.logger)

	if b.fs == nil {
		dir, _ := flags.GetString("dir")
		root, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve directory %s: %w", dir, err)
		}
		b.fs = osfs.New(root)
	}

	if b.journal == nil {
		noJournal, _ := flags.GetBool("no-journal")
		if noJournal {
			b.journal = application.NopJournal{}
		} else {
			q, err := dblib.Open(ctx, cfg.Journal)
			if err != nil {
				b.logger.Warn("journal unavailable, runs will not be recorded", "path", cfg.Journal, "error", err)
				b.journal = application.NopJournal{}
			} else {
				b.journal = q
				b.closer = q
			}
		}
	}

	b.app = application.NewApp(b.fs, b.stdout, b.logger, b.journal, application.Options{
		Input:      cfg.Input,
		Output:     cfg.Output,
		Payload:    cfg.Payload,
		BufferSize: cfg.BufferSize,
	})
	b.logger.Debug("configured", "input", cfg.Input, "output", cfg.Output, "buffer_size", cfg.BufferSize)
	return nil
}

func (b *AppBuilder) App() *application.App {
	return b.app
}

// Close releases the journal opened by Build
func (b *AppBuilder) Close() error {
	if b.closer == nil {
		return nil
	}
	err := b.closer.Close()
	b.closer = nil
	return err
}

// closeOnError wraps run so the journal is released when it fails. cobra
// skips the post run hooks after a RunE error.
func closeOnError(appBuilder *AppBuilder, run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if err != nil {
			if cerr := appBuilder.Close(); cerr != nil {
				slog.Warn("failed to close journal", "error", cerr)
			}
		}
		return err
	}
}

func applyFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	for name, target := range map[string]*string{
		"input":     &cfg.Input,
		"output":    &cfg.Output,
		"journal":   &cfg.Journal,
		"log-level": &cfg.LogLevel,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*target = value
	}
	return nil
}

func RootCmd(appBuilder *AppBuilder) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "iostream",
		Short: "iostream writes, reads, copies and prints files",
		Long: "iostream writes a fixed payload to the output file, prints the input file byte by byte,\n" +
			"appends the input file to the output file and prints the result line by line.",
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return appBuilder.Build(cmd.Context(), cmd.Flags())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return appBuilder.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			appBuilder.App().Run(cmd.Context())
			return nil
		},
	}
	rootFlags := pflag.NewFlagSet("root", pflag.ContinueOnError)
	rootFlags.String("config", "", "Path to YAML config file")
	rootFlags.String("dir", ".", "Directory relative paths are resolved against")
	rootFlags.String("input", domain.DefaultInputPath, "Input file")
	rootFlags.String("output", domain.DefaultOutputPath, "Output file")
	rootFlags.String("journal", config.DefaultJournalPath(), "Path to SQLite run journal")
	rootFlags.Bool("no-journal", false, "Do not record runs")
	rootFlags.String("log-level", "info", "Log level [debug,info,warn,error]")
	rootCmd.PersistentFlags().AddFlagSet(rootFlags)

	rootCmd.AddCommand(runCmd(appBuilder))
	for _, stage := range domain.AllStages() {
		rootCmd.AddCommand(stageCmd(appBuilder, stage))
	}
	rootCmd.AddCommand(historyCmd(appBuilder))

	return rootCmd
}
