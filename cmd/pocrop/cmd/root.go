package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/MeKo-Tech/pocrop/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by one command tree: its viper instance, the
// loaded configuration and the --config flag.
type app struct {
	loader  *config.Loader
	cfg     *config.Config
	cfgFile string
}

// rootCmd is the command tree used by Execute.
var rootCmd = NewRootCommand()

// Execute runs the root command and exits non-zero on failure. An interrupt
// cancels the running inference. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

// NewRootCommand builds a fresh command tree with its own configuration state.
func NewRootCommand() *cobra.Command {
	a := &app{loader: config.NewLoaderWithViper(viper.New())}

	root := &cobra.Command{
		Use:   "pocrop",
		Short: "Crop PDF margins inferred from the text layout",
		Long: `Infer the content area of the odd and even pages of a PDF from the
position of its text and crop the document to it.

Text fragments are clustered into blocks, running headers and footers are
discarded, and per-parity rectangles are estimated from robust percentiles of
the per-page content boxes. Both rectangles are finally given the same size so
that facing pages stay aligned.

Examples:
  pocrop crop book.pdf book-cropped.pdf
  pocrop crop book.pdf out.pdf --dry-run
  pocrop analyze book.pdf --format json
  pocrop config show`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/pocrop, /etc/pocrop)")
	flags.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Int("workers", 0, "max worker goroutines for page clustering (0=NumCPU)")
	flags.String("strategy", "percentile", "parity reduction strategy (percentile, median, envelope)")
	flags.String("mirror", "auto", "mirrored margin correction (auto, always, never)")
	flags.String("metrics-textfile", "", "write Prometheus metrics to this file after the run")

	v := a.loader.GetViper()
	_ = v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("margins.workers", flags.Lookup("workers"))
	_ = v.BindPFlag("margins.strategy", flags.Lookup("strategy"))
	_ = v.BindPFlag("margins.mirror_correction", flags.Lookup("mirror"))
	_ = v.BindPFlag("metrics.textfile", flags.Lookup("metrics-textfile"))

	root.AddCommand(
		newCropCommand(a),
		newAnalyzeCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return root
}

// setup loads the configuration and installs the JSON logger on w.
func (a *app) setup(w io.Writer) error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = a.loader.LoadWithFile(a.cfgFile)
	} else {
		a.cfg, err = a.loader.Load()
	}
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	slog.SetDefault(newLogger(w, a.cfg))
	return nil
}

// newLogger builds the JSON logger for cfg. --verbose takes precedence over
// the configured level.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
