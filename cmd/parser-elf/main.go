package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yifengyou/parser-elf/internal/archive"
	"github.com/yifengyou/parser-elf/internal/elf"
	"github.com/yifengyou/parser-elf/internal/modes"
	"github.com/yifengyou/parser-elf/internal/report"
	"github.com/yifengyou/parser-elf/internal/utils"
)

var (
	// Version information (set via ldflags during build)
	version   = utils.Version
	commit    = utils.Commit
	buildDate = utils.Date
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are the flags shared by every mode subcommand
type globalOptions struct {
	configFile string
	verbose    bool
	debug      bool
	demangle   bool
	strict     bool
	width      int
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "parser-elf",
		Short: "parser-elf - a tool for kernel development",
		Long: `parser-elf decodes ELF object files and prints their structures as text:
the file header, the program header table, the section header table and the
contents of symbol tables, string tables, relocation tables and any other
section as a hex dump.

Decoding problems in a well-identified file are reported as a single
"An error occurred" line and do not change the exit status.`,
		Version:       utils.GetVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	cmd.SetVersionTemplate("parser-elf {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "Configuration file path")
	pf.BoolVarP(&opts.verbose, "verbose", "V", false, "show verbose output")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug output")
	pf.BoolVar(&opts.demangle, "demangle", false, "demangle C++ and Rust symbol names")
	pf.BoolVar(&opts.strict, "strict-strings", false, "reject string tables holding invalid UTF-8")
	pf.IntVar(&opts.width, "width", 0, "bytes per hex dump row (default from config)")

	// Modes are only listed here; their dependencies are built per run
	registry, err := modes.DefaultRegistry(nil, nil)
	if err != nil {
		panic(err)
	}
	for _, mode := range registry.List() {
		cmd.AddCommand(newModeCmd(mode.Name(), mode.Description(), opts))
	}
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newModeCmd(name, short string, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <elf_file>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMode(cmd.Context(), cmd.OutOrStdout(), name, args, opts)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "parser-elf %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", commit)
			fmt.Fprintf(cmd.OutOrStdout(), "Built: %s\n", buildDate)
		},
	}
}

// runMode loads configuration, runs the mode over every file and prints the
// reports. Only missing input files produce a non-zero exit.
func runMode(ctx context.Context, out io.Writer, name string, paths []string, opts *globalOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	config, err := loadConfig(opts, bootstrapLogger(opts))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	loggerConfig := config.Log
	if opts.verbose || opts.debug {
		loggerConfig.Level = utils.LogLevelDebug
	}
	loggerConfig.ReportCaller = opts.debug
	logger := utils.NewLogger(loggerConfig)

	renderer := report.NewRenderer(renderOptions(config), logger)
	lister := archive.NewLister(config.Builtin.ArPath, config.Builtin.Timeout)
	registry, err := modes.DefaultRegistry(renderer, lister)
	if err != nil {
		return fmt.Errorf("failed to register modes: %w", err)
	}

	logger.WithComponent("parser-elf").Debugf("Running %s on %d file(s)", name, len(paths))

	runner := modes.NewRunner(registry, config.Workers, logger)
	rep, err := runner.Run(ctx, name, paths)
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	if _, err := rep.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	for _, res := range rep.Results {
		if res.Status == modes.StatusError {
			logger.WithFile("parser-elf", res.Path).Debugf("decode failed: %v", res.Error)
		}
	}
	if rep.Summary.NotFound > 0 {
		return fmt.Errorf("%d input file(s) not found", rep.Summary.NotFound)
	}
	return nil
}

// bootstrapLogger reports on configuration loading before the configured
// logger exists
func bootstrapLogger(opts *globalOptions) *utils.Logger {
	level := utils.LogLevelWarn
	if opts.verbose || opts.debug {
		level = utils.LogLevelDebug
	}
	return utils.NewLogger(utils.LoggerConfig{Level: level, Format: utils.LogFormatText})
}

// loadConfig applies command line flags on top of the loaded configuration
func loadConfig(opts *globalOptions, logger *utils.Logger) (*utils.Config, error) {
	manager := utils.NewConfigManager()
	manager.SetLogger(logger)

	if opts.demangle {
		manager.SetConfigValue("symbols.demangle", true)
	}
	if opts.strict {
		manager.SetConfigValue("strings.strict", true)
	}
	if opts.width > 0 {
		manager.SetConfigValue("hexdump.width", opts.width)
	}

	if err := manager.LoadConfig(opts.configFile); err != nil {
		return nil, err
	}
	return manager.GetConfig(), nil
}

func renderOptions(config *utils.Config) report.Options {
	ro := report.DefaultOptions()
	ro.DumpWidth = config.HexDump.Width
	if config.HexDump.Placeholder != "" {
		ro.DumpPlaceholder = config.HexDump.Placeholder[0]
	}
	if config.Strings.Strict {
		ro.StringMode = elf.Strict
	}
	ro.Demangle = config.Symbols.Demangle
	ro.Dispatch = elf.DispatchOptions{
		Rel:    config.Decode.Rel,
		DynSym: config.Decode.DynSym,
	}
	return ro
}
