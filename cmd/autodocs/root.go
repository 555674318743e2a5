package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"autodocs/internal/catalog"
	"autodocs/internal/config"
	"autodocs/internal/fsio"
	"autodocs/internal/logging"
	"autodocs/internal/logparse"
	"autodocs/internal/pipeline"
	"autodocs/internal/report"
	"autodocs/internal/runctx"
	"autodocs/internal/source"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	path           string
	fileOfPaths    string
	dotnetBuildLog string
	outputDir      string
	configFile     string
	reportsDir     string
	concurrency    int
	dryRun         bool
	logLevel       string
	logFormat      string
}

var rootCmd = &cobra.Command{
	Use:   "autodocs",
	Short: "Rewrite source files with generated code documentation",
	Long: `Autodocs collects source files from directories, path lists, git URLs,
and dotnet build logs, sends each one to an LLM provider to fill in
missing code documentation, and writes the rewritten files back in
place or into an output directory.

A run ends with success and failure report files plus a one-line
summary, and exits non-zero when any file failed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	RunE: runRoot,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&rootFlags.path, "path", "p", "", "File, directory, or git URL to document")
	f.StringVarP(&rootFlags.fileOfPaths, "file-of-paths", "f", "", "File listing sources to document, one per line")
	f.StringVar(&rootFlags.dotnetBuildLog, "dotnet-build-log", "", "dotnet build log to scan for missing-doc warnings")
	f.StringVarP(&rootFlags.outputDir, "output-directory", "o", "", "Write rewritten files here instead of in place")
	f.StringVar(&rootFlags.configFile, "config", "", "Config file (default: "+config.DefaultFile+" when present)")
	f.StringVar(&rootFlags.reportsDir, "reports-dir", "", "Directory for the success and failure reports")
	f.IntVar(&rootFlags.concurrency, "concurrency", 0, "Number of files rewritten at once")
	f.BoolVar(&rootFlags.dryRun, "dry-run", false, "Use the fake provider and keep results in memory")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(parseLogCmd)
	rootCmd.Version = version
}

func runRoot(cmd *cobra.Command, args []string) error {
	if rootFlags.path == "" && rootFlags.fileOfPaths == "" && rootFlags.dotnetBuildLog == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to do: pass --path, --file-of-paths, or --dotnet-build-log")
		return cmd.Help()
	}

	cfg, err := config.Load(rootFlags.configFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	log := logging.New("cli")

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = runctx.WithRunID(ctx, runctx.NewRunID(time.Now()))

	var specs []string
	if rootFlags.path != "" {
		specs = append(specs, rootFlags.path)
	}
	if rootFlags.fileOfPaths != "" {
		listed, err := source.FromListFile(rootFlags.fileOfPaths)
		if err != nil {
			return fmt.Errorf("read path list: %w", err)
		}
		specs = append(specs, listed...)
	}

	resolver := source.NewResolver(nil)
	cat := catalog.New(nil)
	groups := [][]*catalog.File{cat.FromPaths(resolver.ResolveAll(ctx, specs))}

	if rootFlags.dotnetBuildLog != "" {
		text, err := fsio.ReadText(rootFlags.dotnetBuildLog)
		if err != nil {
			return fmt.Errorf("read build log: %w", err)
		}
		findings := logparse.Parse(text)
		if findings.Skipped() > 0 {
			log.Debug("malformed build log lines skipped", "count", findings.Skipped())
		}
		groups = append(groups, cat.FromFindings(findings))
	}

	files := cat.Merge(groups...)

	svc, err := buildService(ctx, cfg, rootFlags.dryRun)
	if err != nil {
		return err
	}
	defer svc.Close()

	store, cleanup, err := buildStore(cfg, rootFlags.outputDir, rootFlags.dryRun)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := &pipeline.Runner{
		Service:       svc,
		Store:         store,
		Concurrency:   cfg.Concurrency,
		HeaviestFirst: cfg.HeaviestFirst,
	}
	outcomes := runner.Run(ctx, files)

	sum, err := report.Write(outcomes, cfg.ReportsDir)
	if err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), sum.String())

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", sum.Failed, sum.Processed)
	}
	return nil
}

// applyFlags lays command-line values over the loaded config. Only flags
// the user actually set win, so config file and environment values survive
// an unset flag's zero value.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = rootFlags.concurrency
	}
	if cmd.Flags().Changed("reports-dir") {
		cfg.ReportsDir = rootFlags.reportsDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = rootFlags.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = rootFlags.logFormat
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
