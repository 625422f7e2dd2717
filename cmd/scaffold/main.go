package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dusk-indust/scaffold/internal/config"
	"github.com/dusk-indust/scaffold/internal/export"
	"github.com/dusk-indust/scaffold/internal/mcptools"
	"github.com/dusk-indust/scaffold/internal/orchestrator"
	"github.com/dusk-indust/scaffold/internal/project"
	"github.com/dusk-indust/scaffold/internal/status"
)

// CLI flags parsed from command line.
type cliFlags struct {
	ProjectRoot  string
	OutputDir    string
	Description  string
	Technologies string
	Features     string
	Architecture string
	OneShot      bool
	NoTests      bool
	Verbose      bool
	ServeMCP     bool
	Version      bool
}

// version is set by goreleaser at build time.
var version = "dev"

// reportName is written next to the generated files after a pipeline run.
const reportName = ".scaffold-run.json"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("scaffold", flag.ContinueOnError)
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "directory holding scaffold.yml and .env")
	fs.StringVar(&flags.OutputDir, "out", "scaffold-out", "directory to write the generated project to")
	fs.StringVar(&flags.Description, "description", "", "what the project should do")
	fs.StringVar(&flags.Technologies, "tech", "", "comma-separated technologies")
	fs.StringVar(&flags.Features, "features", "", "comma-separated features")
	fs.StringVar(&flags.Architecture, "arch", "", "architecture style (default: modular)")
	fs.BoolVar(&flags.OneShot, "oneshot", false, "generate the whole project in a single model call")
	fs.BoolVar(&flags.NoTests, "no-tests", false, "skip test generation")
	fs.BoolVar(&flags.Verbose, "verbose", false, "print per-file progress")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as an MCP server on stdio")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	// Subcommands that need no backend.
	switch fs.Arg(0) {
	case "init":
		return runInit(flags.ProjectRoot, hasFlag(fs.Args()[1:], "--force"))
	case "parse":
		return runParse(fs.Args()[1:], flags.OutputDir)
	}

	cfg, err := config.Load(flags.ProjectRoot)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog := newLogger(cfg.LogFile)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	pipeline := orchestrator.NewPipeline(cfg.Orchestrator(logger), b)

	if flags.ServeMCP {
		defer pipeline.Close()
		return mcptools.RunStdio(ctx, mcptools.NewScaffoldMCPServer(pipeline))
	}

	if strings.TrimSpace(flags.Description) == "" && fs.NArg() > 0 {
		flags.Description = strings.Join(fs.Args(), " ")
	}
	if strings.TrimSpace(flags.Description) == "" {
		return errors.New("usage: scaffold [flags] --description \"what to build\"")
	}
	r := project.NewRequirements(flags.Description, splitList(flags.Technologies), splitList(flags.Features), flags.Architecture)

	if flags.OneShot {
		defer pipeline.Close()
		return runOneShot(ctx, pipeline, r, flags.OutputDir)
	}
	return runPipeline(ctx, pipeline, r, flags)
}

func runPipeline(ctx context.Context, pipeline *orchestrator.Pipeline, r project.Requirements, flags cliFlags) error {
	tracker := status.NewTracker()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range pipeline.Progress() {
			tracker.Observe(ev)
			if ev.Section == ev.Stage.String() {
				if ev.Status == orchestrator.ProgressWorking {
					fmt.Println(orchestrator.FormatStageHeader(ev.RunID, ev.Stage))
					continue
				}
			} else if !flags.Verbose {
				continue
			}
			fmt.Println(orchestrator.FormatProgress(ev))
		}
	}()

	var opts []orchestrator.RunOption
	if flags.NoTests {
		opts = append(opts, orchestrator.WithTests(false))
	}
	res, runErr := pipeline.PlanAndGenerate(ctx, r, opts...)
	// Closing ends the printer goroutine once buffered events are drained.
	pipeline.Close()
	<-done

	if res == nil {
		return runErr
	}

	m, err := export.WriteBundle(flags.OutputDir, res.Bundle)
	if err != nil {
		return err
	}

	summary := status.Summarize(res)
	summary.Stages = tracker.Stages()
	if err := export.WriteJSON(filepath.Join(flags.OutputDir, reportName), summary); err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(summary.Format())
	fmt.Printf("\nWrote %d files to %s\n", len(m.Files), flags.OutputDir)
	if runErr != nil {
		return fmt.Errorf("run incomplete (next stage: %d): %w", tracker.NextStage(), runErr)
	}
	return nil
}

func runOneShot(ctx context.Context, pipeline *orchestrator.Pipeline, r project.Requirements, outDir string) error {
	b, err := pipeline.GenerateProject(ctx, r)
	if err != nil {
		return err
	}
	m, err := export.WriteBundle(outDir, b)
	if err != nil {
		return err
	}
	for _, f := range m.Files {
		fmt.Printf("  created %s (%d lines)\n", f.Path, f.Lines)
	}
	fmt.Printf("\nWrote %d files to %s\n", len(m.Files), outDir)
	return nil
}

// newLogger sends log output to a rotating file when path is set, otherwise
// to stderr. stdout is reserved for the MCP protocol in --serve-mcp mode.
func newLogger(path string) (*log.Logger, func()) {
	if path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    15, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		return log.New(lj, "", log.LstdFlags), func() { _ = lj.Close() }
	}
	return log.New(os.Stderr, "", log.LstdFlags), func() {}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == name || a == strings.TrimPrefix(name, "-") {
			return true
		}
	}
	return false
}
