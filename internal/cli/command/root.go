package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/mirrorcheck-go/internal/cli/config"
	"github.com/yndnr/mirrorcheck-go/internal/cli/output"
	"github.com/yndnr/mirrorcheck-go/internal/core/domain"
	"github.com/yndnr/mirrorcheck-go/internal/core/service"
	"github.com/yndnr/mirrorcheck-go/internal/infra/buildinfo"
	"github.com/yndnr/mirrorcheck-go/internal/telemetry/logger"
	"github.com/yndnr/mirrorcheck-go/internal/telemetry/metric"
)

const appName = "mirrorcheck"

// errValidationFailed reports mismatches that were already written out.
var errValidationFailed = errors.New("mirror validation failed")

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":    "log.level",
	"log-format":   "log.format",
	"output":       "output.format",
	"metrics-file": "metrics.textfile",
}

// Run executes the command line and returns the process exit status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := App(stdout, stderr).RunContext(ctx, args)
	switch {
	case err == nil:
		return domain.ExitOK
	case errors.Is(err, domain.ErrUsage), errors.Is(err, errValidationFailed):
		return domain.ExitFailure
	default:
		PrintError(stderr, err)
		return domain.ExitFailure
	}
}

// App creates the CLI application writing to stdout and stderr.
func App(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:            appName,
		Usage:           "validate mirrored tables in a WiredTiger home directory",
		UsageText:       appName + " [flags] database_dir",
		Version:         buildinfo.String(),
		Flags:           globalFlags(),
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			return validate(c, stdout, stderr)
		},
		OnUsageError: func(c *cli.Context, err error, _ bool) error {
			printUsage(stdout)
			return domain.ErrUsage.WithCause(err)
		},
	}
}

// globalFlags returns the CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
			EnvVars: []string{"MIRRORCHECK_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report format: text, json, yaml",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus metrics to this textfile after the run",
		},
	}
}

// overrides returns the configuration keys of flags set on the command line.
func overrides(c *cli.Context) map[string]any {
	values := make(map[string]any)
	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			values[key] = c.String(flag)
		}
	}
	return values
}

func validate(c *cli.Context, stdout, stderr io.Writer) error {
	if c.NArg() != 1 {
		printUsage(stdout)
		return domain.ErrUsage.WithDetails(fmt.Sprintf("expected 1 argument, got %d", c.NArg()))
	}
	home := c.Args().First()

	cfg, err := config.Load(c.String("config"), overrides(c))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	lc := cfg.LoggerConfig()
	lc.Output = stderr
	log, err := logger.New(lc)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	reg := metric.NewRegistry()
	checker := service.NewChecker(service.CheckOptions{
		Storage: cfg.StorageOptions(),
		Compare: cfg.CompareOptions(),
	}, reg, log)

	report, err := checker.Check(c.Context, home)
	if err != nil {
		return err
	}

	if cfg.Metrics.Textfile != "" {
		if err := reg.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Error("metrics not written", "path", cfg.Metrics.Textfile, "error", err)
		}
	}

	if err := output.NewFormatter(output.Format(cfg.Output.Format)).Format(stdout, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if report.ExitCode() != domain.ExitOK {
		return errValidationFailed
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s database_dir\n", appName)
	fmt.Fprintln(w, "  database_dir is a POSIX pathname to a WiredTiger home directory")
}

// PrintError writes err to w on one line, followed by its underlying cause
// when err is a DomainError. Engine errors may carry a stack trace after
// their first line; only the first line is kept.
func PrintError(w io.Writer, err error) {
	msg := firstLine(err.Error())
	var de *domain.DomainError
	if errors.As(err, &de) && de.Cause != nil {
		msg += ": " + firstLine(de.Cause.Error())
	}
	fmt.Fprintf(w, "error: %s\n", msg)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
