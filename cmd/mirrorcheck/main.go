package main

import (
	"context"
	"os"

	"github.com/yndnr/mirrorcheck-go/internal/cli/command"
	"github.com/yndnr/mirrorcheck-go/internal/infra/shutdown"
	"github.com/yndnr/mirrorcheck-go/internal/telemetry/logger"
)

func main() {
	ctx, stop := shutdown.WithSignals(context.Background(), logger.Default())
	code := command.Run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
