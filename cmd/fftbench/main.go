// Command fftbench runs a matched-filtering workload against the plan cache
// and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	initLogger(os.Getenv("FFTBENCH_LOG"))

	app := newApp(os.Getenv("FFTBENCH_CONFIG"))
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// initLogger sets up apex/log with the cli handler. level defaults to info.
func initLogger(level string) {
	if level == "" {
		level = "info"
	}
	log.SetHandler(clihandler.New(os.Stderr))
	log.SetLevelFromString(level)
}
