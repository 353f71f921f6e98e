package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vsinha/sop/pkg/interfaces/cli/commands"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to YAML config file")
		addr       = flag.String("addr", "", "Listen address (overrides server.host and server.port)")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := commands.NewServeCommand(commands.ServeConfig{
		ConfigFile: *configFile,
		Addr:       *addr,
		Verbose:    *verbose,
	})
	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
