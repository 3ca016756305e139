package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/StephenStolk/analyseX-sub001/internal"
	"github.com/StephenStolk/analyseX-sub001/internal/config"
	"github.com/StephenStolk/analyseX-sub001/internal/container"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	// Structured output for log shippers
	internal.DefaultLogger.SetJSON()

	if _, err := c.Migrate(ctx); err != nil {
		return err
	}
	return c.Serve(ctx)
}
