package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"
)

func main() {
	configPath := flag.String("config", "deploy.yaml", "path to the deploy configuration")
	strict := flag.Bool("strict", false, "exit with code 2 when the deploy command fails")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall time limit")
	flag.Parse()

	config, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitPreflight)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	deployer := NewDeployer(config, execRunner{}, os.Stdout)
	deployer.Strict = *strict

	code := deployer.Run(ctx)
	cancelTimeout()
	cancel()
	os.Exit(code)
}
