package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

const (
	exitOK           = 0
	exitPreflight    = 1
	exitDeployFailed = 2
)

// Runner locates and runs external commands
type Runner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (execRunner) Run(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Deployer runs the pre-flight checks and the deploy command
type Deployer struct {
	config *Config
	runner Runner
	out    io.Writer
	stat   func(name string) (os.FileInfo, error)

	// Strict makes a failed deploy exit non-zero. Pre-flight failures
	// always do.
	Strict bool
}

func NewDeployer(config *Config, runner Runner, out io.Writer) *Deployer {
	return &Deployer{
		config: config,
		runner: runner,
		out:    out,
		stat:   os.Stat,
	}
}

// Run returns the process exit code
func (d *Deployer) Run(ctx context.Context) int {
	cli := d.config.CLI

	if !d.ensureCLI(ctx) {
		return exitPreflight
	}

	if len(d.config.AuthCheck) > 0 {
		if err := d.runner.Run(ctx, io.Discard, io.Discard, cli, d.config.AuthCheck...); err != nil {
			d.printf("Error: %s is not authenticated.\n", cli)
			if d.config.LoginHint != "" {
				d.printf("Run `%s` and try again.\n", d.config.LoginHint)
			}
			return exitPreflight
		}
	}

	if d.config.ConfigFile != "" {
		if _, err := d.stat(d.config.ConfigFile); err != nil {
			d.printf("Error: deployment config %s not found.\n", d.config.ConfigFile)
			d.printf("Create it or set config_file in deploy.yaml.\n")
			return exitPreflight
		}
	}

	d.printf("Deploying with %s %s ...\n", cli, strings.Join(d.config.Deploy, " "))
	if err := d.runner.Run(ctx, d.out, d.out, cli, d.config.Deploy...); err != nil {
		d.printf("Deployment failed: %v\n", err)
		d.printf("Check the output above, confirm the account can deploy this app, then run the helper again.\n")
		if d.Strict {
			return exitDeployFailed
		}
		return exitOK
	}

	d.printf("Deployment completed successfully.\n")
	return exitOK
}

// ensureCLI reports whether the CLI is on PATH, installing it if needed
func (d *Deployer) ensureCLI(ctx context.Context) bool {
	cli := d.config.CLI
	if _, err := d.runner.LookPath(cli); err == nil {
		return true
	}

	if len(d.config.Install) == 0 {
		d.printf("Error: %s not found and no install command is configured.\n", cli)
		return false
	}

	d.printf("%s not found, installing with: %s\n", cli, strings.Join(d.config.Install, " "))
	if err := d.runner.Run(ctx, d.out, d.out, d.config.Install[0], d.config.Install[1:]...); err != nil {
		d.printf("Error: failed to install %s: %v\n", cli, err)
		return false
	}

	if _, err := d.runner.LookPath(cli); err != nil {
		d.printf("Error: %s is still not on PATH after installing.\n", cli)
		return false
	}
	return true
}

func (d *Deployer) printf(format string, args ...interface{}) {
	fmt.Fprintf(d.out, format, args...)
}
