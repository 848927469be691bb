package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/matheus3301/inbox/internal/config"
	"github.com/matheus3301/inbox/internal/profile"
	"github.com/matheus3301/inbox/internal/reveal"
	"github.com/matheus3301/inbox/internal/tui"
	"github.com/matheus3301/inbox/internal/tui/client"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	name := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadOrDefault(profile.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load config: %v\n", err)
		os.Exit(1)
	}

	socketPath := profile.SocketPath(name)

	if !daemonAlive(socketPath) {
		fmt.Fprintf(os.Stderr, "daemon not running for profile %q, starting...\n", name)
		if err := startDaemon(name); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start daemon: %v\n", err)
			os.Exit(1)
		}
		if !waitForDaemon(socketPath, 10*time.Second) {
			fmt.Fprintf(os.Stderr, "daemon did not become ready\n")
			os.Exit(1)
		}
	}

	c, err := client.New(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to daemon: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	granularity, _ := reveal.ParseGranularity(cfg.Reveal.Granularity)
	app := tui.NewApp(c, tui.Options{
		Profile:     name,
		Provider:    cfg.Gateway.Provider,
		Granularity: granularity,
		Pacing:      cfg.Reveal.Pacing(),
	})
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// daemonAlive makes a real call; a stale socket file accepts nothing.
func daemonAlive(socketPath string) bool {
	c, err := client.New(socketPath)
	if err != nil {
		return false
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = c.Inbox.ListThreads(ctx)
	return err == nil
}

func startDaemon(name string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	inboxd := filepath.Join(filepath.Dir(executable), "inboxd")

	if _, err := os.Stat(inboxd); err != nil {
		inboxd = "inboxd"
	}

	cmd := exec.Command(inboxd, "--profile", name)
	cmd.Stderr = os.Stderr
	return cmd.Start()
}

func waitForDaemon(socketPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if daemonAlive(socketPath) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
