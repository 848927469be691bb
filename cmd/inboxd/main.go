package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/matheus3301/inbox/internal/config"
	"github.com/matheus3301/inbox/internal/daemon"
	"github.com/matheus3301/inbox/internal/profile"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	name := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Keys may live in ~/.inbox/.env or a .env in the working directory.
	// Existing environment variables win over both.
	for _, path := range []string{profile.EnvPath(), ".env"} {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", path, err)
		}
	}

	cfg, err := config.LoadOrDefault(profile.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load config: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		daemon.Module(daemon.Params{
			Profile: name,
			Config:  cfg,
			Debug:   *debugFlag,
		}),
	)

	app.Run()
}
