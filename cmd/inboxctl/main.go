package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/matheus3301/inbox/internal/profile"
	"github.com/matheus3301/inbox/internal/tui/client"
	"github.com/spf13/cobra"
)

// session is shared by every subcommand once the root has connected.
type session struct {
	profile string
	jsonOut bool
	timeout time.Duration
	client  *client.Client
}

func main() {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:           "inboxctl",
		Short:         "Scriptable access to a running inbox daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.connect()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if s.client != nil {
				_ = s.client.Close()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&s.profile, "profile", "", "profile name (overrides config default)")
	rootCmd.PersistentFlags().BoolVar(&s.jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().DurationVar(&s.timeout, "timeout", 10*time.Second, "per-command deadline")

	rootCmd.AddCommand(
		threadsCmd(s),
		showCmd(s),
		selectCmd(s),
		replyCmd(s),
		askCmd(s),
		historyCmd(s),
		clearCmd(s),
		refineCmd(s),
		formatCmd(s),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (s *session) connect() error {
	name := profile.Resolve(s.profile)
	if err := profile.ValidateName(name); err != nil {
		return err
	}
	c, err := client.New(profile.SocketPath(name))
	if err != nil {
		return fmt.Errorf("cannot connect to daemon for profile %q: %w", name, err)
	}
	s.profile = name
	s.client = c
	return nil
}

func (s *session) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
