package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matheus3301/inbox/internal/api"
	"github.com/matheus3301/inbox/internal/bus"
	"github.com/matheus3301/inbox/internal/copilot"
	"github.com/matheus3301/inbox/internal/inbox"
	"github.com/matheus3301/inbox/internal/selection"
	"github.com/spf13/cobra"
)

func threadsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "threads",
		Short: "List conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.context()
			defer cancel()
			resp, err := s.client.Inbox.ListThreads(ctx)
			if err != nil {
				return err
			}
			if s.jsonOut {
				outputJSON(resp)
				return nil
			}
			if len(resp.Threads) == 0 {
				fmt.Println("No conversations.")
				return nil
			}
			for _, t := range resp.Threads {
				marker := " "
				if t.ID == resp.Selected {
					marker = ">"
				} else if t.Unread {
					marker = "*"
				}
				fmt.Printf("%s %-6s %-24s %3d  %s\n", marker, t.ID, t.Participant, t.MessageCount, t.Preview)
			}
			return nil
		},
	}
}

func showCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show <thread-id>",
		Short: "Print a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.context()
			defer cancel()
			th, err := s.client.Inbox.GetThread(ctx, args[0])
			if err != nil {
				return err
			}
			if s.jsonOut {
				outputJSON(th)
				return nil
			}
			printThread(th)
			return nil
		},
	}
}

func selectCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "select <thread-id>",
		Short: "Make a conversation current and print its copilot view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.context()
			defer cancel()
			resp, err := s.client.Inbox.SelectThread(ctx, args[0])
			if err != nil {
				return err
			}
			if s.jsonOut {
				outputJSON(resp)
				return nil
			}
			printThread(resp.Thread)
			if len(resp.Copilot) > 0 {
				fmt.Println()
				printEntries(resp.Copilot)
			}
			return nil
		},
	}
}

func replyCmd(s *session) *cobra.Command {
	var asCustomer bool
	cmd := &cobra.Command{
		Use:   "reply <thread-id> <text>",
		Short: "Append a message to a conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.context()
			defer cancel()
			sender := inbox.Agent
			if asCustomer {
				sender = inbox.Customer
			}
			th, err := s.client.Inbox.AppendMessage(ctx, args[0], sender, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if s.jsonOut {
				outputJSON(th)
				return nil
			}
			fmt.Printf("Appended to %s (%d messages)\n", th.ID, len(th.Messages))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asCustomer, "customer", false, "append as the customer instead of the agent")
	return cmd
}

func askCmd(s *session) *cobra.Command {
	var (
		wait    bool
		waitFor time.Duration
	)
	cmd := &cobra.Command{
		Use:   "ask <thread-id> <question>",
		Short: "Ask the copilot about a conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.context()
			if wait {
				cancel()
				ctx, cancel = context.WithTimeout(context.Background(), waitFor)
			}
			defer cancel()
			threadID := args[0]

			var events <-chan api.EventEnvelope
			if wait {
				var err error
				if events, err = s.client.Inbox.WatchEvents(ctx, "copilot."); err != nil {
					return err
				}
			}

			sub, err := s.client.Copilot.Ask(ctx, threadID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if sub == nil {
				return fmt.Errorf("question is empty")
			}
			if !wait {
				if s.jsonOut {
					outputJSON(sub)
					return nil
				}
				fmt.Printf("Submitted %s (answer %s)\n", sub.QuestionID, sub.AnswerID)
				return nil
			}

			answer, err := waitForAnswer(ctx, s, events, sub)
			if err != nil {
				return err
			}
			if s.jsonOut {
				outputJSON(answer)
				return nil
			}
			printEntries([]copilot.QAEntry{answer})
			return nil
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "block until the answer resolves")
	cmd.Flags().DurationVar(&waitFor, "wait-timeout", time.Minute, "how long --wait blocks")
	return cmd
}

// waitForAnswer returns once the answer entry leaves pending. The history
// is polled as well because the event stream may attach after resolution.
func waitForAnswer(ctx context.Context, s *session, events <-chan api.EventEnvelope, sub *copilot.Submission) (copilot.QAEntry, error) {
	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()

	check := func() (copilot.QAEntry, bool, error) {
		entries, err := s.client.Copilot.History(ctx, sub.ThreadID, false)
		if err != nil {
			return copilot.QAEntry{}, false, err
		}
		for _, e := range entries {
			if e.ID == sub.AnswerID && e.Status != copilot.StatusPending {
				return e, true, nil
			}
		}
		return copilot.QAEntry{}, false, nil
	}

	for {
		select {
		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if evt.Kind != bus.KindEntryResolved || evt.ThreadID != sub.ThreadID {
				continue
			}
		case <-tick.C:
		case <-ctx.Done():
			return copilot.QAEntry{}, fmt.Errorf("waiting for answer: %w", ctx.Err())
		}
		e, done, err := check()
		if err != nil {
			return copilot.QAEntry{}, err
		}
		if done {
			return e, nil
		}
	}
}

func historyCmd(s *session) *cobra.Command {
	var view bool
	cmd := &cobra.Command{
		Use:   "history <thread-id>",
		Short: "Print the copilot history of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.context()
			defer cancel()
			entries, err := s.client.Copilot.History(ctx, args[0], view)
			if err != nil {
				return err
			}
			if s.jsonOut {
				outputJSON(entries)
				return nil
			}
			if len(entries) == 0 {
				fmt.Println("No copilot history.")
				return nil
			}
			printEntries(entries)
			return nil
		},
	}
	cmd.Flags().BoolVar(&view, "view", false, "project thread messages when the history is empty")
	return cmd
}

func clearCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <thread-id>",
		Short: "Clear the copilot history of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.context()
			defer cancel()
			if err := s.client.Copilot.ClearHistory(ctx, args[0]); err != nil {
				return err
			}
			if !s.jsonOut {
				fmt.Println("Cleared.")
			}
			return nil
		},
	}
}

// spanFlags selects a span either by byte offsets into --buffer or, with
// no buffer, as the whole of the positional text.
type spanFlags struct {
	buffer     string
	start, end int
}

func (f *spanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.buffer, "buffer", "", "full composer text the span belongs to")
	cmd.Flags().IntVar(&f.start, "start", 0, "span start byte offset into --buffer")
	cmd.Flags().IntVar(&f.end, "end", -1, "span end byte offset into --buffer (default: end of buffer)")
}

func (f *spanFlags) span(args []string) (selection.Span, error) {
	if f.buffer == "" {
		text := strings.Join(args, " ")
		if strings.TrimSpace(text) == "" {
			return selection.Span{}, fmt.Errorf("nothing to refine: pass text or --buffer")
		}
		return selection.Span{Text: text, Start: 0, End: len(text)}, nil
	}
	end := f.end
	if end < 0 {
		end = len(f.buffer)
	}
	if f.start < 0 || f.start > end || end > len(f.buffer) {
		return selection.Span{}, fmt.Errorf("span [%d,%d) is outside the buffer", f.start, end)
	}
	return selection.Span{Text: f.buffer[f.start:end], Start: f.start, End: end}, nil
}

func refineCmd(s *session) *cobra.Command {
	var (
		sf       spanFlags
		threadID string
		action   string
		opts     selection.Options
	)
	cmd := &cobra.Command{
		Use:   "refine [text]",
		Short: "Rewrite text with a refinement action",
		Long:  "Actions: " + strings.Join(actionNames(), ", "),
		RunE: func(cmd *cobra.Command, args []string) error {
			span, err := sf.span(args)
			if err != nil {
				return err
			}
			ctx, cancel := s.context()
			defer cancel()
			resp, err := s.client.Refine.Refine(ctx, &api.RefineRequest{
				ThreadID: threadID,
				Buffer:   sf.buffer,
				Span:     span,
				Action:   action,
				Options:  opts,
			})
			if err != nil {
				return err
			}
			if s.jsonOut {
				outputJSON(resp)
				return nil
			}
			if sf.buffer != "" {
				fmt.Println(resp.Buffer)
				return nil
			}
			fmt.Println(resp.Text)
			return nil
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&threadID, "thread", "", "conversation used as context")
	cmd.Flags().StringVar(&action, "action", string(selection.Polish), "refinement action")
	cmd.Flags().StringVar(&opts.Language, "language", "", "translate target language")
	cmd.Flags().StringVar(&opts.Tone, "tone", "", "tone of voice for custom-tone")
	return cmd
}

func formatCmd(s *session) *cobra.Command {
	var (
		sf    spanFlags
		style string
	)
	cmd := &cobra.Command{
		Use:   "format [text]",
		Short: "Apply markdown formatting to a span",
		RunE: func(cmd *cobra.Command, args []string) error {
			span, err := sf.span(args)
			if err != nil {
				return err
			}
			buffer := sf.buffer
			if buffer == "" {
				buffer = span.Text
			}
			ctx, cancel := s.context()
			defer cancel()
			resp, err := s.client.Refine.Format(ctx, buffer, span, selection.Style(style))
			if err != nil {
				return err
			}
			if s.jsonOut {
				outputJSON(resp)
				return nil
			}
			fmt.Println(resp.Buffer)
			return nil
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&style, "style", string(selection.Bold), "bold, italic, code, h1 or h2")
	return cmd
}

func actionNames() []string {
	kinds := selection.Actions()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func printThread(th inbox.Thread) {
	fmt.Printf("%s  %s", th.ID, th.Participant.Name)
	if th.Participant.Email != "" {
		fmt.Printf(" <%s>", th.Participant.Email)
	}
	fmt.Println()
	if th.Subject != "" {
		fmt.Printf("Subject: %s\n", th.Subject)
	}
	for _, m := range th.Messages {
		fmt.Printf("[%s] %-8s %s\n", m.Timestamp.Local().Format("Jan 02 15:04"), m.Sender, m.Text)
	}
}

func printEntries(entries []copilot.QAEntry) {
	for _, e := range entries {
		switch e.Role {
		case copilot.RoleQuestion:
			fmt.Printf("Q: %s\n", e.QuestionText)
		default:
			switch e.Status {
			case copilot.StatusPending:
				fmt.Println("A: (thinking)")
			case copilot.StatusFailed:
				fmt.Printf("A: [failed] %s\n", deref(e.AnswerText))
			default:
				fmt.Printf("A: %s\n", deref(e.AnswerText))
			}
			for _, src := range e.Sources {
				fmt.Printf("   - %s (%s)\n", src.Title, src.ID)
			}
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
