package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/inbox/internal/api"
	"github.com/matheus3301/inbox/internal/bus"
	"github.com/matheus3301/inbox/internal/config"
	"github.com/matheus3301/inbox/internal/copilot"
	"github.com/matheus3301/inbox/internal/inbox"
	"github.com/matheus3301/inbox/internal/profile"
	"github.com/matheus3301/inbox/internal/selection"
	"github.com/matheus3301/inbox/internal/tui/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// startDaemon boots the full fx graph against a temp home and returns a
// connected client. Short /tmp paths keep the socket under the 104-char
// limit on macOS.
func startDaemon(t *testing.T, mutate func(*config.Config)) (*client.Client, string) {
	t.Helper()
	home, err := os.MkdirTemp("/tmp", "inbox-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(home) })
	t.Setenv(profile.HomeEnv, home)

	cfg := config.Default()
	cfg.Gateway.Provider = "canned"
	cfg.Cache.Backend = "memory"
	if mutate != nil {
		mutate(cfg)
	}
	socketPath := filepath.Join(home, "d.sock")

	app := fxtest.New(t,
		Module(Params{Profile: "test", SocketPath: socketPath, Config: cfg}),
		fx.NopLogger,
	)
	app.RequireStart()
	t.Cleanup(app.RequireStop)

	c, err := client.New(socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, home
}

func waitComplete(t *testing.T, c *client.Client, threadID, answerID string) copilot.QAEntry {
	t.Helper()
	var found copilot.QAEntry
	require.Eventually(t, func() bool {
		entries, err := c.Copilot.History(context.Background(), threadID, false)
		if err != nil {
			return false
		}
		for _, e := range entries {
			if e.ID == answerID && e.Status != copilot.StatusPending {
				found = e
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)
	return found
}

func TestDaemonInboxRoundTrip(t *testing.T) {
	c, _ := startDaemon(t, nil)
	ctx := context.Background()

	list, err := c.Inbox.ListThreads(ctx)
	require.NoError(t, err)
	require.Len(t, list.Threads, 5)
	assert.Equal(t, "1", list.Threads[0].ID)

	sel, err := c.Inbox.SelectThread(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "2", sel.Thread.ID)
	assert.False(t, sel.Thread.Unread)
	require.Len(t, sel.Copilot, 2, "empty history is projected from the thread")
	assert.True(t, sel.Copilot[0].Projected)

	th, err := c.Inbox.AppendMessage(ctx, "2", inbox.Agent, "Receipt sent.")
	require.NoError(t, err)
	require.Len(t, th.Messages, 3)
	assert.Equal(t, "Receipt sent.", th.Messages[2].Text)

	_, err = c.Inbox.GetThread(ctx, "missing")
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.Inbox.AppendMessage(ctx, "2", inbox.Agent, "   ")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestDaemonCopilotAsk(t *testing.T) {
	c, _ := startDaemon(t, nil)
	ctx := context.Background()

	sub, err := c.Copilot.Ask(ctx, "1", "Can we refund this order?")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "1", sub.ThreadID)

	answer := waitComplete(t, c, "1", sub.AnswerID)
	assert.Equal(t, copilot.StatusComplete, answer.Status)
	require.NotNil(t, answer.AnswerText)
	assert.Contains(t, *answer.AnswerText, "refund")
	assert.True(t, answer.FreshForAnimation)

	require.NoError(t, c.Copilot.MarkRevealed(ctx, "1", sub.AnswerID))
	entries, err := c.Copilot.History(ctx, "1", false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, copilot.RoleQuestion, entries[0].Role)
	assert.False(t, entries[1].FreshForAnimation)

	blank, err := c.Copilot.Ask(ctx, "1", "   ")
	require.NoError(t, err)
	assert.Nil(t, blank)

	_, err = c.Copilot.Ask(ctx, "missing", "hello")
	assert.Equal(t, codes.NotFound, status.Code(err))

	err = c.Copilot.MarkRevealed(ctx, "1", "no-such-entry")
	assert.Equal(t, codes.NotFound, status.Code(err))

	require.NoError(t, c.Copilot.ClearHistory(ctx, "1"))
	entries, err = c.Copilot.History(ctx, "1", false)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDaemonWatchEvents(t *testing.T) {
	c, _ := startDaemon(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := c.Inbox.WatchEvents(ctx, "inbox.")
	require.NoError(t, err)

	// The server subscribes asynchronously; repeat the idempotent select
	// until an event makes it through.
	deadline := time.After(5 * time.Second)
	for {
		_, err := c.Inbox.SelectThread(context.Background(), "3")
		require.NoError(t, err)
		select {
		case env, ok := <-events:
			require.True(t, ok, "stream closed early")
			assert.Equal(t, bus.KindThreadSelected, env.Kind)
			assert.Equal(t, "3", env.ThreadID)
			assert.NotEmpty(t, env.ID)
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("no event received")
		}
	}
}

func TestDaemonRefineAndFormat(t *testing.T) {
	c, _ := startDaemon(t, nil)
	ctx := context.Background()
	buffer := "hello there"
	span := selection.Span{Text: "hello", Start: 0, End: 5}

	resp, err := c.Refine.Refine(ctx, &api.RefineRequest{
		ThreadID: "1",
		Buffer:   buffer,
		Span:     span,
		Action:   string(selection.Polish),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Text)
	assert.Equal(t, resp.Text+" there", resp.Buffer)
	assert.Equal(t, len(resp.Text), resp.Cursor)

	_, err = c.Refine.Refine(ctx, &api.RefineRequest{Span: span, Action: "shout"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.Refine.Refine(ctx, &api.RefineRequest{Span: span, Action: string(selection.CustomTone)})
	assert.Equal(t, codes.InvalidArgument, status.Code(err), "custom tone needs a tone")

	edit, err := c.Refine.Format(ctx, buffer, span, selection.Bold)
	require.NoError(t, err)
	assert.Equal(t, "**hello** there", edit.Buffer)

	_, err = c.Refine.Format(ctx, "changed", span, selection.Bold)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestDaemonPersistsAcrossRestart(t *testing.T) {
	home, err := os.MkdirTemp("/tmp", "inbox-restart-*")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(home) }()
	t.Setenv(profile.HomeEnv, home)

	cfg := config.Default()
	cfg.Gateway.Provider = "canned"
	socketPath := filepath.Join(home, "d.sock")
	params := Params{Profile: "test", SocketPath: socketPath, Config: cfg}
	ctx := context.Background()

	app := fxtest.New(t, Module(params), fx.NopLogger)
	app.RequireStart()
	c, err := client.New(socketPath)
	require.NoError(t, err)
	sub, err := c.Copilot.Ask(ctx, "4", "What is the price?")
	require.NoError(t, err)
	waitComplete(t, c, "4", sub.AnswerID)
	_, err = c.Inbox.SelectThread(ctx, "4")
	require.NoError(t, err)
	_ = c.Close()
	app.RequireStop()

	_, err = os.Stat(profile.CachePath("test"))
	require.NoError(t, err, "sqlite cache created in the profile dir")

	app = fxtest.New(t, Module(params), fx.NopLogger)
	app.RequireStart()
	defer app.RequireStop()
	c, err = client.New(socketPath)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	list, err := c.Inbox.ListThreads(ctx)
	require.NoError(t, err)
	assert.Equal(t, "4", list.Selected)

	entries, err := c.Copilot.History(ctx, "4", false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, sub.AnswerID, entries[1].ID)
	assert.Equal(t, copilot.StatusComplete, entries[1].Status)
}

func TestSecondDaemonIsRejected(t *testing.T) {
	_, home := startDaemon(t, nil)

	app := fx.New(
		Module(Params{Profile: "test", SocketPath: filepath.Join(home, "d2.sock"), Config: config.Default()}),
		fx.NopLogger,
	)
	require.Error(t, app.Err(), "profile lock is held by the first daemon")
}

func TestProvideGatewayFallsBackWithoutKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg := config.Default()
	cfg.Gateway.Provider = "gemini"

	g, err := provideGateway(Params{Profile: "test", Config: cfg}, zaptest.NewLogger(t))
	require.NoError(t, err)

	reply, err := g.Ask(context.Background(), "refund please", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "refund")
}

// TestFxModuleWiring verifies the fx dependency graph resolves without errors.
func TestFxModuleWiring(t *testing.T) {
	home, err := os.MkdirTemp("/tmp", "inbox-fx-*")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(home) }()
	t.Setenv(profile.HomeEnv, home)

	cfg := config.Default()
	cfg.Cache.Backend = "memory"
	cfg.Gateway.Provider = "canned"
	err = fx.ValidateApp(Module(Params{Profile: "fxtest", SocketPath: filepath.Join(home, "d.sock"), Config: cfg}))
	require.NoError(t, err)
}
