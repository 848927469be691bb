package cache

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func validRecord(r record) error {
	if r.Name == "" {
		return errors.New("name required")
	}
	return nil
}

func observed(t *testing.T) (*Adapter, *Memory, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	mem := NewMemory()
	return New(mem, zap.New(core)), mem, logs
}

type failingBackend struct{ err error }

func (f failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.err
}

func (f failingBackend) Put(context.Context, string, []byte) error {
	return f.err
}

func (f failingBackend) Delete(context.Context, string) error {
	return f.err
}

func TestHistoryKey(t *testing.T) {
	assert.Equal(t, "copilot-history-42", HistoryKey("42"))
	assert.Equal(t, "copilot-history-default", HistoryKey(""))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	a, _, _ := observed(t)
	ctx := context.Background()

	require.NoError(t, Encode(ctx, a, "k", record{Name: "a", Count: 3}))

	got, ok := Decode(ctx, a, "k", validRecord)
	require.True(t, ok)
	assert.Equal(t, record{Name: "a", Count: 3}, got)
}

func TestDecodeMissing(t *testing.T) {
	a, _, logs := observed(t)

	_, ok := Decode[record](context.Background(), a, "missing", nil)
	assert.False(t, ok)
	assert.Zero(t, logs.Len(), "a missing key is not a warning")
}

func TestDecodeMalformedIsDiscarded(t *testing.T) {
	a, mem, logs := observed(t)
	ctx := context.Background()
	require.NoError(t, a.Save(ctx, "k", []byte("{not json")))

	got, ok := Decode[record](ctx, a, "k", validRecord)
	assert.False(t, ok)
	assert.Zero(t, got)
	assert.Equal(t, 0, mem.Len(), "corrupt record must be removed")

	entries := logs.FilterMessage("corrupt cache record discarded").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "k", entries[0].ContextMap()["key"])
}

func TestDecodeInvalidIsDiscarded(t *testing.T) {
	a, mem, logs := observed(t)
	ctx := context.Background()
	require.NoError(t, Encode(ctx, a, "k", record{Count: 1}))

	_, ok := Decode(ctx, a, "k", validRecord)
	assert.False(t, ok)
	assert.Equal(t, 0, mem.Len())
	assert.Equal(t, 1, logs.FilterMessage("corrupt cache record discarded").Len())
}

func TestLoadBackendFailureIsAbsent(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := New(failingBackend{err: errors.New("disk gone")}, zap.New(core))

	data, ok := a.Load(context.Background(), "k")
	assert.False(t, ok)
	assert.Nil(t, data)
	assert.Equal(t, 1, logs.FilterMessage("cache read failed").Len())
}

func TestSaveFailureIsWriteError(t *testing.T) {
	cause := errors.New("read-only")
	a := New(failingBackend{err: cause}, nil)

	err := a.Save(context.Background(), "k", []byte("v"))
	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "k", we.Key)
	assert.ErrorIs(t, err, cause)
}

func TestMemoryCopiesValues(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()
	v := []byte("abc")
	require.NoError(t, mem.Put(ctx, "k", v))
	v[0] = 'x'

	got, ok, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))
}

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("INBOX_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("INBOX_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	r, err := NewRedis(ctx, RedisOptions{Addr: addr, Prefix: "inbox-test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	a := New(r, nil)
	require.NoError(t, Encode(ctx, a, "k", record{Name: "r"}))
	got, ok := Decode(ctx, a, "k", validRecord)
	require.True(t, ok)
	assert.Equal(t, "r", got.Name)

	require.NoError(t, a.Remove(ctx, "k"))
	_, ok = a.Load(ctx, "k")
	assert.False(t, ok)
}
