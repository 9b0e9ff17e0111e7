package server

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"arenamover/arena"
)

func observeLog(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Log
	Log = zap.New(core).Sugar()
	t.Cleanup(func() { Log = prev })
	return logs
}

func TestRegisterOnce_RegistersSingleTime(t *testing.T) {
	observeLog(t)
	fake := &fakeArena{}
	nav := NewNavigator(fake, nil)

	for i := 0; i < 3; i++ {
		doc, err := nav.RegisterOnce(context.Background(), "navigator")
		require.NoError(t, err)
		obj, ok := doc.Object()
		require.True(t, ok)
		assert.Equal(t, "navigator", obj["role"])
	}
	assert.Equal(t, []string{"navigator"}, fake.registers)
}

func TestRegisterOnce_FailureIsLoggedNotFatal(t *testing.T) {
	logs := observeLog(t)
	metrics := &ControlMetrics{}
	fake := &fakeArena{err: errors.New("dial tcp: connection refused")}
	nav := NewNavigator(fake, metrics)

	_, err := nav.RegisterOnce(context.Background(), "navigator")
	require.Error(t, err)
	assert.Equal(t, int64(1), metrics.RegisterFailed)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())

	_, err = nav.RegisterOnce(context.Background(), "navigator")
	require.Error(t, err)
	assert.Len(t, fake.registers, 1)
}

func TestSendMove_LogsAndCounts(t *testing.T) {
	logs := observeLog(t)
	metrics := &ControlMetrics{}
	nav := NewNavigator(&fakeArena{}, metrics)

	doc, err := nav.SendMove(context.Background(), arena.DirUp)
	require.NoError(t, err)
	assert.Equal(t, `{"moved":"up"}`, doc.String())
	assert.Equal(t, int64(1), metrics.MovesSent)

	entries := logs.FilterMessage(`Move up {"moved":"up"}`).All()
	assert.Len(t, entries, 1)
}

func TestSendMove_Failure(t *testing.T) {
	logs := observeLog(t)
	metrics := &ControlMetrics{}
	nav := NewNavigator(&fakeArena{err: errors.New("boom")}, metrics)

	_, err := nav.SendMove(context.Background(), arena.DirLeft)
	require.Error(t, err)
	assert.Equal(t, int64(1), metrics.MovesFailed)
	assert.Equal(t, int64(0), metrics.MovesSent)
	assert.Equal(t, 1, logs.FilterMessage("Move failed left: boom").Len())
}

func TestHandleKey(t *testing.T) {
	observeLog(t)
	metrics := &ControlMetrics{}
	fake := &fakeArena{}
	nav := NewNavigator(fake, metrics)

	ev, ok := nav.HandleKey(context.Background(), "D")
	require.True(t, ok)
	assert.Equal(t, "move", ev.Type)
	assert.Equal(t, arena.DirRight, ev.Direction)

	_, ok = nav.HandleKey(context.Background(), "Enter")
	assert.False(t, ok)

	assert.Equal(t, []arena.Direction{arena.DirRight}, fake.movesSnapshot())
	assert.Equal(t, int64(1), metrics.KeysIgnored)
}

func TestHandleKey_ErrorEvent(t *testing.T) {
	observeLog(t)
	nav := NewNavigator(&fakeArena{err: errors.New("unreachable")}, nil)

	ev, ok := nav.HandleKey(context.Background(), "ArrowDown")
	require.True(t, ok)
	assert.Equal(t, "error", ev.Type)
	assert.Equal(t, arena.DirDown, ev.Direction)
	assert.Equal(t, "unreachable", ev.Error)
	assert.Nil(t, ev.Result)
}

func TestSendMove_ConcurrentCallsNotSerialized(t *testing.T) {
	observeLog(t)
	// 每个调用各自到达 Move，互不合并
	fake := &fakeArena{moveDone: make(chan arena.Direction)}
	nav := NewNavigator(fake, nil)

	var wg sync.WaitGroup
	for _, dir := range []arena.Direction{arena.DirLeft, arena.DirRight} {
		wg.Add(1)
		go func(d arena.Direction) {
			defer wg.Done()
			_, _ = nav.SendMove(context.Background(), d)
		}(dir)
	}
	got := []arena.Direction{<-fake.moveDone, <-fake.moveDone}
	wg.Wait()

	assert.ElementsMatch(t, []arena.Direction{arena.DirLeft, arena.DirRight}, got)
	assert.Len(t, fake.movesSnapshot(), 2)
}

func TestToggleAndState(t *testing.T) {
	observeLog(t)
	metrics := &ControlMetrics{}
	fake := &fakeArena{}
	nav := NewNavigator(fake, metrics)

	_, err := nav.Toggle(context.Background(), 3, 5)
	require.NoError(t, err)
	_, err = nav.State(context.Background())
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{3, 5}}, fake.toggles)
	assert.Equal(t, 1, fake.states)
	assert.Equal(t, int64(1), metrics.TogglesSent)
}
