package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/habiliai/agentloop/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate(t *testing.T) {
	gate := engine.NewGate()
	require.NoError(t, gate.Wait(t.Context()))
	assert.False(t, gate.Paused())

	assert.True(t, gate.Toggle())
	assert.True(t, gate.Paused())

	released := make(chan error, 1)
	go func() {
		released <- gate.Wait(t.Context())
	}()

	select {
	case <-released:
		t.Fatal("wait returned while paused")
	case <-time.After(30 * time.Millisecond):
	}

	assert.False(t, gate.Toggle())
	select {
	case err := <-released:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait did not return after resume")
	}
}

func TestGatePauseTwiceResumeOnce(t *testing.T) {
	gate := engine.NewGate()
	gate.Pause()
	gate.Pause()
	gate.Resume()
	gate.Resume()
	assert.NoError(t, gate.Wait(t.Context()))
}

func TestGateWaitHonoursContext(t *testing.T) {
	gate := engine.NewGate()
	gate.Pause()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.ErrorIs(t, gate.Wait(ctx), context.Canceled)

	gate.Resume()
	assert.ErrorIs(t, gate.Wait(ctx), context.Canceled)
}
