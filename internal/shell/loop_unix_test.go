//go:build unix

package shell

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyInterrupt(t *testing.T) {
	ts := newTestSession(t, "", nil)

	stop := ts.notifyInterrupt()
	defer stop()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))
	assert.Eventually(t, ts.redraw.Load, time.Second, 10*time.Millisecond)

	// the loop turns the flag into a newline once
	ts.consumeRedraw()
	assert.Equal(t, "\n", ts.stdout.String())
	assert.False(t, ts.redraw.Load())
}
