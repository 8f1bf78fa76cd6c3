package loopback_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/smartscreen/internal/client"
	"github.com/jmylchreest/smartscreen/internal/loopback"
)

func TestBackend_RequestBuildsClient(t *testing.T) {
	b := loopback.NewBackend(slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := b.Request()
	assert.Same(t, b.Context, req.Network.Context)

	c, err := client.Build(req)
	require.NoError(t, err)
	c.Close()
}

func TestContextManager_SetState(t *testing.T) {
	var m loopback.ContextManager
	assert.Empty(t, m.State("SpeechRecognizer.RecognizerState"))

	m.SetState("SpeechRecognizer", "RecognizerState", "IDLE")
	assert.Equal(t, "IDLE", m.State("SpeechRecognizer.RecognizerState"))
}
