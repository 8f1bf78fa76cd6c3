package client_test

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/smartscreen/internal/client"
	"github.com/jmylchreest/smartscreen/internal/loopback"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newBackend() *loopback.Backend {
	return loopback.NewBackend(quietLogger())
}

// build assembles a client from b, applying mutate to the request first.
func build(t *testing.T, b *loopback.Backend, mutate ...func(*client.Request)) *client.Client {
	t.Helper()
	req := b.Request()
	for _, m := range mutate {
		m(&req)
	}
	c, err := client.Build(req)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// created returns the factories that ran, in order.
func created(b *loopback.Backend) []string {
	var out []string
	for _, call := range b.Recorder.Calls() {
		if strings.HasSuffix(call, ".create") {
			out = append(out, call)
		}
	}
	return out
}
