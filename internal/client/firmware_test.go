package client_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/client"
)

func TestSetFirmwareVersion_CreatesSenderOnce(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	require.Nil(t, b.SoftwareInfoSender())

	var wg sync.WaitGroup
	results := make([]bool, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.SetFirmwareVersion(capability.FirmwareVersion(i + 1))
		}(i)
	}
	wg.Wait()

	for _, ok := range results {
		assert.True(t, ok)
	}
	assert.Equal(t, 1, b.Recorder.Count("software-info-sender.create"))
	assert.Equal(t, 15, b.Recorder.Count("software-info-sender.setFirmwareVersion"))
	require.NotNil(t, b.SoftwareInfoSender())
	assert.True(t, b.SoftwareInfoSender().Version().Valid())
}

func TestSetFirmwareVersion_UsesSenderFromBuild(t *testing.T) {
	b := newBackend()
	c := build(t, b, func(r *client.Request) { r.Software.FirmwareVersion = 7 })
	sender := b.SoftwareInfoSender()
	require.NotNil(t, sender)
	assert.Equal(t, capability.FirmwareVersion(7), sender.Version())

	assert.True(t, c.SetFirmwareVersion(8))

	assert.Equal(t, capability.FirmwareVersion(8), sender.Version())
	assert.Equal(t, 1, b.Recorder.Count("software-info-sender.create"))
}

func TestSetFirmwareVersion_RejectsInvalid(t *testing.T) {
	b := newBackend()
	c := build(t, b)

	assert.False(t, c.SetFirmwareVersion(0))
	assert.False(t, c.SetFirmwareVersion(-3))
	assert.Zero(t, b.Recorder.Count("software-info-sender.create"))
}

func TestSetFirmwareVersion_CreationFailure(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	b.Fail("software-info-sender")

	assert.False(t, c.SetFirmwareVersion(5))
	assert.Nil(t, b.SoftwareInfoSender())
}

func TestSetFirmwareVersion_SenderShutDownOnClose(t *testing.T) {
	b := newBackend()
	c := build(t, b)
	require.True(t, c.SetFirmwareVersion(5))

	c.Close()

	assert.True(t, b.SoftwareInfoSender().IsShutdown())
	assert.False(t, c.SetFirmwareVersion(6))
}
