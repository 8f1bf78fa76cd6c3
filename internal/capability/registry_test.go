package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCaptions struct{ shut bool }

func (c *fakeCaptions) Shutdown() { c.shut = true }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	c := &fakeCaptions{}

	r.Set(FeatureCaptions, c)
	r.Set(FeatureTelephony, nil)

	assert.True(t, r.Has(FeatureCaptions))
	assert.False(t, r.Has(FeatureTelephony), "nil components are not registered")
	assert.Equal(t, []Feature{FeatureCaptions}, r.Names())

	got, ok := Lookup[Captions](r, FeatureCaptions)
	assert.True(t, ok)
	assert.Same(t, c, got)

	_, ok = Lookup[Alerts](r, FeatureCaptions)
	assert.False(t, ok, "wrong type")
}

func TestRegistry_NilIsEmpty(t *testing.T) {
	var r *Registry
	assert.False(t, r.Has(FeatureBluetooth))
	assert.Nil(t, r.Names())
	r.Set(FeatureBluetooth, &fakeCaptions{})
	_, ok := Lookup[Captions](r, FeatureBluetooth)
	assert.False(t, ok)
}

func TestFirmwareVersion_Valid(t *testing.T) {
	assert.False(t, FirmwareVersion(0).Valid())
	assert.False(t, FirmwareVersion(-3).Valid())
	assert.True(t, FirmwareVersion(1).Valid())
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "THINKING", DialogThinking.String())
	assert.Equal(t, "PRESS_AND_HOLD", InitiatorPressAndHold.String())
	assert.Equal(t, "FOREGROUND", FocusForeground.String())
	assert.Equal(t, "AVS_ALERTS_VOLUME", AlertsVolume.String())
	assert.Equal(t, "SUCCESS", CapabilitiesSuccess.String())
	assert.Equal(t, "INFLATE_END", RenderInflateEnd.String())
	assert.Equal(t, "UNKNOWN", RenderingEvent(99).String())
}
