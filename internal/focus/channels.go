// Package focus holds the focus channel configuration shared by the audio
// and visual focus managers.
package focus

import (
	"fmt"
	"sort"

	"github.com/jmylchreest/smartscreen/internal/capability"
)

// Channel names.
const (
	DialogChannel         = "Dialog"
	CommunicationsChannel = "Communications"
	AlertChannel          = "Alert"
	ContentChannel        = "Content"
	VisualChannel         = "Visual"
)

// DefaultAudioChannels returns the standard audio channel priorities.
func DefaultAudioChannels() []capability.ChannelConfiguration {
	return []capability.ChannelConfiguration{
		{Name: DialogChannel, Priority: 100},
		{Name: CommunicationsChannel, Priority: 150},
		{Name: AlertChannel, Priority: 200},
		{Name: ContentChannel, Priority: 300},
	}
}

// DefaultVisualChannels returns the standard visual channel priorities.
func DefaultVisualChannels() []capability.ChannelConfiguration {
	return []capability.ChannelConfiguration{
		{Name: VisualChannel, Priority: 100},
	}
}

// Validate checks that channels is non-empty with unique names and
// priorities, and returns a copy sorted by priority.
func Validate(channels []capability.ChannelConfiguration) ([]capability.ChannelConfiguration, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("no focus channels configured")
	}

	names := make(map[string]bool, len(channels))
	priorities := make(map[uint]string, len(channels))
	for _, c := range channels {
		if c.Name == "" {
			return nil, fmt.Errorf("focus channel with priority %d has no name", c.Priority)
		}
		if names[c.Name] {
			return nil, fmt.Errorf("duplicate focus channel %q", c.Name)
		}
		if other, ok := priorities[c.Priority]; ok {
			return nil, fmt.Errorf("focus channels %q and %q share priority %d", other, c.Name, c.Priority)
		}
		names[c.Name] = true
		priorities[c.Priority] = c.Name
	}

	out := make([]capability.ChannelConfiguration, len(channels))
	copy(out, channels)
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

// Has reports whether channels contains name.
func Has(channels []capability.ChannelConfiguration, name string) bool {
	for _, c := range channels {
		if c.Name == name {
			return true
		}
	}
	return false
}
