package capability

// FocusState is how much of a channel an activity holds.
type FocusState uint8

const (
	FocusNone FocusState = iota
	FocusBackground
	FocusForeground
)

// String returns a human-readable focus name.
func (f FocusState) String() string {
	switch f {
	case FocusNone:
		return "NONE"
	case FocusBackground:
		return "BACKGROUND"
	case FocusForeground:
		return "FOREGROUND"
	default:
		return "UNKNOWN"
	}
}

// MixingBehavior tells a background activity how to behave.
type MixingBehavior uint8

const (
	MixingUndefined MixingBehavior = iota
	MixingPrimary
	MixingMayDuck
	MixingMustPause
)

// ChannelObserver is told when its focus changes.
type ChannelObserver interface {
	OnFocusChanged(focus FocusState, behavior MixingBehavior)
}

// FocusManager arbitrates channels between activities.
type FocusManager interface {
	AcquireChannel(channel string, o ChannelObserver, interfaceName string) bool
	ReleaseChannel(channel string, o ChannelObserver) bool
	StopForegroundActivity()
}

// ChannelConfiguration names one focus channel and its priority. A lower
// priority value wins.
type ChannelConfiguration struct {
	Name     string
	Priority uint
}
