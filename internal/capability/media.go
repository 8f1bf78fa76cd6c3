package capability

// MediaPlayer is a local audio sink.
type MediaPlayer interface {
	Play(source string) error
	Stop() error
}

// MediaPlayerFactory creates players on demand.
type MediaPlayerFactory interface {
	CreatePlayer(name string) (MediaPlayer, error)
}

// SpeakerType groups sinks that share a volume setting.
type SpeakerType uint8

const (
	SpeakerVolume SpeakerType = iota
	AlertsVolume
)

// String returns a human-readable speaker type.
func (t SpeakerType) String() string {
	switch t {
	case SpeakerVolume:
		return "AVS_SPEAKER_VOLUME"
	case AlertsVolume:
		return "AVS_ALERTS_VOLUME"
	default:
		return "UNKNOWN"
	}
}

// ChannelVolume controls the volume of one sink.
type ChannelVolume interface {
	SpeakerType() SpeakerType
	Player() MediaPlayer
}

// ChannelVolumeFactory wraps sinks in volume controls.
type ChannelVolumeFactory interface {
	CreateChannelVolume(p MediaPlayer, t SpeakerType) (ChannelVolume, error)
}

// AdditionalSpeaker is an extra sink supplied by the host.
type AdditionalSpeaker struct {
	Type   SpeakerType
	Player MediaPlayer
}

// PlayerActivity is the audio player's playback state.
type PlayerActivity uint8

const (
	PlayerIdle PlayerActivity = iota
	PlayerPlaying
	PlayerStopped
	PlayerPaused
	PlayerBufferUnderrun
	PlayerFinished
)

// AudioPlayerObserver receives playback activity changes.
type AudioPlayerObserver interface {
	OnPlayerActivityChanged(activity PlayerActivity)
}

// AudioPlayer plays long-form content.
type AudioPlayer interface {
	Agent
	Subject[AudioPlayerObserver]
}

// ExternalMediaPlayerObserver receives third-party player state.
type ExternalMediaPlayerObserver interface {
	OnExternalPlayerStateChanged(playerID, state string)
}

// ExternalMediaPlayer controls third-party music players.
type ExternalMediaPlayer interface {
	Agent
	Subject[ExternalMediaPlayerObserver]
}

// SpeakerManagerObserver receives volume and mute changes.
type SpeakerManagerObserver interface {
	OnSpeakerSettingsChanged(t SpeakerType, volume int8, mute bool)
}

// SpeakerManager owns the volume of every channel.
type SpeakerManager interface {
	Agent
	Subject[SpeakerManagerObserver]
}

// PlaybackRouter turns local button presses into playback events.
type PlaybackRouter interface {
	Shutdowner
	PlayButtonPressed()
	PauseButtonPressed()
	NextButtonPressed()
	PreviousButtonPressed()
}

// Equalizer applies band levels to an audio path.
type Equalizer interface {
	SetBandLevels(levels map[string]int)
}

// EqualizerListener is told when the equalizer state changes.
type EqualizerListener interface {
	OnEqualizerStateChanged(levels map[string]int)
}

// EqualizerController distributes equalizer state.
type EqualizerController interface {
	RegisterEqualizer(e Equalizer)
	UnregisterEqualizer(e Equalizer)
	AddListener(l EqualizerListener)
	RemoveListener(l EqualizerListener)
}

// EqualizerSetup is the host's equalizer runtime configuration.
type EqualizerSetup struct {
	Bands      []string
	MinLevel   int
	MaxLevel   int
	Equalizers []Equalizer
	Listeners  []EqualizerListener
}
