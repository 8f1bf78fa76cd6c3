package audio

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/jmylchreest/smartscreen/internal/capability"
)

// Output is where mixed audio ends up. The default writes to the system
// speaker.
type Output interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
	Close()
}

type speakerOutput struct{}

func (speakerOutput) Init(sr beep.SampleRate, n int) error { return speaker.Init(sr, n) }
func (speakerOutput) Play(s ...beep.Streamer)               { speaker.Play(s...) }
func (speakerOutput) Lock()                                 { speaker.Lock() }
func (speakerOutput) Unlock()                               { speaker.Unlock() }
func (speakerOutput) Close()                                { speaker.Close() }

// Engine decodes and caches sounds and feeds them to one Output.
type Engine struct {
	mu     sync.Mutex
	logger *slog.Logger
	out    Output

	// Volume control (0.0 to 1.0)
	volume float64

	initialized bool
	sampleRate  beep.SampleRate

	cache      map[string]*beep.Buffer
	cacheMutex sync.RWMutex
}

// NewEngine creates an engine writing to out, or the system speaker if nil.
func NewEngine(out Output, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = speakerOutput{}
	}

	return &Engine{
		logger:     logger,
		out:        out,
		volume:     1.0,
		sampleRate: beep.SampleRate(44100),
		cache:      make(map[string]*beep.Buffer),
	}
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (e *Engine) SetVolume(volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.volume = math.Max(0, math.Min(1, volume))
	e.logger.Debug("volume set", "volume", e.volume)
}

// Volume returns the current volume.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// CreatePlayer returns a new sink with no named sounds.
func (e *Engine) CreatePlayer(name string) (capability.MediaPlayer, error) {
	return NewSink(name, e, nil), nil
}

// Preload decodes path into the cache.
func (e *Engine) Preload(path string) error {
	_, err := e.buffer(path)
	return err
}

// InvalidateCache removes path from the cache.
func (e *Engine) InvalidateCache(path string) {
	e.cacheMutex.Lock()
	defer e.cacheMutex.Unlock()
	delete(e.cache, expand(path))
}

// ClearCache empties the cache.
func (e *Engine) ClearCache() {
	e.cacheMutex.Lock()
	defer e.cacheMutex.Unlock()
	e.cache = make(map[string]*beep.Buffer)
}

// Cached reports whether path is in the cache.
func (e *Engine) Cached(path string) bool {
	e.cacheMutex.RLock()
	defer e.cacheMutex.RUnlock()
	_, ok := e.cache[expand(path)]
	return ok
}

// Close stops all playback and releases the output.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.initialized {
		e.out.Close()
		e.initialized = false
	}
	e.mu.Unlock()

	e.ClearCache()
	e.logger.Debug("audio engine closed")
}

// stream returns a playable streamer for path at the current volume.
func (e *Engine) stream(path string) (beep.Streamer, error) {
	buffer, err := e.buffer(path)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	volume := e.volume
	sampleRate := e.sampleRate
	e.mu.Unlock()

	var s beep.Streamer = buffer.Streamer(0, buffer.Len())
	if buffer.Format().SampleRate != sampleRate {
		s = beep.Resample(4, buffer.Format().SampleRate, sampleRate, s)
	}
	if volume < 1.0 {
		s = &effects.Volume{
			Streamer: s,
			Base:     2,
			Volume:   volumeToDecibels(volume),
			Silent:   volume == 0,
		}
	}
	return s, nil
}

func (e *Engine) buffer(path string) (*beep.Buffer, error) {
	path = expand(path)

	e.cacheMutex.RLock()
	cached, ok := e.cache[path]
	e.cacheMutex.RUnlock()
	if ok {
		return cached, nil
	}

	buffer, err := e.load(path)
	if err != nil {
		e.logger.Warn("failed to load sound", "path", path, "error", err)
		return nil, err
	}

	e.cacheMutex.Lock()
	e.cache[path] = buffer
	e.cacheMutex.Unlock()
	return buffer, nil
}

// load decodes a sound file into a buffer.
func (e *Engine) load(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode sound: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	if err := e.ensureInitialized(format.SampleRate); err != nil {
		return nil, err
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return buffer, nil
}

// ensureInitialized opens the output at the first decoded sample rate.
func (e *Engine) ensureInitialized(sampleRate beep.SampleRate) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return nil
	}

	// 100ms keeps earcons responsive
	if err := e.out.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	e.sampleRate = sampleRate
	e.initialized = true
	e.logger.Debug("speaker initialized", "sample_rate", sampleRate)
	return nil
}

// volumeToDecibels converts a linear volume (0-1) to decibels.
func volumeToDecibels(volume float64) float64 {
	if volume <= 0 {
		return -100
	}
	return 20 * math.Log10(volume)
}

func expand(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
