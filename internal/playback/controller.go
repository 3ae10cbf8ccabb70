package playback

import (
	"errors"
	"log"
	"sync"
	"time"

	"wardwatch/internal/metrics"
)

// DefaultInterval is the tick interval used when the config does not
// override it.
const DefaultInterval = 1500 * time.Millisecond

// ErrAlreadyPlaying is returned by Play while the clock is running.
var ErrAlreadyPlaying = errors.New("playback already running")

// ErrHourOutOfRange is returned by Seek for hours outside [0,23].
var ErrHourOutOfRange = errors.New("hour must be between 0 and 23")

// ErrUnknownPreset is returned by SelectPreset for an unrecognized name.
var ErrUnknownPreset = errors.New("unknown hour preset")

// DefaultPresets maps the fixed time-point buttons to their hours.
func DefaultPresets() map[string]int {
	return map[string]int{
		"midnight": 0,
		"morning":  6,
		"noon":     12,
		"evening":  18,
		"night":    21,
	}
}

// LoadFunc is invoked with the new hour after every tick and every seek.
// It must not call Pause or Close on the controller that invoked it.
type LoadFunc func(hour int)

// Controller drives the repeating playback clock. While playing, an
// internal ticker advances hour = (hour+1) mod 24 on a fixed interval and
// requests a snapshot load after every tick, including the 23 to 0 wrap.
type Controller struct {
	mu       sync.Mutex
	interval time.Duration
	hour     int
	playing  bool
	stop     chan struct{}
	done     chan struct{}
	onHour   LoadFunc
	presets  map[string]int
}

// NewController creates a stopped controller positioned at startHour.
func NewController(interval time.Duration, startHour int, onHour LoadFunc) *Controller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if startHour < 0 || startHour > 23 {
		startHour = 0
	}
	return &Controller{
		interval: interval,
		hour:     startHour,
		onHour:   onHour,
		presets:  DefaultPresets(),
	}
}

// Play starts the ticker. It is rejected while already playing.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return ErrAlreadyPlaying
	}
	c.playing = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(c.stop, c.done)
	return nil
}

// Pause stops the ticker deterministically: it does not return until the
// tick goroutine has exited, so no tick fires after Pause returns.
func (c *Controller) Pause() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	c.playing = false
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	close(stop)
	<-done
}

// Seek moves the clock to the given hour in either state and issues a
// load immediately. While playing it does not reset the tick timer; the
// next tick continues from the seeked value.
func (c *Controller) Seek(hour int) error {
	if hour < 0 || hour > 23 {
		return ErrHourOutOfRange
	}
	c.mu.Lock()
	c.hour = hour
	fn := c.onHour
	c.mu.Unlock()

	if fn != nil {
		fn(hour)
	}
	return nil
}

// SelectPreset pauses playback and seeks to the preset's fixed hour.
// Selecting a fixed time point always cancels animation.
func (c *Controller) SelectPreset(name string) (int, error) {
	c.mu.Lock()
	hour, ok := c.presets[name]
	c.mu.Unlock()
	if !ok {
		return 0, ErrUnknownPreset
	}

	c.Pause()
	if err := c.Seek(hour); err != nil {
		return 0, err
	}
	return hour, nil
}

// Hour returns the clock's current hour.
func (c *Controller) Hour() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hour
}

// Playing reports whether the ticker is running.
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Close cancels the ticker on teardown; no timers are leaked.
func (c *Controller) Close() {
	c.Pause()
}

func (c *Controller) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// A pending tick can race the stop signal; stop wins.
			select {
			case <-stop:
				return
			default:
			}
			c.tick()
		}
	}
}

func (c *Controller) tick() {
	c.mu.Lock()
	c.hour = (c.hour + 1) % 24
	hour := c.hour
	fn := c.onHour
	c.mu.Unlock()

	metrics.RecordPlaybackTick()
	log.Printf("Playback tick: hour advanced to %02d:00", hour)
	if fn != nil {
		fn(hour)
	}
}
