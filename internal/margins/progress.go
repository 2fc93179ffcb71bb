package margins

import (
	"log/slog"
	"sync"
	"time"
)

// ProgressCallback receives page clustering progress.
type ProgressCallback interface {
	// OnStart is called when processing begins with the total number of pages.
	OnStart(total int)

	// OnProgress is called after each clustered page.
	OnProgress(current, total int)

	// OnComplete is called when processing is finished.
	OnComplete()
}

// NoOpProgressCallback implements ProgressCallback but does nothing.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(total int)             {}
func (NoOpProgressCallback) OnProgress(current, total int) {}
func (NoOpProgressCallback) OnComplete()                   {}

// LogProgressCallback reports progress through slog at debug level, at most
// once per interval.
type LogProgressCallback struct {
	logger     *slog.Logger
	interval   time.Duration
	mutex      sync.Mutex
	startTime  time.Time
	lastUpdate time.Time
}

// NewLogProgressCallback creates a slog based progress reporter. A nil logger
// uses slog.Default().
func NewLogProgressCallback(logger *slog.Logger, interval time.Duration) *LogProgressCallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgressCallback{logger: logger, interval: interval}
}

func (c *LogProgressCallback) OnStart(total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.startTime = time.Now()
	c.lastUpdate = time.Time{}
	c.logger.Debug("Clustering pages", "total", total)
}

func (c *LogProgressCallback) OnProgress(current, total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	if now.Sub(c.lastUpdate) < c.interval && current < total {
		return
	}
	c.lastUpdate = now
	c.logger.Debug("Clustering progress", "current", current, "total", total)
}

func (c *LogProgressCallback) OnComplete() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.logger.Debug("Clustering complete", "elapsed", time.Since(c.startTime).Round(time.Millisecond))
}
