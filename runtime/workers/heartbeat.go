package workers

import (
	"chat-session/contract"
	"context"
	"log/slog"
	"time"
)

// DefaultHeartbeatInterval is how often presence is republished on a bound channel.
const DefaultHeartbeatInterval = 5 * time.Second

// HeartbeatWorker republishes the local user's presence on one channel.
// The publish itself runs on the event loop, the worker only keeps time.
// It stops when its context is canceled, which happens when the channel is parted.
type HeartbeatWorker struct {
	log        *slog.Logger
	channel    string
	interval   time.Duration
	dispatcher contract.Dispatcher
	publish    func()
}

func NewHeartbeatWorker(
	log *slog.Logger,
	channel string,
	interval time.Duration,
	dispatcher contract.Dispatcher,
	publish func(),
) *HeartbeatWorker {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return &HeartbeatWorker{
		log:        log,
		channel:    channel,
		interval:   interval,
		dispatcher: dispatcher,
		publish:    publish,
	}
}

// Run executes the main loop of the worker, publishing presence every interval.
func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Debug("Starting heartbeat", "channel", w.channel, "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Heartbeat stopped", "channel", w.channel)
			return nil
		case <-ticker.C:
			w.dispatcher.Post(func() {
				if ctx.Err() != nil {
					return
				}
				w.publish()
			})
		}
	}
}
