package transport

import (
	"chat-session/contract"
	"chat-session/domain"
	"context"
	"log/slog"
	"sync"
)

// socket queues deliveries without bound so a sender never waits on a reader.
type socket struct {
	id     domain.SocketID
	mu     sync.Mutex
	queue  []contract.Delivery
	notify chan struct{}
	stop   context.CancelFunc // set once listened to
}

func newSocket(id domain.SocketID) *socket {
	return &socket{id: id, notify: make(chan struct{}, 1)}
}

func (s *socket) push(d contract.Delivery) {
	s.mu.Lock()
	s.queue = append(s.queue, d)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *socket) drain() []contract.Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.queue
	s.queue = nil
	return batch
}

// PumpWorker hands the deliveries of one socket to its listener, in order.
type PumpWorker struct {
	log     *slog.Logger
	socket  *socket
	handler func(contract.Delivery)
}

func newPumpWorker(log *slog.Logger, socket *socket, handler func(contract.Delivery)) *PumpWorker {
	return &PumpWorker{log: log, socket: socket, handler: handler}
}

func (w *PumpWorker) Run(ctx context.Context) error {
	w.log.Debug("Starting socket pump", "socket", w.socket.id)
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Socket pump stopped", "socket", w.socket.id)
			return nil
		case <-w.socket.notify:
			for _, d := range w.socket.drain() {
				w.handler(d)
			}
		}
	}
}
