// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// deliveryTimeout bounds one transport call.
const deliveryTimeout = 30 * time.Second

type envelope struct {
	recipient string
	message   Message
}

/*
Dispatcher delivers messages on a background goroutine.

Send never blocks: when the queue is full the message is dropped and logged.
Email is best effort. Every flow that sends a token also lets the user request
a new one.
*/
type Dispatcher struct {
	transport Transport
	logger    *slog.Logger

	queue     chan envelope
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts a dispatcher with a queue of size messages.
func NewDispatcher(transport Transport, size int, logger *slog.Logger) *Dispatcher {
	if size <= 0 {
		size = 1
	}

	dispatcher := &Dispatcher{
		transport: transport,
		logger:    logger,
		queue:     make(chan envelope, size),
		done:      make(chan struct{}),
	}

	dispatcher.wg.Add(1)
	go dispatcher.run()

	return dispatcher
}

func (dispatcher *Dispatcher) run() {
	defer dispatcher.wg.Done()

	for {
		select {
		case item := <-dispatcher.queue:
			dispatcher.deliver(item)
		case <-dispatcher.done:
			for {
				select {
				case item := <-dispatcher.queue:
					dispatcher.deliver(item)
				default:
					return
				}
			}
		}
	}
}

func (dispatcher *Dispatcher) deliver(item envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if err := dispatcher.transport.Deliver(ctx, item.recipient, item.message); err != nil {
		dispatcher.logger.Error("mail_delivery_failed",
			slog.String("subject", item.message.Subject),
			slog.Any("error", err),
		)
		return
	}

	dispatcher.logger.Debug("mail_delivered", slog.String("subject", item.message.Subject))
}

// Send enqueues a message for recipient. It returns immediately.
func (dispatcher *Dispatcher) Send(_ context.Context, recipient string, message Message) {
	if dispatcher.closed.Load() {
		return
	}

	select {
	case dispatcher.queue <- envelope{recipient: recipient, message: message}:
	case <-dispatcher.done:
	default:
		dispatcher.dropped.Add(1)
		dispatcher.logger.Warn("mail_dropped", slog.String("subject", message.Subject))
	}
}

// Close stops accepting messages and waits until the queue is drained.
func (dispatcher *Dispatcher) Close() {
	dispatcher.closeOnce.Do(func() {
		dispatcher.closed.Store(true)
		close(dispatcher.done)
		dispatcher.wg.Wait()
	})
}

// Dropped returns how many messages were discarded because the queue was full.
func (dispatcher *Dispatcher) Dropped() uint64 {
	return dispatcher.dropped.Load()
}
