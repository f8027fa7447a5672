package bot

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net"
	"time"

	"github.com/susu3304/votebot/internal/platform"
	"github.com/susu3304/votebot/internal/voting"
)

// directSender is the part of the platform the reminder needs.
type directSender interface {
	SendDirect(ctx context.Context, userID, text string, buttons []platform.Button) error
}

// reminderSource yields at most one pending reminder per poll.
type reminderSource interface {
	DueReminder(ctx context.Context) (voting.Reminder, bool, error)
	MarkReminded(pollID int64)
}

// reminderWorker periodically tells the organizer when the poll's duration
// has passed.
type reminderWorker struct {
	source   reminderSource
	sender   directSender
	log      *slog.Logger
	stopChan chan struct{}
	ticker   *time.Ticker
	interval time.Duration
}

func newReminderWorker(sender directSender, source reminderSource, log *slog.Logger) *reminderWorker {
	if sender == nil || source == nil {
		return nil
	}
	return &reminderWorker{
		source:   source,
		sender:   sender,
		log:      log,
		stopChan: make(chan struct{}),
		interval: time.Minute,
	}
}

func (w *reminderWorker) start() {
	if w == nil {
		return
	}
	w.ticker = time.NewTicker(w.interval)
	go w.loop()
}

func (w *reminderWorker) stop() {
	if w == nil {
		return
	}
	close(w.stopChan)
	if w.ticker != nil {
		w.ticker.Stop()
	}
}

func (w *reminderWorker) loop() {
	ctx := context.Background()
	for {
		select {
		case <-w.ticker.C:
			w.tick(ctx)
		case <-w.stopChan:
			return
		}
	}
}

func (w *reminderWorker) tick(ctx context.Context) {
	r, ok, err := w.source.DueReminder(ctx)
	if err != nil {
		w.log.Warn("reminder: failed to load active poll", "error", err)
		return
	}
	if !ok {
		return
	}
	if err := w.sendWithRetry(ctx, r.OrganizerID, r.Text); err != nil {
		// Retried on the next tick.
		w.log.Warn("reminder: failed to notify organizer", "poll_id", r.PollID, "organizer_id", r.OrganizerID, "error", err)
		return
	}
	w.source.MarkReminded(r.PollID)
	w.log.Info("reminder: organizer notified", "poll_id", r.PollID, "organizer_id", r.OrganizerID)
}

func (w *reminderWorker) sendWithRetry(ctx context.Context, userID, content string) error {
	const attemptTimeout = 12 * time.Second
	const maxAttempts = 2

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		err := w.sender.SendDirect(sendCtx, userID, content, nil)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTemporaryOrTimeout(err) {
			return err
		}
		time.Sleep(time.Duration(300+rand.Intn(500)) * time.Millisecond)
	}
	return lastErr
}

func isTemporaryOrTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}
