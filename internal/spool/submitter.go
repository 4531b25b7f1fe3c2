package spool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mixtape-audio/mixtape/pkg/subsonic"
	"github.com/rs/zerolog"
)

// batchLimit caps how many pending events one Drain pass submits.
const batchLimit = 50

// Submitter drains the play-event queue to the server through the
// protocol client. The client's own retry and circuit-breaker layers
// handle transient failures; the submitter only decides what stays in
// the spool.
type Submitter struct {
	client *subsonic.Client
	queue  *Queue
	logger zerolog.Logger
}

// NewSubmitter creates a Submitter over an existing queue and client
func NewSubmitter(client *subsonic.Client, queue *Queue, logger zerolog.Logger) *Submitter {
	return &Submitter{
		client: client,
		queue:  queue,
		logger: logger.With().Str("component", "spool").Logger(),
	}
}

// Drain submits pending play events, oldest first. Events the server
// acknowledges are marked submitted; events it reports as unknown
// (deleted tracks) are marked with the error and not retried; any other
// failure stops the pass so order is preserved for the next one.
// Returns the number of events submitted.
func (s *Submitter) Drain(ctx context.Context) (int, error) {
	pending, err := s.queue.GetPending(ctx, batchLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending play events: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	s.logger.Debug().Int("pending", len(pending)).Msg("Draining play-event spool")

	submitted := 0
	for _, event := range pending {
		err := s.client.Scrobble(ctx, event.TrackID, event.PlayedAt, true)
		if err == nil {
			if err := s.queue.MarkSubmitted(ctx, event.ID); err != nil {
				return submitted, err
			}
			submitted++
			continue
		}

		var perr *subsonic.Error
		if errors.As(err, &perr) && perr.Kind == subsonic.KindNotFound {
			// The track no longer exists server-side; keep the event
			// out of future passes but record why.
			s.logger.Warn().
				Str("track_id", event.TrackID).
				Str("title", event.Title).
				Msg("Track vanished, dropping play event")
			if err := s.queue.MarkDropped(ctx, event.ID, perr.Error()); err != nil {
				return submitted, err
			}
			continue
		}

		s.logger.Debug().Err(err).Str("track_id", event.TrackID).Msg("Submission failed, keeping event spooled")
		if markErr := s.queue.MarkError(ctx, event.ID, err.Error()); markErr != nil {
			return submitted, markErr
		}
		return submitted, fmt.Errorf("failed to submit play event %d: %w", event.ID, err)
	}

	return submitted, nil
}

// Run drains the spool at the given interval until ctx is cancelled
func (s *Submitter) Run(ctx context.Context, interval time.Duration) error {
	s.logger.Info().Dur("interval", interval).Msg("Starting spool submitter")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Drain immediately on start
	if _, err := s.Drain(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("Initial drain failed")
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Spool submitter stopped")
			return ctx.Err()
		case <-ticker.C:
			n, err := s.Drain(ctx)
			if err != nil {
				s.logger.Debug().Err(err).Msg("Drain failed")
				continue
			}
			if n > 0 {
				s.logger.Info().Int("submitted", n).Msg("Play events submitted")
			}
		}
	}
}
