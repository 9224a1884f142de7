// Package session holds the per-browser state of the estimator: the produce
// history ledger and the last analysis shown on the page.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raine/produce-shelf-life/internal/imaging"
	"github.com/raine/produce-shelf-life/internal/llm"
	"github.com/raine/produce-shelf-life/internal/produce"
)

// ErrAnalysisFailed wraps any failure to obtain a prediction for an image.
var ErrAnalysisFailed = errors.New("analysis failed")

// Session owns one ledger. Analyses on the same session run one at a time.
type Session struct {
	ID string

	mu      sync.Mutex
	ledger  *produce.Ledger
	current *produce.Record
	preview string
	flash   string

	// guarded by the owning Registry's mutex
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:       id,
		ledger:   produce.NewLedger(),
		lastSeen: now,
	}
}

// View is a consistent copy of the session state for rendering.
type View struct {
	SessionID string
	Current   *produce.Record
	Preview   string
	History   []produce.Record
}

// Analyze runs one image through the predictor, extracts the produce details
// and upserts them into the ledger. The ledger is only touched once a record
// has been fully extracted.
func (s *Session) Analyze(ctx context.Context, predictor llm.Predictor, upload *imaging.Upload) (produce.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if preview, err := upload.ThumbnailDataURL(imaging.DisplayWidth); err != nil {
		log.Warn().Err(err).Str("sessionId", s.ID).Msg("failed to build preview")
	} else {
		s.preview = preview
	}

	pngImage, err := upload.PNG()
	if err != nil {
		return produce.Record{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	start := time.Now()
	annotations, err := predictor.Predict(ctx, pngImage)
	if err != nil {
		log.Error().Err(err).
			Str("sessionId", s.ID).
			Str("predictor", predictor.Name()).
			Dur("elapsed", time.Since(start)).
			Msg("prediction failed")
		return produce.Record{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	if len(annotations) == 0 {
		log.Warn().Str("sessionId", s.ID).Str("predictor", predictor.Name()).Msg("prediction had no known annotations")
		return produce.Record{}, llm.ErrNoAnnotations
	}

	record := produce.Extract(annotations)
	index, inserted := s.ledger.Upsert(record)
	s.current = &record

	log.Info().
		Str("sessionId", s.ID).
		Str("predictor", predictor.Name()).
		Str("name", record.Name).
		Int("index", index).
		Bool("inserted", inserted).
		Int("historyLen", s.ledger.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("produce analyzed")

	return record, nil
}

// Snapshot returns the state to render.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		SessionID: s.ID,
		Preview:   s.preview,
		History:   s.ledger.Records(),
	}
	if s.current != nil {
		current := *s.current
		v.Current = &current
	}
	return v
}

// SetFlash stores a one-time message for the next page render.
func (s *Session) SetFlash(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash = msg
}

// TakeFlash returns and clears the pending message.
func (s *Session) TakeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.flash
	s.flash = ""
	return msg
}
