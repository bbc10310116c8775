// Package recognizer runs the recognition pipeline: extract an embedding per
// frame, match each against the reference set and vote across the burst.
package recognizer

import (
	"context"
	"fmt"
	"log"
	"time"

	"attendcore/internal/embedding"
	"attendcore/internal/match"
	"attendcore/internal/metrics"
	"attendcore/internal/store"
)

// Service composes the extractor, matcher and reference cache.
type Service struct {
	extractor embedding.Extractor
	matcher   *match.Matcher
	cache     *store.Cache
}

// New creates a recognition service.
func New(extractor embedding.Extractor, matcher *match.Matcher, cache *store.Cache) *Service {
	return &Service{
		extractor: extractor,
		matcher:   matcher,
		cache:     cache,
	}
}

// Extractor returns the active extractor.
func (s *Service) Extractor() embedding.Extractor {
	return s.extractor
}

// EnrollFromImage extracts an embedding from the image and stores it as the
// student's reference, replacing any prior one. Returns false (and no error)
// when no embedding could be derived from the image.
func (s *Service) EnrollFromImage(ctx context.Context, imageData []byte, studentID int64) (bool, error) {
	emb, ok := s.extractor.Extract(ctx, imageData)
	if !ok {
		return false, nil
	}

	err := s.cache.Enroll(ctx, store.Reference{
		StudentID: studentID,
		Embedding: emb,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return false, fmt.Errorf("enrolling student %d: %w", studentID, err)
	}

	metrics.Enrollments.Inc()
	return true, nil
}

// Recognize matches a burst of frames against the reference set and returns
// the consensus decision. Frames that fail to decode or yield no embedding
// are skipped before voting; if none survive, the burst is rejected.
//
// Every frame is matched against the full reference set, so the verdict is
// always the true nearest reference regardless of set size.
func (s *Service) Recognize(ctx context.Context, frames [][]byte) (match.Decision, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return match.Decision{}, fmt.Errorf("loading reference set: %w", err)
	}

	var verdicts []match.Verdict
	for _, frame := range frames {
		emb, ok := s.extractor.Extract(ctx, frame)
		if !ok {
			continue
		}
		verdicts = append(verdicts, s.matcher.Match(emb, snap.References()))
	}

	dec := match.Decide(verdicts)
	if dec.Accepted {
		metrics.Recognitions.WithLabelValues("accepted").Inc()
	} else {
		metrics.Recognitions.WithLabelValues("rejected").Inc()
		if dec.Frames > 0 {
			log.Printf("recognition rejected: no strict majority over %d frames", dec.Frames)
		}
	}
	return dec, nil
}
