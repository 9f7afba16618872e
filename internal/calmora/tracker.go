package calmora

import (
	"context"
	"fmt"
	"io"
)

// Predict validates in locally and submits it. Invalid input never reaches
// the network. Check Prediction.Rejected for the once-per-day refusal.
func (s *Service) Predict(ctx context.Context, in TrackerInput) (*Prediction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var p Prediction
	if err := s.api.Post(ctx, pathPredict, in, &p); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if p.Rejected() {
		s.logger.InfoContext(ctx, "prediction rejected", "detail", p.Detail)
	}
	return &p, nil
}

// History returns the most recent entries, oldest first.
func (s *Service) History(ctx context.Context) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	if err := s.api.Get(ctx, pathHistory, nil, &entries); err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return entries, nil
}

// Export streams the CSV export of all entries to w.
func (s *Service) Export(ctx context.Context, w io.Writer) (int64, error) {
	n, err := s.api.Download(ctx, pathExport, nil, w)
	if err != nil {
		return n, fmt.Errorf("export: %w", err)
	}
	return n, nil
}
