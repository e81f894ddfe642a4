package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"GigCredit/internal/domain/models"
)

type recordingPublisher struct {
	mu      sync.Mutex
	events  []models.Event
	batches int
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, evs ...models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evs...)
	p.batches++
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type countingMetrics struct {
	mu          sync.Mutex
	scores      []int
	transitions []models.EventType
	errors      map[string]int
}

func newCountingMetrics() *countingMetrics { return &countingMetrics{errors: map[string]int{}} }

func (m *countingMetrics) RecordScore(score int, _ models.RiskLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, score)
}

func (m *countingMetrics) RecordLoanTransition(e models.EventType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, e)
}

func (m *countingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *countingMetrics) RecordLatency(string, time.Duration) {}

func (m *countingMetrics) errorCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (s *sequentialIDs) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func amount(v float64) *float64 { return &v }
