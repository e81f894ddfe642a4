package repository

import (
	"context"
	"sync"

	"GigCredit/internal/domain/models"
	domrepo "GigCredit/internal/domain/repository"
)

// MemoryStore keeps profiles, loans and ledgers in process. Values are cloned
// on the way in and out, and loan updates carry the same version check as the
// Mongo store.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*models.CreditProfile
	loans    map[string]*models.Loan
	order    []string
	ledger   map[string][]models.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*models.CreditProfile),
		loans:    make(map[string]*models.Loan),
		ledger:   make(map[string][]models.Transaction),
	}
}

// --- profiles ---

func (s *MemoryStore) Upsert(_ context.Context, p *models.CreditProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p.Clone()
	cp.Stale = false
	s.profiles[p.UserID] = cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*models.CreditProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, domrepo.ErrNotFound
	}
	return p.Clone(), nil
}

// --- loans ---

// MemoryLoans exposes the loan half of a MemoryStore as a LoanStore; the
// profile store already owns the Get name.
type MemoryLoans struct{ s *MemoryStore }

func (s *MemoryStore) Loans() *MemoryLoans { return &MemoryLoans{s: s} }

func (m *MemoryLoans) Create(_ context.Context, l *models.Loan) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.loans[l.ID] = l.Clone()
	m.s.order = append(m.s.order, l.ID)
	return nil
}

func (m *MemoryLoans) Get(_ context.Context, id string) (*models.Loan, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	l, ok := m.s.loans[id]
	if !ok {
		return nil, domrepo.ErrNotFound
	}
	return l.Clone(), nil
}

func (m *MemoryLoans) Update(_ context.Context, l *models.Loan, expectedVersion int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cur, ok := m.s.loans[l.ID]
	if !ok {
		return domrepo.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return domrepo.ErrVersionConflict
	}
	l.Version = expectedVersion + 1
	m.s.loans[l.ID] = l.Clone()
	return nil
}

func (m *MemoryLoans) list(match func(*models.Loan) bool) []*models.Loan {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var out []*models.Loan
	for _, id := range m.s.order {
		if l := m.s.loans[id]; match(l) {
			out = append(out, l.Clone())
		}
	}
	return out
}

func (m *MemoryLoans) ListByBorrower(_ context.Context, borrowerID string) ([]*models.Loan, error) {
	return m.list(func(l *models.Loan) bool { return l.BorrowerID == borrowerID }), nil
}

func (m *MemoryLoans) ListForLender(_ context.Context, lenderID string) ([]*models.Loan, error) {
	return m.list(func(l *models.Loan) bool {
		return l.Status == models.LoanPending || l.LenderID == lenderID
	}), nil
}

// --- ledger ---

// MemoryLedger exposes the transaction half of a MemoryStore.
type MemoryLedger struct{ s *MemoryStore }

func (s *MemoryStore) Ledger() *MemoryLedger { return &MemoryLedger{s: s} }

func (m *MemoryLedger) Init(context.Context) error   { return nil }
func (m *MemoryLedger) Health(context.Context) error { return nil }
func (m *MemoryLedger) Close() error                 { return nil }

func (m *MemoryLedger) Append(_ context.Context, userID string, txns []models.Transaction) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	merged := append(append([]models.Transaction(nil), m.s.ledger[userID]...), txns...)
	models.SortTransactions(merged)
	m.s.ledger[userID] = merged
	return nil
}

func (m *MemoryLedger) List(_ context.Context, userID string) ([]models.Transaction, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return append([]models.Transaction(nil), m.s.ledger[userID]...), nil
}

var (
	_ domrepo.ProfileStore     = (*MemoryStore)(nil)
	_ domrepo.LoanStore        = (*MemoryLoans)(nil)
	_ domrepo.TransactionStore = (*MemoryLedger)(nil)
)
