package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"GigCredit/internal/domain/models"
	domrepo "GigCredit/internal/domain/repository"
	pkgch "GigCredit/pkg/clickhouse"
	applogger "GigCredit/pkg/logger"
)

const (
	transactionsTable = "transactions"
	insertChunkSize   = 2000
)

// CHTransactionStore is the append-only transaction ledger backed by ClickHouse.
type CHTransactionStore struct {
	client *pkgch.Client
	db     *sql.DB
	table  string
	l      *applogger.Logger
	now    func() time.Time
}

var _ domrepo.TransactionStore = (*CHTransactionStore)(nil)

func NewCHTransactionStore(ch *pkgch.Client) *CHTransactionStore {
	return &CHTransactionStore{
		client: ch,
		db:     ch.DB(),
		table:  ch.Database() + "." + transactionsTable,
		l:      applogger.NewNop(),
		now:    time.Now,
	}
}

// SetLogger injects a structured logger.
func (s *CHTransactionStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// Init creates the ledger table.
func (s *CHTransactionStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            user_id     String,
            ts          DateTime64(3, 'UTC'),
            type        LowCardinality(String),
            amount      Float64,
            category    LowCardinality(String),
            source      LowCardinality(String),
            description String,
            ingested_at DateTime64(3, 'UTC')
        ) ENGINE = MergeTree
        ORDER BY (user_id, ts)
    `, s.table)})
}

// Append writes txns in multi-row INSERT chunks.
func (s *CHTransactionStore) Append(ctx context.Context, userID string, txns []models.Transaction) error {
	start := time.Now()
	ingestedAt := s.now().UTC()
	for lo := 0; lo < len(txns); lo += insertChunkSize {
		hi := lo + insertChunkSize
		if hi > len(txns) {
			hi = len(txns)
		}
		chunk := txns[lo:hi]

		args := make([]interface{}, 0, len(chunk)*8)
		for _, t := range chunk {
			args = append(args,
				userID,
				t.Date.UTC(),
				string(t.Type),
				t.Amount,
				t.Category,
				t.Source,
				t.Description,
				ingestedAt,
			)
		}
		if _, err := s.db.ExecContext(ctx, insertStatement(s.table, len(chunk)), args...); err != nil {
			s.l.Error("clickhouse append_transactions error",
				applogger.String("user_id", userID),
				applogger.Int("rows", len(chunk)),
				applogger.Error(err),
			)
			return fmt.Errorf("append transactions: %w", err)
		}
	}
	s.l.Debug("clickhouse append_transactions ok",
		applogger.String("user_id", userID),
		applogger.Int("rows", len(txns)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

// List returns the user's ledger oldest first.
func (s *CHTransactionStore) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	q := fmt.Sprintf(`
        SELECT ts, type, amount, category, source, description
        FROM %s
        WHERE user_id = ?
        ORDER BY ts ASC, ingested_at ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var (
			t   models.Transaction
			typ string
		)
		if err := rows.Scan(&t.Date, &typ, &t.Amount, &t.Category, &t.Source, &t.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = models.TransactionType(typ)
		t.Date = t.Date.UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHTransactionStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

// Close is a no-op; the connection pool belongs to pkg/clickhouse.
func (s *CHTransactionStore) Close() error {
	return nil
}

func insertStatement(table string, rows int) string {
	values := make([]string, rows)
	for i := range values {
		values[i] = "(?, ?, ?, ?, ?, ?, ?, ?)"
	}
	return fmt.Sprintf(
		"INSERT INTO %s (user_id, ts, type, amount, category, source, description, ingested_at) VALUES %s",
		table, strings.Join(values, ","),
	)
}
