package payroll

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"paycore/internal/domain/employees"
)

// fakeTx stages writes until Commit. Only Commit and Rollback are used by the
// service; every other pgx.Tx method is left to the nil embedded interface.
type fakeTx struct {
	pgx.Tx
	store   *memoryStore
	pending []func()
	done    bool
}

func (t *fakeTx) Commit(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, op := range t.pending {
		op()
	}
	t.done = true
	t.store.commits++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.mu.Lock()
	t.store.rollbacks++
	t.store.mu.Unlock()
	return nil
}

type ledgerEntry struct {
	EmployeeID string
	Kind       string
	Amount     decimal.Decimal
	CreatedAt  time.Time
}

type memoryStore struct {
	mu         sync.Mutex
	roster     []employees.Employee
	ledger     []ledgerEntry
	records    map[string]Record
	overtime   map[string][]OvertimeLine
	insertErr  error
	commits    int
	rollbacks  int
	periodLock int
}

func newMemoryStore(roster ...employees.Employee) *memoryStore {
	return &memoryStore{roster: roster, records: map[string]Record{}, overtime: map[string][]OvertimeLine{}}
}

func (m *memoryStore) BeginTx(context.Context) (pgx.Tx, error) {
	return &fakeTx{store: m}, nil
}

func (m *memoryStore) stage(tx pgx.Tx, op func()) {
	ft := tx.(*fakeTx)
	ft.pending = append(ft.pending, op)
}

func (m *memoryStore) LockPeriodTx(context.Context, pgx.Tx, time.Time, time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periodLock++
	return nil
}

func (m *memoryStore) CountPeriodTx(_ context.Context, _ pgx.Tx, start, end time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, rec := range m.records {
		if rec.PeriodStart.Equal(start) && rec.PeriodEnd.Equal(end) {
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) ListRosterTx(context.Context, pgx.Tx) ([]employees.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]employees.Employee(nil), m.roster...), nil
}

func (m *memoryStore) LedgerTotalsTx(_ context.Context, _ pgx.Tx, since *time.Time, until time.Time) (map[string]StatutoryTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]StatutoryTotals{}
	for _, entry := range m.ledger {
		if !entry.CreatedAt.Before(until) {
			continue
		}
		if since != nil && entry.CreatedAt.Before(*since) {
			continue
		}
		totals, err := out[entry.EmployeeID].Add(entry.Kind, entry.Amount)
		if err != nil {
			return nil, err
		}
		out[entry.EmployeeID] = totals
	}
	return out, nil
}

func (m *memoryStore) DeletePeriodTx(_ context.Context, tx pgx.Tx, start, end time.Time) (int64, error) {
	m.mu.Lock()
	var ids []string
	for id, rec := range m.records {
		if rec.PeriodStart.Equal(start) && rec.PeriodEnd.Equal(end) {
			ids = append(ids, id)
		}
	}
	m.mu.Unlock()
	m.stage(tx, func() {
		for _, id := range ids {
			delete(m.records, id)
			delete(m.overtime, id)
		}
	})
	return int64(len(ids)), nil
}

func (m *memoryStore) InsertRecordsTx(_ context.Context, tx pgx.Tx, records []Record) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	copied := append([]Record(nil), records...)
	m.stage(tx, func() {
		for _, rec := range copied {
			m.records[rec.ID] = rec
		}
	})
	return nil
}

func (m *memoryStore) InsertOvertimeTx(_ context.Context, tx pgx.Tx, lines []OvertimeLine) error {
	copied := append([]OvertimeLine(nil), lines...)
	m.stage(tx, func() {
		for _, line := range copied {
			m.overtime[line.RecordID] = append(m.overtime[line.RecordID], line)
		}
	})
	return nil
}

func (m *memoryStore) ListRecords(_ context.Context, filter RecordFilter) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, rec := range m.records {
		if filter.PeriodStart != nil && !rec.PeriodStart.Equal(*filter.PeriodStart) {
			continue
		}
		if filter.PeriodEnd != nil && !rec.PeriodEnd.Equal(*filter.PeriodEnd) {
			continue
		}
		if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PeriodEnd.Equal(out[j].PeriodEnd) {
			return out[i].PeriodEnd.After(out[j].PeriodEnd)
		}
		return out[i].EmployeeCode < out[j].EmployeeCode
	})
	return out, nil
}

func (m *memoryStore) GetRecord(_ context.Context, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *memoryStore) GetRecordForUpdateTx(ctx context.Context, _ pgx.Tx, id string) (Record, error) {
	return m.GetRecord(ctx, id)
}

func (m *memoryStore) LatestRecordForUpdateTx(_ context.Context, _ pgx.Tx, employeeID string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest Record
	found := false
	for _, rec := range m.records {
		if rec.EmployeeID != employeeID {
			continue
		}
		if !found || rec.PeriodEnd.After(latest.PeriodEnd) {
			latest, found = rec, true
		}
	}
	if !found {
		return Record{}, ErrNotFound
	}
	return latest, nil
}

func (m *memoryStore) UpdateRecordTx(_ context.Context, tx pgx.Tx, rec Record) error {
	m.mu.Lock()
	_, ok := m.records[rec.ID]
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	m.stage(tx, func() { m.records[rec.ID] = rec })
	return nil
}

func (m *memoryStore) ListOvertime(_ context.Context, recordID string) ([]OvertimeLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OvertimeLine(nil), m.overtime[recordID]...), nil
}

func (m *memoryStore) LedgerSumsBetween(_ context.Context, since, until time.Time) (map[string]decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]decimal.Decimal{}
	for _, entry := range m.ledger {
		if entry.CreatedAt.Before(since) || !entry.CreatedAt.Before(until) {
			continue
		}
		out[entry.EmployeeID] = out[entry.EmployeeID].Add(entry.Amount)
	}
	return out, nil
}
