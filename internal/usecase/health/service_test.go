package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockItemCounter struct {
	n   int
	err error
}

func (m *mockItemCounter) Count(_ context.Context) (int, error) { return m.n, m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	dbDown := errors.New("conn refused")

	tests := []struct {
		name     string
		db       DBPinger
		items    *mockItemCounter
		status   Status
		database CheckResult // "" when absent
		catalog  CheckResult
	}{
		{"all healthy", &mockDBPinger{}, &mockItemCounter{n: 12}, Healthy, CheckOK, CheckOK},
		{"db down", &mockDBPinger{err: dbDown}, &mockItemCounter{n: 12}, Degraded, CheckError, CheckOK},
		{"empty catalog", &mockDBPinger{}, &mockItemCounter{}, Degraded, CheckOK, CheckEmpty},
		{"both fail", &mockDBPinger{err: dbDown}, &mockItemCounter{err: dbDown}, Unhealthy, CheckError, CheckError},
		{"memory corpus", nil, &mockItemCounter{n: 3}, Healthy, "", CheckOK},
		{"memory corpus empty", nil, &mockItemCounter{}, Unhealthy, "", CheckEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.db, tt.items).Check(context.Background())

			if r.Status != tt.status {
				t.Errorf("status = %q, want %q", r.Status, tt.status)
			}
			got, ok := r.Checks[CheckDatabase]
			if tt.database == "" && ok {
				t.Error("database check should be absent without a store")
			}
			if tt.database != "" && got != tt.database {
				t.Errorf("database = %q, want %q", got, tt.database)
			}
			if r.Checks[CheckCatalog] != tt.catalog {
				t.Errorf("catalog = %q, want %q", r.Checks[CheckCatalog], tt.catalog)
			}
			if tt.items.err == nil && r.Items != tt.items.n {
				t.Errorf("items = %d, want %d", r.Items, tt.items.n)
			}
		})
	}
}
