package service_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/pantry/backend/internal/models"
)

type testDB struct {
	*gorm.DB
}

func (db *testDB) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

// captureRecorder keeps every enqueued entry for inspection
type captureRecorder struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (r *captureRecorder) Enqueue(entry models.ActivityLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *captureRecorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.ActionType)
	}
	return out
}

func (r *captureRecorder) last() models.ActivityLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[len(r.entries)-1]
}
