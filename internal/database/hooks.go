package database

import (
	"sync"

	"gorm.io/gorm"
)

// hooksKey carries the per-transaction hook registry through GORM's
// statement settings so that nested sessions see the same registry.
const hooksKey = "taskroster:on_commit_hooks"

type commitHooks struct {
	mu  sync.Mutex
	fns []func()
}

func (h *commitHooks) add(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
}

func (h *commitHooks) run() {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Transaction runs fn inside a database transaction with an on-commit hook
// registry attached. Hooks registered via OnCommit during fn run in order
// after the outermost transaction commits; they are discarded on rollback.
// Nested calls reuse the enclosing registry, so hooks registered inside a
// nested transaction still wait for the outermost commit.
func Transaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if _, ok := db.Get(hooksKey); ok {
		return db.Transaction(fn)
	}

	hooks := &commitHooks{}
	if err := db.Set(hooksKey, hooks).Transaction(fn); err != nil {
		return err
	}

	hooks.run()
	return nil
}

// OnCommit defers fn until the transaction enclosing tx commits. When tx
// carries no registry (no Transaction wrapper is open), fn runs immediately.
func OnCommit(tx *gorm.DB, fn func()) {
	if value, ok := tx.Get(hooksKey); ok {
		if hooks, ok := value.(*commitHooks); ok {
			hooks.add(fn)
			return
		}
	}
	fn()
}
