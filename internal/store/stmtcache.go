package store

import (
	"sync"

	"github.com/jmoiron/sqlx"
)

// cachedStmt is a prepared statement shared by sessions through the LRU.
//
// Eviction only marks the entry; the statement is closed once the last
// session holding it releases it.
type cachedStmt struct {
	stmt *sqlx.Stmt

	mu      sync.Mutex
	refs    int
	evicted bool
}

func newCachedStmt(stmt *sqlx.Stmt) *cachedStmt {
	return &cachedStmt{stmt: stmt, refs: 1}
}

// acquire takes a reference. It fails once the entry has been evicted.
func (c *cachedStmt) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.evicted {
		return false
	}
	c.refs++
	return true
}

func (c *cachedStmt) release() {
	c.mu.Lock()
	c.refs--
	closeNow := c.evicted && c.refs == 0
	c.mu.Unlock()
	if closeNow {
		c.stmt.Close()
	}
}

func (c *cachedStmt) evict() {
	c.mu.Lock()
	c.evicted = true
	closeNow := c.refs == 0
	c.mu.Unlock()
	if closeNow {
		c.stmt.Close()
	}
}

// refCount reports outstanding references.
func (c *cachedStmt) refCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refs
}
