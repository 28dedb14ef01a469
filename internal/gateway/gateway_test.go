package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/pharmadesk/backend/internal/crm"
	"github.com/pharmadesk/backend/internal/session"
)

const testOperatorID = "operator-1"

type staticIDGenerator struct {
	ids   []string
	index int
}

func (g *staticIDGenerator) NewID() (string, error) {
	if g.index >= len(g.ids) {
		return "", errors.New("exhausted ids")
	}
	id := g.ids[g.index]
	g.index++
	return id, nil
}

// steppingClock hands out strictly increasing instants so created_at ordering
// is deterministic.
type steppingClock struct {
	current time.Time
}

func (c *steppingClock) Now() time.Time {
	now := c.current
	c.current = c.current.Add(time.Second)
	return now
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&LeadRecord{}, &ManufacturerRecord{}, &OrderRecord{}, &DocumentRecord{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func newTestConfig(t *testing.T, db *gorm.DB, ids ...string) Config {
	t.Helper()
	provider, err := session.NewStaticProvider(testOperatorID)
	if err != nil {
		t.Fatalf("unexpected provider error: %v", err)
	}
	clock := &steppingClock{current: time.Unix(1700000000, 0).UTC()}
	return Config{
		Database:   db,
		Session:    provider,
		Clock:      clock.Now,
		IDProvider: &staticIDGenerator{ids: ids},
	}
}

type staticLeadDirectory struct {
	leads []crm.Lead
}

func (d staticLeadDirectory) List(context.Context) []crm.Lead {
	return d.leads
}

func closeDatabase(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access database handle: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}
}
