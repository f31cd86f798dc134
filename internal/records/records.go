// Package records keeps the enumerator's list of census records and the
// dashboard views derived from it.
package records

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/logger"
)

// ErrNotFound is returned for ids that are not in the list.
var ErrNotFound = errors.New("record not found")

// Source is the part of the census service the list needs.
type Source interface {
	ListRecords(ctx context.Context) ([]census.Record, error)
	CreateRecord(ctx context.Context) (census.Record, error)
}

// Controller holds records indexed by id in creation order. Records
// handed out are copies.
type Controller struct {
	mu     sync.Mutex
	source Source
	byID   map[string]census.Record
	order  []string
	active string
}

// New creates an empty list backed by source.
func New(source Source) *Controller {
	return &Controller{
		source: source,
		byID:   make(map[string]census.Record),
	}
}

// Load replaces the list with the records the service holds. The active
// record is kept when it is still present.
func (c *Controller) Load(ctx context.Context) ([]census.Record, error) {
	recs, err := c.source.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = make(map[string]census.Record, len(recs))
	c.order = c.order[:0]
	for _, rec := range recs {
		if _, dup := c.byID[rec.ID]; !dup {
			c.order = append(c.order, rec.ID)
		}
		c.byID[rec.ID] = rec.Clone()
	}
	if _, ok := c.byID[c.active]; !ok {
		c.active = ""
	}
	logger.Debug("Loaded %d records", len(recs))
	return c.allLocked(), nil
}

// Create allocates a record on the service, appends it and makes it
// active.
func (c *Controller) Create(ctx context.Context) (census.Record, error) {
	rec, err := c.source.CreateRecord(ctx)
	if err != nil {
		return census.Record{}, fmt.Errorf("creating record: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.upsertLocked(rec)
	c.active = rec.ID
	logger.Info("Created record %s", rec.ID)
	return rec.Clone(), nil
}

// Upsert replaces a record, or appends it when it is new.
func (c *Controller) Upsert(rec census.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upsertLocked(rec)
}

func (c *Controller) upsertLocked(rec census.Record) {
	if _, ok := c.byID[rec.ID]; !ok {
		c.order = append(c.order, rec.ID)
	}
	c.byID[rec.ID] = rec.Clone()
}

// Select makes id the active record.
func (c *Controller) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.active = id
	return nil
}

// Active returns the active record, if any.
func (c *Controller) Active() (census.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.byID[c.active]
	if !ok {
		return census.Record{}, false
	}
	return rec.Clone(), true
}

// Get returns one record.
func (c *Controller) Get(id string) (census.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.byID[id]
	if !ok {
		return census.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec.Clone(), nil
}

// All returns every record in creation order.
func (c *Controller) All() []census.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allLocked()
}

func (c *Controller) allLocked() []census.Record {
	out := make([]census.Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].Clone())
	}
	return out
}

// StatusFilter narrows a list by record status.
type StatusFilter string

const (
	StatusAll      StatusFilter = "all"
	StatusActive   StatusFilter = "active"
	StatusComplete StatusFilter = "complete"
)

// ParseStatusFilter accepts the filter names; empty means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return StatusAll, nil
	case StatusAll, StatusActive, StatusComplete:
		return f, nil
	}
	return "", fmt.Errorf("unknown status filter %q (want all, active or complete)", s)
}

// Filter keeps records whose id contains term (case-insensitive) and
// whose status matches. The input is not modified.
func Filter(recs []census.Record, term string, status StatusFilter) []census.Record {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]census.Record, 0, len(recs))
	for _, rec := range recs {
		if term != "" && !strings.Contains(strings.ToLower(rec.ID), term) {
			continue
		}
		switch status {
		case StatusActive:
			if rec.Completed() {
				continue
			}
		case StatusComplete:
			if !rec.Completed() {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

// Bucket names in display order.
const (
	BucketToday     = "today"
	BucketYesterday = "yesterday"
	BucketThisWeek  = "thisWeek"
	BucketThisMonth = "thisMonth"
	BucketOlder     = "older"
)

// Groups partitions records by how recently they were created.
type Groups struct {
	Today     []census.Record
	Yesterday []census.Record
	ThisWeek  []census.Record
	ThisMonth []census.Record
	Older     []census.Record
}

// Bucket is one named group.
type Bucket struct {
	Name    string
	Title   string
	Records []census.Record
}

// Buckets returns the groups in display order.
func (g Groups) Buckets() []Bucket {
	return []Bucket{
		{BucketToday, "Today", g.Today},
		{BucketYesterday, "Yesterday", g.Yesterday},
		{BucketThisWeek, "This Week", g.ThisWeek},
		{BucketThisMonth, "This Month", g.ThisMonth},
		{BucketOlder, "Older", g.Older},
	}
}

// Len is the number of grouped records.
func (g Groups) Len() int {
	return len(g.Today) + len(g.Yesterday) + len(g.ThisWeek) + len(g.ThisMonth) + len(g.Older)
}

// GroupByRecency buckets records by CreatedAt relative to now. Today and
// yesterday compare calendar dates in now's location. Newest records come
// first within a bucket.
func GroupByRecency(recs []census.Record, now time.Time) Groups {
	sorted := append([]census.Record(nil), recs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	yesterday := now.AddDate(0, 0, -1)
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, -1, 0)

	var g Groups
	for _, rec := range sorted {
		created := rec.CreatedAt.In(now.Location())
		switch {
		case sameDay(created, now):
			g.Today = append(g.Today, rec)
		case sameDay(created, yesterday):
			g.Yesterday = append(g.Yesterday, rec)
		case created.After(weekAgo):
			g.ThisWeek = append(g.ThisWeek, rec)
		case created.After(monthAgo):
			g.ThisMonth = append(g.ThisMonth, rec)
		default:
			g.Older = append(g.Older, rec)
		}
	}
	return g
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
