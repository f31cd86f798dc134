// Package store keeps the locally edited payload of every wizard step of a
// record. A Store is a value: mutations return a new Store and never touch
// the receiver or payloads handed out earlier.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/census/internal/census"
)

// DefaultMaxMembers is the roster size limit when none is configured.
const DefaultMaxMembers = 10

var (
	ErrRowNotFound   = census.ErrRowNotFound
	ErrHeadRemoval   = census.ErrHeadRemoval
	ErrLastRow       = census.ErrLastRow
	ErrUnknownList   = census.ErrUnknownList
	ErrUnknownField  = errors.New("unknown field")
	ErrReadOnlyField = errors.New("field is read-only")
	ErrRowLimit      = errors.New("row limit reached")
	ErrDuplicateRow  = errors.New("duplicate row id")
	ErrNotRowStep    = errors.New("step has no row lists")
)

// Store holds one payload per step.
type Store struct {
	payloads   map[census.Step]census.Payload
	last       census.RowID
	maxMembers int
}

// Option configures a Store.
type Option func(*Store)

// WithMaxMembers limits the number of roster rows. Values below 1 are
// ignored.
func WithMaxMembers(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxMembers = n
		}
	}
}

// New seeds a store from the record's step slots. Steps without a slot
// start from their default payload. Rows without an id get placeholders.
func New(rec census.Record, opts ...Option) Store {
	s := Store{
		payloads:   make(map[census.Step]census.Payload, census.TotalSteps),
		maxMembers: DefaultMaxMembers,
	}
	for _, opt := range opts {
		opt(&s)
	}
	for _, step := range census.AllSteps() {
		p, ok := rec.Payload(step)
		if !ok {
			p, _ = census.NewPayload(step)
		}
		s.payloads[step] = s.assign(p)
	}
	return s
}

// assign gives unassigned rows of p placeholder ids, advancing s.last.
func (s *Store) assign(p census.Payload) census.Payload {
	rc, ok := p.(census.RowCollection)
	if !ok {
		return p
	}
	return rc.AssignPlaceholders(func() census.RowID {
		s.last--
		return s.last
	})
}

func (s Store) with(step census.Step, p census.Payload) Store {
	next := Store{
		payloads:   make(map[census.Step]census.Payload, len(s.payloads)+1),
		last:       s.last,
		maxMembers: s.maxMembers,
	}
	for k, v := range s.payloads {
		next.payloads[k] = v
	}
	next.payloads[step] = p
	return next
}

// MaxMembers returns the roster size limit.
func (s Store) MaxMembers() int {
	if s.maxMembers == 0 {
		return DefaultMaxMembers
	}
	return s.maxMembers
}

// Get returns a copy of the payload for step, or the step default.
func (s Store) Get(step census.Step) census.Payload {
	if p, ok := s.payloads[step]; ok {
		return p.Clone()
	}
	p, err := census.NewPayload(step)
	if err != nil {
		return nil
	}
	return p
}

// Set replaces the whole payload of step. Derived fields are recomputed,
// row ids must be unique and the roster limit holds. Placeholder ids taken
// from p are reserved so AddRow never hands them out again.
func (s Store) Set(step census.Step, p census.Payload) (Store, error) {
	if p == nil || p.Step() != step {
		return s, fmt.Errorf("payload %T does not belong to step %d", p, step)
	}
	p = p.Clone()
	if n, ok := p.(census.Normalizer); ok {
		p = n.Normalize()
	}

	next := s.with(step, nil)
	if rc, ok := p.(census.RowCollection); ok {
		seen := make(map[census.RowID]bool)
		for _, list := range rc.RowLists() {
			ids, _ := rc.Rows(list)
			if step == census.StepRoster && len(ids) > s.MaxMembers() {
				return s, fmt.Errorf("%w: at most %d household members", ErrRowLimit, s.MaxMembers())
			}
			for _, id := range ids {
				if id == 0 {
					continue
				}
				if seen[id] {
					return s, fmt.Errorf("%w: %d in %s", ErrDuplicateRow, id, list)
				}
				seen[id] = true
				if id.Placeholder() && id < next.last {
					next.last = id
				}
			}
		}
	}
	next.payloads[step] = next.assign(p)
	return next, nil
}

// MergeFields applies updates to the top-level or nested fields of a step
// payload, last write wins. Keys are JSON field names; dots address nested
// objects, e.g. "interviewDates.dateStarted".
func (s Store) MergeFields(step census.Step, updates map[string]any) (Store, error) {
	doc, err := toDocument(s.Get(step))
	if err != nil {
		return s, err
	}
	if err := applyUpdates(doc, updates); err != nil {
		return s, err
	}
	return s.replace(step, doc)
}

// MergeRow applies updates to the row identified by id in any of the
// step's row lists.
func (s Store) MergeRow(step census.Step, id census.RowID, updates map[string]any) (Store, error) {
	list, index, err := s.locate(step, id)
	if err != nil {
		return s, err
	}
	if _, ok := updates["id"]; ok {
		return s, fmt.Errorf("%w: id", ErrReadOnlyField)
	}

	doc, err := toDocument(s.Get(step))
	if err != nil {
		return s, err
	}
	rows, _ := doc[list].([]any)
	if index >= len(rows) {
		return s, ErrRowNotFound
	}
	row, ok := rows[index].(map[string]any)
	if !ok {
		return s, fmt.Errorf("row %d of %s is not an object", index, list)
	}
	if err := applyUpdates(row, updates); err != nil {
		return s, err
	}
	return s.replace(step, doc)
}

// AddRow appends a default row with a fresh placeholder id to list.
func (s Store) AddRow(step census.Step, list string) (Store, census.RowID, error) {
	rc, err := s.rows(step)
	if err != nil {
		return s, 0, err
	}
	ids, ok := rc.Rows(list)
	if !ok {
		return s, 0, fmt.Errorf("%w: %s", ErrUnknownList, list)
	}
	if step == census.StepRoster && len(ids) >= s.MaxMembers() {
		return s, 0, fmt.Errorf("%w: at most %d household members", ErrRowLimit, s.MaxMembers())
	}

	id := s.last - 1
	p, err := rc.AppendRow(list, id)
	if err != nil {
		return s, 0, err
	}
	next := s.with(step, p)
	next.last = id
	return next, id, nil
}

// RemoveRow deletes the row identified by id.
func (s Store) RemoveRow(step census.Step, id census.RowID) (Store, error) {
	rc, err := s.rows(step)
	if err != nil {
		return s, err
	}
	p, err := rc.RemoveRow(id)
	if err != nil {
		return s, err
	}
	return s.with(step, p), nil
}

// RowPath returns the error-key prefix of a row, e.g. "members[2]".
func (s Store) RowPath(step census.Step, id census.RowID) (string, bool) {
	list, index, err := s.locate(step, id)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s[%d]", list, index), true
}

// RowIDs returns the ids of list in order.
func (s Store) RowIDs(step census.Step, list string) ([]census.RowID, error) {
	rc, err := s.rows(step)
	if err != nil {
		return nil, err
	}
	ids, ok := rc.Rows(list)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownList, list)
	}
	return ids, nil
}

func (s Store) rows(step census.Step) (census.RowCollection, error) {
	rc, ok := s.Get(step).(census.RowCollection)
	if !ok {
		return nil, fmt.Errorf("%w: step %d", ErrNotRowStep, step)
	}
	return rc, nil
}

func (s Store) locate(step census.Step, id census.RowID) (string, int, error) {
	rc, err := s.rows(step)
	if err != nil {
		return "", 0, err
	}
	for _, list := range rc.RowLists() {
		ids, _ := rc.Rows(list)
		for i, rowID := range ids {
			if rowID == id {
				return list, i, nil
			}
		}
	}
	return "", 0, fmt.Errorf("%w: %d", ErrRowNotFound, id)
}

// replace decodes doc back into the step payload and normalizes it.
func (s Store) replace(step census.Step, doc map[string]any) (Store, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return s, fmt.Errorf("encoding step %d payload: %w", step, err)
	}
	p, err := census.DecodePayload(step, data, true)
	if err != nil {
		return s, err
	}
	if n, ok := p.(census.Normalizer); ok {
		p = n.Normalize()
	}
	return s.with(step, p), nil
}

func toDocument(p census.Payload) (map[string]any, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	return doc, nil
}

// applyUpdates sets every dotted key of updates in doc. Keys are applied
// in sorted order so a parent and a child key resolve the same way every
// time.
func applyUpdates(doc map[string]any, updates map[string]any) error {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts := strings.Split(key, ".")
		target := doc
		for _, part := range parts[:len(parts)-1] {
			child, ok := target[part].(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownField, key)
			}
			target = child
		}
		leaf := parts[len(parts)-1]
		if _, ok := target[leaf]; !ok && !optionalKey(leaf) {
			return fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
		target[leaf] = updates[key]
	}
	return nil
}

// optionalKey reports keys that are omitted from the JSON form when
// empty and therefore may be absent from a document.
func optionalKey(k string) bool {
	return k == "id"
}
