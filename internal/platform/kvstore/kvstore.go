// Package kvstore persists one serialized JSON collection per entity type
// behind a pluggable engine. A single lock serializes every cross-collection
// validation read with the write that follows it, so aggregate invariants
// (position capacity, single manager, deletion guards) cannot race.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

var ErrReadOnlyTx = errors.New("kvstore: put inside read-only transaction")

// Engine loads and saves raw collection payloads. Load returns a nil payload
// for a collection that has never been written.
type Engine interface {
	Load(ctx context.Context, collection string) ([]byte, error)
	Save(ctx context.Context, collection string, payload []byte) error
	Close() error
}

type Store struct {
	mu     sync.RWMutex
	engine Engine
}

func New(engine Engine) *Store {
	return &Store{engine: engine}
}

// View runs fn under the read lock. The transaction sees committed state only.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&Tx{ctx: ctx, engine: s.engine, readOnly: true})
}

// Update runs fn under the write lock. Writes are staged in the transaction
// and persisted only when fn returns nil, so a failed mutation leaves no
// partial state behind.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{ctx: ctx, engine: s.engine, staged: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	for collection, payload := range tx.staged {
		if err := s.engine.Save(tx.ctx, collection, payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.engine.Close()
}

type Tx struct {
	ctx      context.Context
	engine   Engine
	readOnly bool
	staged   map[string][]byte
}

// Get decodes a whole collection into out. Reads observe writes staged
// earlier in the same transaction. A missing collection leaves out untouched.
func (tx *Tx) Get(collection string, out any) error {
	if payload, ok := tx.staged[collection]; ok {
		return json.Unmarshal(payload, out)
	}
	payload, err := tx.engine.Load(tx.ctx, collection)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, out)
}

// Put stages the full replacement value for a collection.
func (tx *Tx) Put(collection string, value any) error {
	if tx.readOnly {
		return ErrReadOnlyTx
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	tx.staged[collection] = payload
	return nil
}
