package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileEngine stores every collection in one JSON document on disk, the local
// single-user stand-in for a real backend. Writes go through a temp file and
// rename so a crash cannot leave a half-written document.
type FileEngine struct {
	path        string
	collections map[string]json.RawMessage
}

func NewFileEngine(path string) (*FileEngine, error) {
	engine := &FileEngine{path: path, collections: make(map[string]json.RawMessage)}

	payload, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return engine, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(payload) == 0 {
		return engine, nil
	}
	if err := json.Unmarshal(payload, &engine.collections); err != nil {
		return nil, fmt.Errorf("parse store file %s: %w", path, err)
	}
	return engine, nil
}

func (e *FileEngine) Load(_ context.Context, collection string) ([]byte, error) {
	payload, ok := e.collections[collection]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (e *FileEngine) Save(_ context.Context, collection string, payload []byte) error {
	stored := make(json.RawMessage, len(payload))
	copy(stored, payload)
	e.collections[collection] = stored
	return e.flush()
}

func (e *FileEngine) Close() error {
	return nil
}

func (e *FileEngine) flush() error {
	payload, err := json.MarshalIndent(e.collections, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(e.path)
	tmp, err := os.CreateTemp(dir, ".hrm-store-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, e.path)
}
