package kvstore

import "context"

// MemoryEngine keeps collections in process memory. Used by tests and as the
// default engine when no persistence is configured.
type MemoryEngine struct {
	collections map[string][]byte
}

func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{collections: make(map[string][]byte)}
}

func (e *MemoryEngine) Load(_ context.Context, collection string) ([]byte, error) {
	payload, ok := e.collections[collection]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (e *MemoryEngine) Save(_ context.Context, collection string, payload []byte) error {
	stored := make([]byte, len(payload))
	copy(stored, payload)
	e.collections[collection] = stored
	return nil
}

func (e *MemoryEngine) Close() error {
	return nil
}
