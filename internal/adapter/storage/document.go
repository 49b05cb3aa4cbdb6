// Package storage keeps the rate cache and the country selection as
// namespaced fields of one JSON settings document.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"world-rates-service/internal/domain/model"
	"world-rates-service/internal/domain/ports"
	"world-rates-service/pkg/logger"
)

// Document is the settings document stored under one fixed key. Writes
// replace a single field and keep every sibling intact.
type Document struct {
	backend ports.DocumentBackend
	key     string
	log     *logger.Logger

	// serializes read-modify-write cycles within the process
	mu sync.Mutex
}

func NewDocument(backend ports.DocumentBackend, key string, log *logger.Logger) *Document {
	return &Document{backend: backend, key: key, log: log}
}

// ReadField returns the raw JSON at path, or nil when any segment is
// missing. A document that does not parse yields model.ErrStoreCorrupt.
func (d *Document) ReadField(ctx context.Context, path ...string) (json.RawMessage, error) {
	if len(path) == 0 {
		return nil, errors.New("empty field path")
	}
	raw, err := d.backend.Read(ctx, d.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.key, err)
	}
	if isNull(raw) {
		return nil, nil
	}

	node := json.RawMessage(raw)
	for i, segment := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(node, &obj); err != nil {
			return nil, fmt.Errorf("%w: field %v: %v", model.ErrStoreCorrupt, path[:i], err)
		}
		next, ok := obj[segment]
		if !ok || isNull(next) {
			return nil, nil
		}
		node = next
	}
	return node, nil
}

// WriteField stores value at path.
func (d *Document) WriteField(ctx context.Context, value any, path ...string) error {
	if len(path) == 0 {
		return errors.New("empty field path")
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode field %v: %w", path, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	raw, err := d.backend.Read(ctx, d.key)
	if err != nil {
		return fmt.Errorf("read %s: %w", d.key, err)
	}

	root := map[string]json.RawMessage{}
	if !isNull(raw) {
		if err := json.Unmarshal(raw, &root); err != nil {
			d.log.Warn("Discarding corrupt settings document", "key", d.key, "error", err)
			root = map[string]json.RawMessage{}
		}
	}

	if err := setPath(root, path, encoded); err != nil {
		return err
	}

	out, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.key, err)
	}
	if err := d.backend.Write(ctx, d.key, out); err != nil {
		return fmt.Errorf("write %s: %w", d.key, err)
	}
	return nil
}

func setPath(node map[string]json.RawMessage, path []string, value json.RawMessage) error {
	if len(path) == 1 {
		node[path[0]] = value
		return nil
	}

	child := map[string]json.RawMessage{}
	if existing, ok := node[path[0]]; ok && !isNull(existing) {
		// a non-object value in the way is replaced
		if err := json.Unmarshal(existing, &child); err != nil {
			child = map[string]json.RawMessage{}
		}
	}
	if err := setPath(child, path[1:], value); err != nil {
		return err
	}
	encoded, err := json.Marshal(child)
	if err != nil {
		return fmt.Errorf("encode field %s: %w", path[0], err)
	}
	node[path[0]] = encoded
	return nil
}

func isNull(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
