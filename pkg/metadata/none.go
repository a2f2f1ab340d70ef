// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metadata

import (
	"sync"

	"github.com/pkg/errors"
)

// None keeps metadata in memory only. It is used when no database is configured.
type None struct {
	mu    sync.Mutex
	kinds map[string]map[string]string
}

// NewNone returns in-memory metadata.
func NewNone() *None {
	return &None{kinds: map[string]map[string]string{}}
}

// Record stores a key and value under kind.
func (n *None) Record(key, value, kind string) error {
	return n.RecordMap(map[string]string{key: value}, kind)
}

// RecordMap merges metadata under kind.
func (n *None) RecordMap(metadata map[string]string, kind string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	stored, ok := n.kinds[kind]
	if !ok {
		stored = map[string]string{}
		n.kinds[kind] = stored
	}
	for key, value := range metadata {
		stored[key] = value
	}
	return nil
}

// GetByKind returns copy of metadata stored under kind.
func (n *None) GetByKind(kind string) (map[string]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	stored, ok := n.kinds[kind]
	if !ok {
		return nil, errors.Errorf("no metadata of kind %q", kind)
	}
	result := make(map[string]string, len(stored))
	for key, value := range stored {
		result[key] = value
	}
	return result, nil
}

// Clear forgets everything.
func (n *None) Clear() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = map[string]map[string]string{}
	return nil
}
