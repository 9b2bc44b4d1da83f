// Package cluster tracks the data-cluster layout a database open returns.
package cluster

import (
	"sort"
	"strings"
	"sync"
)

// Cluster pairs a data-cluster id with its name.
type Cluster struct {
	ID   int16
	Name string
}

// Map stores the cluster layout of the currently open database. Names are
// matched case-insensitively, the way the server treats them. A database
// open or reload replaces the whole layout; cluster add/drop adjust it
// incrementally.
type Map struct {
	mu     sync.RWMutex
	order  []Cluster
	byName map[string]int16
	byID   map[int16]string
}

// NewMap constructs an empty cluster map.
func NewMap() *Map {
	m := new(Map)
	m.byName = make(map[string]int16)
	m.byID = make(map[int16]string)
	return m
}

// Replace installs a fresh layout, dropping whatever was known before.
func (m *Map) Replace(clusters []Cluster) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = append(m.order[:0:0], clusters...)
	m.byName = make(map[string]int16, len(clusters))
	m.byID = make(map[int16]string, len(clusters))
	for _, c := range clusters {
		m.byName[strings.ToLower(c.Name)] = c.ID
		m.byID[c.ID] = c.Name
	}
}

// Add records one newly created cluster.
func (m *Map) Add(c Cluster) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[c.ID]; !exists {
		m.order = append(m.order, c)
	}
	m.byName[strings.ToLower(c.Name)] = c.ID
	m.byID[c.ID] = c.Name
}

// Remove forgets a dropped cluster. It reports whether the id was known.
func (m *Map) Remove(id int16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.byID[id]
	if !ok {
		return false
	}
	delete(m.byID, id)
	delete(m.byName, strings.ToLower(name))
	for i, c := range m.order {
		if c.ID == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// IDByName resolves a cluster name to its id, ignoring case.
func (m *Map) IDByName(name string) (int16, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byName[strings.ToLower(name)]
	return id, ok
}

// NameByID resolves a cluster id to its name.
func (m *Map) NameByID(id int16) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.byID[id]
	return name, ok
}

// Clusters returns a copy of the layout in the order the server sent it.
func (m *Map) Clusters() []Cluster {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Cluster(nil), m.order...)
}

// IDs returns all known cluster ids in ascending order.
func (m *Map) IDs() []int16 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int16, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of known clusters.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
