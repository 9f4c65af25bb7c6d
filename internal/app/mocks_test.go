package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/example/hearth/internal/ports/secondary"
)

// mockMemoryStore is an in-memory MemoryStore for service tests.
type mockMemoryStore struct {
	mu      sync.Mutex
	nextID  int
	records map[string]*secondary.MemoryRecord

	addErr error
}

func newMockMemoryStore() *mockMemoryStore {
	return &mockMemoryStore{records: make(map[string]*secondary.MemoryRecord)}
}

func (m *mockMemoryStore) AddMemory(ctx context.Context, content, author, kind, persona string, importance float64, metadata map[string]any) (string, error) {
	if m.addErr != nil {
		return "", m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("mem-%03d", m.nextID)
	m.records[id] = &secondary.MemoryRecord{
		ID:         id,
		Content:    content,
		Author:     author,
		Kind:       kind,
		Persona:    persona,
		Importance: importance,
		Metadata:   metadata,
	}
	return id, nil
}

func (m *mockMemoryStore) GetMemoryByID(ctx context.Context, id string) (*secondary.MemoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (m *mockMemoryStore) UpdateMemory(ctx context.Context, id string, record *secondary.MemoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("memory not found: %s", id)
	}
	copied := *record
	copied.ID = id
	m.records[id] = &copied
	return nil
}

func (m *mockMemoryStore) DeleteMemory(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[id]
	delete(m.records, id)
	return ok, nil
}

func (m *mockMemoryStore) ListRoutines(ctx context.Context, enabledOnly bool) ([]*secondary.MemoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []*secondary.MemoryRecord
	for _, id := range ids {
		record := m.records[id]
		if record.Kind != "routine" {
			continue
		}
		if enabledOnly {
			if enabled, _ := record.Metadata["enabled"].(bool); !enabled {
				continue
			}
		}
		copied := *record
		out = append(out, &copied)
	}
	return out, nil
}

// mockExecutionLog records appended entries in order.
type mockExecutionLog struct {
	mu      sync.Mutex
	entries []*secondary.ExecutionEntry
}

func (m *mockExecutionLog) Append(ctx context.Context, entry *secondary.ExecutionEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *entry
	m.entries = append(m.entries, &copied)
	return nil
}

func (m *mockExecutionLog) ListByRoutine(ctx context.Context, routineID string, limit int) ([]*secondary.ExecutionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.ExecutionEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].RoutineID == routineID {
			copied := *m.entries[i]
			out = append(out, &copied)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *mockExecutionLog) statuses(routineID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.entries {
		if e.RoutineID == routineID {
			out = append(out, e.Status)
		}
	}
	return out
}

// mockHandler is a scriptable ConnectorHandler.
type mockHandler struct {
	mu     sync.Mutex
	calls  []mockCall
	result *secondary.ConnectorResult
	err    error
}

type mockCall struct {
	method string
	params map[string]any
}

func (m *mockHandler) Handle(ctx context.Context, method string, params map[string]any) (*secondary.ConnectorResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, mockCall{method: method, params: params})
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &secondary.ConnectorResult{Success: true}, nil
}

func (m *mockHandler) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockConnectorBackend is a fixed service-to-handler map.
type mockConnectorBackend struct {
	handlers map[string]secondary.ConnectorHandler
}

func (m *mockConnectorBackend) Handler(service string) (secondary.ConnectorHandler, bool) {
	h, ok := m.handlers[service]
	return h, ok
}

func (m *mockConnectorBackend) Services() []string {
	out := make([]string, 0, len(m.handlers))
	for name := range m.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// mockNotifier records delivered notifications.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (m *mockNotifier) Notify(ctx context.Context, title, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return m.err
}

func (m *mockNotifier) delivered() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// mockStateSource serves scripted entity states. Successive calls for the
// same entity walk through the scripted sequence, holding the last value.
type mockStateSource struct {
	mu     sync.Mutex
	states map[string][]*secondary.EntityState
	index  map[string]int
	err    error
}

func newMockStateSource() *mockStateSource {
	return &mockStateSource{
		states: make(map[string][]*secondary.EntityState),
		index:  make(map[string]int),
	}
}

func (m *mockStateSource) script(entity string, states ...*secondary.EntityState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[entity] = states
}

func (m *mockStateSource) GetState(ctx context.Context, entityID string) (*secondary.EntityState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	seq := m.states[entityID]
	if len(seq) == 0 {
		return nil, fmt.Errorf("no state for entity: %s", entityID)
	}
	i := m.index[entityID]
	if i >= len(seq) {
		i = len(seq) - 1
	}
	m.index[entityID]++
	return seq[i], nil
}

// mockVisionSource serves scripted detection frames in sequence, holding
// the last frame once the script runs out.
type mockVisionSource struct {
	mu     sync.Mutex
	frames [][]secondary.Detection
	index  int
	err    error
}

func (m *mockVisionSource) Detect(ctx context.Context, query secondary.VisionQuery) ([]secondary.Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if len(m.frames) == 0 {
		return nil, nil
	}
	i := m.index
	if i >= len(m.frames) {
		i = len(m.frames) - 1
	}
	m.index++
	return m.frames[i], nil
}
