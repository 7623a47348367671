package multiserde

import (
	"fmt"
	"sync"
)

// MockRegistryClient is an in-memory RegistryClient for tests and examples.
// It keeps the same idempotency guarantees the real registry gives: resolving
// an already bound (schema, codec) pair returns the existing encoding id.
type MockRegistryClient struct {
	mu        sync.Mutex
	groups    map[string]GroupProperties
	codecs    map[string]map[string]bool
	versions  map[string]map[string]VersionInfo
	encodings map[string]map[string]EncodingId
	infos     map[string]map[EncodingId]EncodingInfo
	nextID    uint32
	calls     map[string]int
	err       error
}

func NewMockRegistryClient() *MockRegistryClient {
	return &MockRegistryClient{
		groups:    map[string]GroupProperties{},
		codecs:    map[string]map[string]bool{},
		versions:  map[string]map[string]VersionInfo{},
		encodings: map[string]map[string]EncodingId{},
		infos:     map[string]map[EncodingId]EncodingInfo{},
		calls:     map[string]int{},
	}
}

// Fail makes every subsequent call return err; Fail(nil) restores the client
func (m *MockRegistryClient) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times the named operation was invoked
func (m *MockRegistryClient) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MockRegistryClient) CreateGroupIfAbsent(groupID string, properties GroupProperties) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[`CreateGroupIfAbsent`]++
	if m.err != nil {
		return m.err
	}

	if _, ok := m.groups[groupID]; !ok {
		m.groups[groupID] = properties
	}

	return nil
}

func (m *MockRegistryClient) RegisterCodec(groupID string, codecName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[`RegisterCodec`]++
	if m.err != nil {
		return m.err
	}

	if m.codecs[groupID] == nil {
		m.codecs[groupID] = map[string]bool{}
	}
	m.codecs[groupID][codecName] = true

	return nil
}

func (m *MockRegistryClient) GetCodecs(groupID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[`GetCodecs`]++
	if m.err != nil {
		return nil, m.err
	}

	var names []string
	for name := range m.codecs[groupID] {
		names = append(names, name)
	}

	return names, nil
}

func (m *MockRegistryClient) RegisterSchemaIfAbsent(groupID string, schema SchemaInfo) (VersionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[`RegisterSchemaIfAbsent`]++
	if m.err != nil {
		return VersionInfo{}, m.err
	}

	if m.versions[groupID] == nil {
		m.versions[groupID] = map[string]VersionInfo{}
	}

	key := schema.key()
	if v, ok := m.versions[groupID][key]; ok {
		return v, nil
	}

	m.nextID++
	v := VersionInfo{
		SchemaName: schema.Name,
		Version:    len(m.versions[groupID]) + 1,
		Id:         int(m.nextID),
	}
	m.versions[groupID][key] = v

	return v, nil
}

func (m *MockRegistryClient) ResolveEncodingId(groupID string, schema SchemaInfo, codecName string) (EncodingId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[`ResolveEncodingId`]++
	if m.err != nil {
		return 0, m.err
	}

	if m.encodings[groupID] == nil {
		m.encodings[groupID] = map[string]EncodingId{}
		m.infos[groupID] = map[EncodingId]EncodingInfo{}
	}

	key := fmt.Sprintf(`%s/%s`, schema.key(), codecName)
	if id, ok := m.encodings[groupID][key]; ok {
		return id, nil
	}

	m.nextID++
	id := EncodingId(m.nextID)
	m.encodings[groupID][key] = id
	m.infos[groupID][id] = EncodingInfo{Schema: schema, CodecName: codecName}

	return id, nil
}

func (m *MockRegistryClient) GetEncodingInfo(groupID string, id EncodingId) (EncodingInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[`GetEncodingInfo`]++
	if m.err != nil {
		return EncodingInfo{}, m.err
	}

	info, ok := m.infos[groupID][id]
	if !ok {
		return EncodingInfo{}, &RegistryError{
			Op:  `GetEncodingInfo`,
			Err: fmt.Errorf(`encoding id [%d] not bound in group [%s]`, id, groupID),
		}
	}

	return info, nil
}
