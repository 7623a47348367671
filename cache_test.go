package multiserde

import (
	"reflect"
	"sync"
	"testing"

	"github.com/tryfix/errors"
)

func seedEncoding(t *testing.T, client *MockRegistryClient) EncodingId {
	t.Helper()

	schema := SchemaInfo{Name: `com.example.Order`, Format: FormatAvro, SchemaData: []byte(avroSchemaV1)}
	id, err := client.ResolveEncodingId(`orders`, schema, CodecNone)
	if err != nil {
		t.Fatal(err)
	}

	return id
}

func TestEncodingCache_ResolvesOnce(t *testing.T) {
	client := NewMockRegistryClient()
	id := seedEncoding(t, client)

	cache := NewEncodingCache(`orders`, client)

	first, err := cache.GetEncodingInfo(id)
	if err != nil {
		t.Fatal(err)
	}

	second, err := cache.GetEncodingInfo(id)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf(`need %v, have %v`, first, second)
	}

	if calls := client.Calls(`GetEncodingInfo`); calls != 1 {
		t.Errorf(`need 1 registry call, have %d`, calls)
	}
}

func TestEncodingCache_FailureIsNotCached(t *testing.T) {
	client := NewMockRegistryClient()
	id := seedEncoding(t, client)

	cache := NewEncodingCache(`orders`, client)

	client.Fail(errors.New(`registry down`))
	if _, err := cache.GetEncodingInfo(id); err == nil {
		t.Fatal(`need a resolution failure`)
	}

	client.Fail(nil)
	info, err := cache.GetEncodingInfo(id)
	if err != nil {
		t.Fatal(err)
	}

	if info.CodecName != CodecNone {
		t.Errorf(`need codec [%s], have [%s]`, CodecNone, info.CodecName)
	}
}

func TestEncodingCache_UnknownId(t *testing.T) {
	client := NewMockRegistryClient()
	cache := NewEncodingCache(`orders`, client)

	if _, err := cache.GetEncodingInfo(EncodingId(404)); err == nil {
		t.Fatal(`need a resolution failure for an unbound id`)
	}
}

func TestEncodingCache_ConcurrentFirstUse(t *testing.T) {
	client := NewMockRegistryClient()
	id := seedEncoding(t, client)

	cache := NewEncodingCache(`orders`, client)

	const callers = 50
	results := make([]EncodingInfo, callers)

	wg := sync.WaitGroup{}
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			info, err := cache.GetEncodingInfo(id)
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = info
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if !reflect.DeepEqual(results[0], results[i]) {
			t.Fatalf(`caller %d saw %v, caller 0 saw %v`, i, results[i], results[0])
		}
	}

	if calls := client.Calls(`GetEncodingInfo`); calls != 1 {
		t.Errorf(`need 1 registry call, have %d`, calls)
	}
}
