package suggestcache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/archivex/facetd/internal/db"
	"github.com/archivex/facetd/internal/domain/facet"
)

// --- Mocks ---

type mockSuggester struct {
	result []facet.Suggestion
	err    error
	calls  int
}

func (m *mockSuggester) Suggest(
	_ context.Context, _ facet.State, _, _ string, _ int,
) ([]facet.Suggestion, error) {
	m.calls++
	return m.result, m.err
}

type mockStore struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func testState(t *testing.T) facet.State {
	t.Helper()
	spec, err := facet.NewSpec("keywords", facet.KindTerms, "", nil)
	if err != nil {
		t.Fatalf("NewSpec: %v", err)
	}
	entry, err := facet.NewTermsEntry(spec, []string{"go"})
	if err != nil {
		t.Fatalf("NewTermsEntry: %v", err)
	}
	return facet.State{"keyword": entry}
}

// --- Tests ---

func TestSuggest_MissThenHit(t *testing.T) {
	inner := &mockSuggester{result: []facet.Suggestion{{Term: "go", Count: 12}}}
	store := newMockStore()
	cached := New(inner, store, time.Minute, nil, zap.NewNop())

	state := testState(t)

	first, err := cached.Suggest(context.Background(), state, "keyword", "g", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}

	second, err := cached.Suggest(context.Background(), state, "keyword", "g", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("second call should be served from cache, inner calls: %d", inner.calls)
	}
	if len(second) != len(first) || second[0] != first[0] {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}
}

func TestSuggest_KeyVariesWithRequest(t *testing.T) {
	inner := &mockSuggester{result: []facet.Suggestion{{Term: "go", Count: 1}}}
	store := newMockStore()
	cached := New(inner, store, time.Minute, nil, zap.NewNop())

	state := testState(t)

	if _, err := cached.Suggest(context.Background(), state, "keyword", "a", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cached.Suggest(context.Background(), state, "keyword", "b", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cached.Suggest(context.Background(), state, "keyword", "a", 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("distinct requests must miss independently, inner calls: %d", inner.calls)
	}
	if len(store.data) != 3 {
		t.Errorf("expected 3 cache entries, got %d", len(store.data))
	}
}

func TestSuggest_StoreErrorsDegradeToInner(t *testing.T) {
	inner := &mockSuggester{result: []facet.Suggestion{{Term: "go", Count: 1}}}
	store := newMockStore()
	store.getErr = errors.New("connection reset")
	store.setErr = errors.New("connection reset")
	cached := New(inner, store, time.Minute, nil, zap.NewNop())

	got, err := cached.Suggest(context.Background(), testState(t), "keyword", "", 10)
	if err != nil {
		t.Fatalf("cache failure must not fail the request: %v", err)
	}
	if len(got) != 1 || got[0].Term != "go" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestSuggest_InnerErrorNotCached(t *testing.T) {
	inner := &mockSuggester{err: errors.New("engine down")}
	store := newMockStore()
	cached := New(inner, store, time.Minute, nil, zap.NewNop())

	if _, err := cached.Suggest(context.Background(), testState(t), "keyword", "", 10); err == nil {
		t.Fatal("expected inner error to propagate")
	}
	if len(store.data) != 0 {
		t.Errorf("failed lookups must not be cached, store: %v", store.data)
	}
}

func TestSuggest_CorruptCacheEntryIgnored(t *testing.T) {
	inner := &mockSuggester{result: []facet.Suggestion{{Term: "go", Count: 1}}}
	store := newMockStore()
	cached := New(inner, store, time.Minute, nil, zap.NewNop())

	state := testState(t)
	key := cached.cacheKey(state, "keyword", "", 10)
	store.data[key] = []byte("not json")

	got, err := cached.Suggest(context.Background(), state, "keyword", "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("corrupt entry must fall through to inner, calls: %d", inner.calls)
	}
	if len(got) != 1 {
		t.Errorf("unexpected result: %+v", got)
	}

	var stored []facet.Suggestion
	if err := json.Unmarshal(store.data[key], &stored); err != nil {
		t.Errorf("corrupt entry should be overwritten with valid JSON: %v", err)
	}
}
