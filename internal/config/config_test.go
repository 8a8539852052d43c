package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP:   HTTPConfig{Port: 8080},
		Engine: EngineConfig{BaseURL: "http://localhost:9200", Index: "documents"},
		Facets: map[string]FacetConfig{
			"keyword": {Field: "keywords", Kind: "terms"},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingEngine(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing engine.base_url")
	}

	cfg = validConfig()
	cfg.Engine.Index = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing engine.index")
	}
}

func TestValidate_NoFacets(t *testing.T) {
	cfg := validConfig()
	cfg.Facets = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when no facets configured")
	}
}

func TestValidate_FacetKinds(t *testing.T) {
	for _, kind := range []string{"terms", "dates", "query"} {
		cfg := validConfig()
		cfg.Facets["f"] = FacetConfig{Field: "f", Kind: kind}
		if err := cfg.Validate(); err != nil {
			t.Errorf("kind %q should be valid: %v", kind, err)
		}
	}

	cfg := validConfig()
	cfg.Facets["f"] = FacetConfig{Field: "f", Kind: "fuzzy"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestValidate_FacetExtra(t *testing.T) {
	cfg := validConfig()
	cfg.Facets["person"] = FacetConfig{
		Field: "persons.name",
		Kind:  "terms",
		Extra: &ExtraClause{Term: &TermClause{Field: "persons.role", Value: "author"}},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Facets["person"] = FacetConfig{
		Field: "persons.name",
		Kind:  "terms",
		Extra: &ExtraClause{},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty extra clause")
	}

	cfg.Facets["person"] = FacetConfig{
		Field: "persons.name",
		Kind:  "terms",
		Extra: &ExtraClause{
			Term:  &TermClause{Field: "a", Value: "b"},
			Range: &RangeClause{Field: "c"},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when both extra variants are set")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected read timeout 10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected write timeout 60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Cache.TTLSec != 30 {
		t.Errorf("expected cache ttl 30, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Search.DefaultPageSize != 20 || cfg.Search.MaxPageSize != 100 {
		t.Errorf("unexpected pagination defaults: %+v", cfg.Search)
	}
	if cfg.Logging.MaxSizeMB != 100 {
		t.Errorf("expected log rotation size 100, got %d", cfg.Logging.MaxSizeMB)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{ReadTimeoutSec: 5},
		Search: SearchConfig{MaxPageSize: 50},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 5 {
		t.Errorf("explicit read timeout overwritten: %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Search.MaxPageSize != 50 {
		t.Errorf("explicit max page size overwritten: %d", cfg.Search.MaxPageSize)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FACETD_TEST_URL", "http://engine:9200")

	in := []byte("base_url: ${FACETD_TEST_URL}\nindex: ${FACETD_TEST_INDEX:-documents}\n")
	got := string(expandEnvVars(in))
	want := "base_url: http://engine:9200\nindex: documents\n"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestCacheEnabled(t *testing.T) {
	if (CacheConfig{}).Enabled() {
		t.Error("empty cache config must be disabled")
	}
	if !(CacheConfig{Addrs: []string{"localhost:6379"}}).Enabled() {
		t.Error("configured cache must be enabled")
	}
}
