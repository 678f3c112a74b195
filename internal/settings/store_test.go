package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/pterm/pterm"
)

type memRepo struct {
	values map[string]string
}

func newMemRepo() *memRepo {
	return &memRepo{values: make(map[string]string)}
}

func (m *memRepo) Get(name string) (string, error) {
	return m.values[name], nil
}

func (m *memRepo) Set(name string, value string) error {
	m.values[name] = value
	return nil
}

func (m *memRepo) Delete(name string) error {
	delete(m.values, name)
	return nil
}

type stubValidator struct {
	accept bool
	calls  int
}

func (v *stubValidator) Validate(ctx context.Context, apiKey string) bool {
	v.calls++
	return v.accept
}

func testLogger() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(pterm.LogLevelError)
}

func newTestStore(t *testing.T, repo *memRepo, validator Validator) *Store {
	t.Helper()
	store, err := NewStore(repo, validator, testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestSetAPIKeyAccepted(t *testing.T) {
	repo := newMemRepo()
	validator := &stubValidator{accept: true}
	store := newTestStore(t, repo, validator)

	if err := store.SetAPIKey(context.Background(), "good-key"); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}

	if store.APIKey() != "good-key" {
		t.Errorf("expected stored key, got %q", store.APIKey())
	}
	if repo.values[KeyAPIKey] != "good-key" {
		t.Errorf("expected persisted key, got %q", repo.values[KeyAPIKey])
	}
	if store.ValidatedAt().IsZero() {
		t.Error("expected validation timestamp to be set")
	}
	if repo.values[KeyValidatedAt] == "" {
		t.Error("expected validation timestamp to be persisted")
	}
}

func TestSetAPIKeyRejectedRevertsToUnset(t *testing.T) {
	repo := newMemRepo()
	repo.values[KeyAPIKey] = "old-key"
	validator := &stubValidator{accept: false}
	store := newTestStore(t, repo, validator)

	err := store.SetAPIKey(context.Background(), "bad-key")
	if !errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("expected ErrCredentialInvalid, got %v", err)
	}

	if store.APIKey() != "" {
		t.Errorf("expected cleared key after rejection, got %q", store.APIKey())
	}
	if repo.values[KeyAPIKey] != "" {
		t.Errorf("expected persisted key cleared, got %q", repo.values[KeyAPIKey])
	}
	if !store.ValidatedAt().IsZero() {
		t.Error("expected validation timestamp cleared after rejection")
	}
}

func TestRunning(t *testing.T) {
	repo := newMemRepo()
	validator := &stubValidator{accept: true}
	store := newTestStore(t, repo, validator)

	if store.Running() {
		t.Error("expected not running with no key and disabled")
	}

	if err := store.SetEnabled(true); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if store.Running() {
		t.Error("expected not running while the key is unset")
	}

	if err := store.SetAPIKey(context.Background(), "key"); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}
	if !store.Running() {
		t.Error("expected running with key set and enabled")
	}

	if err := store.SetEnabled(false); err != nil {
		t.Fatalf("SetEnabled(false): %v", err)
	}
	if store.Running() {
		t.Error("expected not running after disable")
	}
}

func TestSetPurgeDays(t *testing.T) {
	repo := newMemRepo()
	store := newTestStore(t, repo, &stubValidator{accept: true})

	for _, days := range []int{7, 14, 21, 30} {
		if err := store.SetPurgeDays(days); err != nil {
			t.Fatalf("SetPurgeDays(%d): %v", days, err)
		}
		if store.PurgeDays() != days {
			t.Errorf("expected purge days %d, got %d", days, store.PurgeDays())
		}
	}

	// Values outside the allowed set fall back to the default
	for _, days := range []int{0, -1, 8, 365} {
		if err := store.SetPurgeDays(days); err != nil {
			t.Fatalf("SetPurgeDays(%d): %v", days, err)
		}
		if store.PurgeDays() != DefaultPurgeDays {
			t.Errorf("SetPurgeDays(%d): expected fallback to %d, got %d",
				days, DefaultPurgeDays, store.PurgeDays())
		}
	}
}

func TestLoadPersistedValues(t *testing.T) {
	repo := newMemRepo()
	repo.values[KeyAPIKey] = "persisted"
	repo.values[KeyEnabled] = "1"
	repo.values[KeyPurgeDays] = "21"

	store := newTestStore(t, repo, &stubValidator{accept: true})

	if store.APIKey() != "persisted" {
		t.Errorf("expected persisted key loaded, got %q", store.APIKey())
	}
	if !store.Enabled() {
		t.Error("expected enabled flag loaded")
	}
	if store.PurgeDays() != 21 {
		t.Errorf("expected purge days 21, got %d", store.PurgeDays())
	}
}

func TestLoadSanitizesPurgeDays(t *testing.T) {
	repo := newMemRepo()
	repo.values[KeyPurgeDays] = "12"

	store := newTestStore(t, repo, &stubValidator{accept: true})

	if store.PurgeDays() != DefaultPurgeDays {
		t.Errorf("expected stored invalid purge days to load as %d, got %d",
			DefaultPurgeDays, store.PurgeDays())
	}
}
