package accountconfig

import (
	"testing"

	"github.com/olafkfreund/comunicado-sub004/internal/domain/account"
	"github.com/olafkfreund/comunicado-sub004/internal/infrastructure/secretstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	secrets, err := secretstore.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	store, err := New(t.TempDir(), secrets)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return store
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore(t)
	cfg := account.NewConfig("google", "user@example.com")
	cfg.IMAPServer = "imap.gmail.com"
	cfg.IMAPPort = 993
	cfg.SMTPServer = "smtp.gmail.com"
	cfg.SMTPPort = 587
	cfg.AddScope("https://www.googleapis.com/auth/calendar")

	if err := store.Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Get(cfg.AccountID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.AccountID != cfg.AccountID {
		t.Errorf("AccountID = %q, want %q", got.AccountID, cfg.AccountID)
	}
	if got.IMAPServer != cfg.IMAPServer || got.IMAPPort != cfg.IMAPPort {
		t.Errorf("IMAP coords mismatch: got %s:%d, want %s:%d", got.IMAPServer, got.IMAPPort, cfg.IMAPServer, cfg.IMAPPort)
	}
	if len(got.Scopes) != 1 || got.Scopes[0] != cfg.Scopes[0] {
		t.Errorf("Scopes mismatch: got %v, want %v", got.Scopes, cfg.Scopes)
	}
}

func TestGetMissingReturnsErrAccountNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get("google_missing@example.com")
	if err != account.ErrAccountNotFound {
		t.Errorf("Get() error = %v, want ErrAccountNotFound", err)
	}
}

func TestListReturnsSortedAccounts(t *testing.T) {
	store := newTestStore(t)
	for _, email := range []string{"zed@example.com", "amy@example.com", "mid@example.com"} {
		cfg := account.NewConfig("google", email)
		if err := store.Save(cfg); err != nil {
			t.Fatalf("Save(%s) failed: %v", email, err)
		}
	}

	all, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List returned %d accounts, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].AccountID > all[i].AccountID {
			t.Errorf("List not sorted: %q appears before %q", all[i-1].AccountID, all[i].AccountID)
		}
	}
}

func TestDeletePurgesFileAndSecrets(t *testing.T) {
	secrets, err := secretstore.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	store, err := New(t.TempDir(), secrets)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cfg := account.NewConfig("google", "user@example.com")
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := secrets.Put(ServiceAccessToken, cfg.AccountID, []byte("access")); err != nil {
		t.Fatalf("Put access token failed: %v", err)
	}
	if err := secrets.Put(ServiceRefreshToken, cfg.AccountID, []byte("refresh")); err != nil {
		t.Fatalf("Put refresh token failed: %v", err)
	}

	if err := store.Delete(cfg.AccountID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get(cfg.AccountID); err != account.ErrAccountNotFound {
		t.Errorf("Get after delete = %v, want ErrAccountNotFound", err)
	}
	if _, err := secrets.Get(ServiceAccessToken, cfg.AccountID); err != secretstore.ErrKeyNotFound {
		t.Errorf("access token survived delete: %v", err)
	}
	if _, err := secrets.Get(ServiceRefreshToken, cfg.AccountID); err != secretstore.ErrKeyNotFound {
		t.Errorf("refresh token survived delete: %v", err)
	}
}

func TestSetDefaultIsExclusive(t *testing.T) {
	store := newTestStore(t)
	a := account.NewConfig("google", "a@example.com")
	b := account.NewConfig("google", "b@example.com")
	if err := store.Save(a); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(b); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.SetDefault(a.AccountID); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if err := store.SetDefault(b.AccountID); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}

	def, err := store.GetDefault()
	if err != nil {
		t.Fatalf("GetDefault failed: %v", err)
	}
	if def.AccountID != b.AccountID {
		t.Errorf("GetDefault() = %q, want %q", def.AccountID, b.AccountID)
	}

	reloadedA, err := store.Get(a.AccountID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if reloadedA.IsDefault {
		t.Error("previous default account should have been cleared")
	}
}
