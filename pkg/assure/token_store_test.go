package assure

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileTokenStore(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sub", "token")
	store := NewFileTokenStore(path)

	// Absent file means no session, not an error.
	token, err := store.Load()
	if err != nil || token != "" {
		t.Fatalf("Load() on missing file = %q, %v", token, err)
	}

	if err := store.Save("tok-abc"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	token, err = store.Load()
	if err != nil || token != "tok-abc" {
		t.Fatalf("Load() = %q, %v", token, err)
	}

	// Token files are private to the user.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}

	// Overwrite replaces, never appends.
	if err := store.Save("tok-def"); err != nil {
		t.Fatal(err)
	}
	token, _ = store.Load()
	if token != "tok-def" {
		t.Errorf("Load() after overwrite = %q", token)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	token, err = store.Load()
	if err != nil || token != "" {
		t.Errorf("Load() after clear = %q, %v", token, err)
	}

	// Clearing twice is a no-op.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestFileTokenStoreNoTempLeftovers(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := NewFileTokenStore(filepath.Join(dir, "token"))

	if err := store.Save("tok-abc"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "token.tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind after save")
	}
}

func TestMemoryTokenStore(t *testing.T) {
	t.Parallel()
	store := NewMemoryTokenStore()

	if token, err := store.Load(); err != nil || token != "" {
		t.Fatalf("empty store Load() = %q, %v", token, err)
	}
	if err := store.Save("tok"); err != nil {
		t.Fatal(err)
	}
	if token, _ := store.Load(); token != "tok" {
		t.Errorf("Load() = %q", token)
	}
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if token, _ := store.Load(); token != "" {
		t.Errorf("Load() after clear = %q", token)
	}
}

func TestDefaultTokenPath(t *testing.T) {
	t.Parallel()
	path := DefaultTokenPath()
	if filepath.Base(path) != "token" || filepath.Base(filepath.Dir(path)) != ".assuredesk" {
		t.Errorf("DefaultTokenPath() = %q", path)
	}
}
