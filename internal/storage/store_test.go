package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if _, err := st.Save("mixer", Prefs{Theme: "nord", Focus: "pan"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	p, err := st.Load("mixer")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if p.Rack != "mixer" {
		t.Errorf("expected rack 'mixer', got '%s'", p.Rack)
	}
	if p.Theme != "nord" || p.Focus != "pan" {
		t.Errorf("Load() = %+v", p)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nothing"); !errors.Is(err, ErrNoPrefs) {
		t.Errorf("Load() error = %v, want ErrNoPrefs", err)
	}
}

func TestStoreKeepsNoValues(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if _, err := st.Save("synth", Prefs{Theme: "dracula", Focus: "cutoff"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "synth", prefsFile))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if strings.Contains(string(data), "value") {
		t.Errorf("%s holds knob values:\n%s", prefsFile, data)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "synth"))
	if len(entries) != 1 {
		t.Errorf("rack dir has %d files, want only %s", len(entries), prefsFile)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	all, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected 0 entries, got %d", len(all))
	}

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return t0 }
	st.Save("synth", Prefs{})
	st.now = func() time.Time { return t0.Add(time.Hour) }
	st.Save("mixer", Prefs{})

	all, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 || all[0].Rack != "mixer" {
		t.Errorf("List() = %v, want mixer first", all)
	}
}

func TestStoreStaysInsideBaseDir(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "data")
	st := New(base)

	for _, name := range []string{"../synth", "..", ".", "/", "  ", "a/../.."} {
		if _, err := st.Save(name, Prefs{Theme: "nord"}); err != nil {
			t.Fatalf("Save(%q) failed: %v", name, err)
		}
	}

	for _, name := range []string{"synth", "default"} {
		if _, err := os.Stat(filepath.Join(base, name, prefsFile)); err != nil {
			t.Errorf("%s/%s not created: %v", name, prefsFile, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, prefsFile)); !os.IsNotExist(err) {
		t.Errorf("a rack name escaped the base dir: %v", err)
	}
	entries, _ := os.ReadDir(base)
	if len(entries) != 2 {
		t.Errorf("base dir has %d entries, want synth and default", len(entries))
	}
}

func TestRackDir(t *testing.T) {
	tests := map[string]string{
		"":         "default",
		".":        "default",
		"..":       "default",
		"/":        "default",
		"../synth": "synth",
		"a/../..":  "default",
		"mixer":    "mixer",
	}
	for in, want := range tests {
		if got := rackDir(in); got != want {
			t.Errorf("rackDir(%q) = %q, want %q", in, got, want)
		}
	}
}
