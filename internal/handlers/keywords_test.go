package handlers

import (
	"os/exec"
	"testing"

	"beacon/internal/config"
)

func testStore() *config.Store {
	cfg := config.Default()
	cfg.Terminal.Command = "urxvt -e"
	cfg.Terminal.Editor = "nvim"
	return config.NewStore(cfg)
}

func TestDispatchEditor(t *testing.T) {
	table := NewTable(testStore())

	entry, ok := table.Dispatch("vi")
	if !ok {
		t.Fatal("Dispatch(\"vi\") = false, want handler hit")
	}
	if entry.Title != "nvim" {
		t.Errorf("Title = %q, want %q", entry.Title, "nvim")
	}
	if entry.Action != "urxvt -e nvim" {
		t.Errorf("Action = %q, want %q", entry.Action, "urxvt -e nvim")
	}
}

func TestDispatchMatchesPrefix(t *testing.T) {
	table := NewTable(testStore())

	if _, ok := table.Dispatch("vim"); !ok {
		t.Error("Dispatch(\"vim\") = false, want prefix match on \"vi\"")
	}
}

func TestDispatchUnknownInput(t *testing.T) {
	table := NewTable(testStore())

	if _, ok := table.Dispatch("ls"); ok {
		t.Error("Dispatch(\"ls\") = true, want miss")
	}
}

func TestDispatchReflectsConfigChanges(t *testing.T) {
	store := testStore()
	table := NewTable(store)

	next := config.Default()
	next.Terminal.Editor = "helix"
	store.Replace(next)

	entry, ok := table.Dispatch("vi")
	if !ok {
		t.Fatal("Dispatch(\"vi\") = false, want handler hit")
	}
	if entry.Title != "helix" {
		t.Errorf("Title = %q, want %q", entry.Title, "helix")
	}
}

func TestDispatchBattery(t *testing.T) {
	if _, err := exec.LookPath("acpi"); err != nil {
		t.Skip("acpi not installed")
	}
	table := NewTable(testStore())

	entry, ok := table.Dispatch("bat")
	if ok && entry.Title == "" {
		t.Error("battery entry has empty title")
	}
}
