package desktop

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDesktopFile(t *testing.T, dataDir, name, content string) {
	t.Helper()
	dir := filepath.Join(dataDir, "applications")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".desktop"), []byte(content), 0o644))
}

func TestLookupParsesEntry(t *testing.T) {
	dataDir := t.TempDir()
	iconDir := t.TempDir()
	iconFile := filepath.Join(iconDir, "firefox.png")
	require.NoError(t, os.WriteFile(iconFile, []byte("png"), 0o644))

	writeDesktopFile(t, dataDir, "firefox", `[Desktop Entry]
Name=Firefox
Icon=firefox
Exec=/usr/lib/firefox/firefox %u
`)

	ix := NewIndexAt([]string{dataDir}, []string{iconDir})
	app, ok := ix.Lookup("firefox")
	require.True(t, ok)
	assert.Equal(t, "Firefox", app.Name)
	assert.Equal(t, iconFile, app.Icon)
	assert.Equal(t, "/usr/lib/firefox/firefox", app.Exec)
}

func TestLookupIgnoresOtherGroups(t *testing.T) {
	dataDir := t.TempDir()
	writeDesktopFile(t, dataDir, "term", `[Desktop Entry]
Name=Terminal
Exec=xterm
[Desktop Action NewWindow]
Name=New Window
Exec=xterm -new
`)

	ix := NewIndexAt([]string{dataDir}, nil)
	app, ok := ix.Lookup("term")
	require.True(t, ok)
	assert.Equal(t, "Terminal", app.Name)
	assert.Equal(t, "xterm", app.Exec)
}

func TestLookupFirstDataDirWins(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeDesktopFile(t, first, "editor", "[Desktop Entry]\nName=Local\nExec=local-editor\n")
	writeDesktopFile(t, second, "editor", "[Desktop Entry]\nName=System\nExec=system-editor\n")

	ix := NewIndexAt([]string{first, second}, nil)
	app, ok := ix.Lookup("editor")
	require.True(t, ok)
	assert.Equal(t, "Local", app.Name)
}

func TestLookupSkipsEntryWithoutExec(t *testing.T) {
	dataDir := t.TempDir()
	writeDesktopFile(t, dataDir, "broken", "[Desktop Entry]\nName=Broken\n")

	ix := NewIndexAt([]string{dataDir}, nil)
	_, ok := ix.Lookup("broken")
	assert.False(t, ok)
}

func TestLookupMissingEntry(t *testing.T) {
	ix := NewIndexAt([]string{t.TempDir()}, nil)
	_, ok := ix.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestIconPathFallsBackToHicolor(t *testing.T) {
	dataDir := t.TempDir()
	iconDir := t.TempDir()
	appsDir := filepath.Join(iconDir, "hicolor", "48x48", "apps")
	require.NoError(t, os.MkdirAll(appsDir, 0o755))
	iconFile := filepath.Join(appsDir, "gimp.png")
	require.NoError(t, os.WriteFile(iconFile, []byte("png"), 0o644))

	writeDesktopFile(t, dataDir, "gimp", "[Desktop Entry]\nName=GIMP\nIcon=gimp\nExec=gimp %U\n")

	ix := NewIndexAt([]string{dataDir}, []string{iconDir})
	app, ok := ix.Lookup("gimp")
	require.True(t, ok)
	assert.Equal(t, iconFile, app.Icon)
}

func TestIconPathUnresolvableIsEmpty(t *testing.T) {
	dataDir := t.TempDir()
	writeDesktopFile(t, dataDir, "ghost", "[Desktop Entry]\nName=Ghost\nIcon=no-such-icon\nExec=ghost\n")

	ix := NewIndexAt([]string{dataDir}, []string{t.TempDir()})
	app, ok := ix.Lookup("ghost")
	require.True(t, ok)
	assert.Equal(t, "", app.Icon)
}
