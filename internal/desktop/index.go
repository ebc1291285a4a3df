// Package desktop resolves command names against the freedesktop
// application registry: applications/<cmd>.desktop under the XDG data
// directories, earlier directories taking precedence.
package desktop

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"beacon/internal/core/models"
)

var fieldCodes = regexp.MustCompile(`%.`)

type Index struct {
	dataDirs []string
	iconDirs []string
}

func NewIndex() *Index {
	return &Index{
		dataDirs: dataDirs(),
		iconDirs: iconDirs(),
	}
}

// NewIndexAt builds an index over explicit data and icon directories.
// Used by tests and by non-XDG setups.
func NewIndexAt(dataDirs, iconDirs []string) *Index {
	return &Index{dataDirs: dataDirs, iconDirs: iconDirs}
}

func dataDirs() []string {
	var dirs []string
	if home := os.Getenv("XDG_DATA_HOME"); home != "" {
		dirs = append(dirs, home)
	} else if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share"))
	}
	sys := os.Getenv("XDG_DATA_DIRS")
	if sys == "" {
		sys = "/usr/local/share:/usr/share"
	}
	for _, d := range strings.Split(sys, ":") {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func iconDirs() []string {
	var dirs []string
	for _, d := range dataDirs() {
		dirs = append(dirs, filepath.Join(d, "icons"))
	}
	return append(dirs, "/usr/share/pixmaps")
}

// Lookup finds the desktop entry named after cmd and resolves its display
// name, icon path and executable. The executable has its %X field codes
// stripped; an entry without one is treated as missing.
func (ix *Index) Lookup(cmd string) (models.AppEntry, bool) {
	for _, dir := range ix.dataDirs {
		path := filepath.Join(dir, "applications", cmd+".desktop")
		name, icon, execLine, err := parseEntry(path)
		if err != nil {
			continue
		}
		execPath := strings.TrimSpace(fieldCodes.ReplaceAllString(execLine, ""))
		if execPath == "" {
			continue
		}
		return models.AppEntry{
			Name: name,
			Icon: ix.iconPath(icon),
			Exec: execPath,
		}, true
	}
	return models.AppEntry{}, false
}

// parseEntry scans the [Desktop Entry] group for Name, Icon and Exec.
func parseEntry(path string) (name, icon, execLine string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", "", err
	}
	defer f.Close()

	inEntry := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "["):
			inEntry = line == "[Desktop Entry]"
		case !inEntry || line == "" || strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "Name=") && name == "":
			name = line[len("Name="):]
		case strings.HasPrefix(line, "Icon=") && icon == "":
			icon = line[len("Icon="):]
		case strings.HasPrefix(line, "Exec=") && execLine == "":
			execLine = line[len("Exec="):]
		}
	}
	return name, icon, execLine, scanner.Err()
}

// iconPath turns an icon reference into a file path. Absolute references
// are taken as-is; names are searched in the icon directories across the
// common formats. An unresolvable icon yields "".
func (ix *Index) iconPath(icon string) string {
	if icon == "" {
		return ""
	}
	if filepath.IsAbs(icon) {
		if _, err := os.Stat(icon); err == nil {
			return icon
		}
		return ""
	}
	exts := []string{".png", ".svg", ".xpm"}
	for _, dir := range ix.iconDirs {
		for _, ext := range exts {
			direct := filepath.Join(dir, icon+ext)
			if _, err := os.Stat(direct); err == nil {
				return direct
			}
			pattern := filepath.Join(dir, "hicolor", "*", "apps", icon+ext)
			if matches, err := filepath.Glob(pattern); err == nil && len(matches) > 0 {
				return matches[0]
			}
		}
	}
	return ""
}
