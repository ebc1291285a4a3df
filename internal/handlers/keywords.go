// Package handlers holds the keyword dispatch table: a closed mapping from
// literal input prefixes to handler functions. A hit is prepended to the
// result buffer, ahead of every other suggestion.
package handlers

import (
	"context"
	"os/exec"
	"sort"
	"strings"
	"time"

	"beacon/internal/config"
	"beacon/internal/core/models"
)

// KeywordHandler turns an input line into a prioritized entry. Returning
// false contributes nothing.
type KeywordHandler func(input string) (models.Entry, bool)

type Table struct {
	handlers map[string]KeywordHandler
	order    []string
}

// NewTable builds the dispatch table. The set of keywords is fixed; the
// commands the handlers emit come from the live configuration.
func NewTable(conf *config.Store) *Table {
	t := &Table{handlers: make(map[string]KeywordHandler)}
	t.register("bat", batteryHandler)
	t.register("vi", editorHandler(conf))
	return t
}

func (t *Table) register(keyword string, h KeywordHandler) {
	t.handlers[keyword] = h
	t.order = append(t.order, keyword)
	// Longest keyword first, so overlapping prefixes dispatch to the more
	// specific handler.
	sort.Slice(t.order, func(i, j int) bool {
		return len(t.order[i]) > len(t.order[j])
	})
}

// Dispatch invokes the handler of the first keyword the input starts with.
func (t *Table) Dispatch(input string) (models.Entry, bool) {
	for _, keyword := range t.order {
		if strings.HasPrefix(input, keyword) {
			return t.handlers[keyword](input)
		}
	}
	return models.Entry{}, false
}

// batteryHandler shows the current battery state as an informational entry.
func batteryHandler(string) (models.Entry, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "acpi").Output()
	if err != nil {
		return models.Entry{}, false
	}
	title := strings.TrimSpace(string(out))
	if title == "" {
		return models.Entry{}, false
	}
	return models.Entry{Title: title}, true
}

// editorHandler offers the configured editor in a terminal.
func editorHandler(conf *config.Store) KeywordHandler {
	return func(string) (models.Entry, bool) {
		cfg := conf.Current()
		return models.Entry{
			Title:  cfg.Terminal.Editor,
			Action: cfg.Terminal.Command + " " + cfg.Terminal.Editor,
		}, true
	}
}
