package ports

import (
	"context"

	"beacon/internal/core/models"
)

// Completer enumerates command names that match a typed prefix.
type Completer interface {
	Complete(ctx context.Context, prefix string) ([]string, error)
}

// AppIndex resolves a command name against the desktop application registry.
type AppIndex interface {
	Lookup(cmd string) (models.AppEntry, bool)
}

// Searcher finds filesystem entries whose base name matches a pattern.
type Searcher interface {
	Search(ctx context.Context, pattern string, limit int) ([]models.Match, error)
}

// Lookup queries an external knowledge service for an instant answer.
type Lookup interface {
	Query(ctx context.Context, query string) (models.Answer, bool, error)
}

// Evaluator evaluates an input line as an expression. A false second return
// means the input did not produce a presentable value; evaluation failures
// are indistinguishable from that.
type Evaluator interface {
	Eval(ctx context.Context, expr string) (string, bool)
}

// History records entered inputs and suggests earlier ones by prefix.
type History interface {
	Record(input string)
	Suggest(prefix string, max int) []string
}
