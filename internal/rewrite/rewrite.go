// Package rewrite defines the documentation-rewrite service boundary and the
// middleware applied around it. A Service turns one file's content into the
// same content with documentation comments added; everything cross-cutting
// (retry on rate limiting, client-side throttling, timeouts, logging,
// caching) is layered on via Middleware.
package rewrite

import (
	"context"
	"fmt"
	"strings"
)

// Request carries one file's rewrite input. Symbols, when present, narrows
// the rewrite to those members; empty means the whole file.
type Request struct {
	Content  string
	Language string
	DocStyle string
	Symbols  []string
}

// Service is the opaque rewrite capability. Implementations focus on the API
// call itself; cross-cutting concerns are applied via Middleware.
type Service interface {
	Name() string
	Rewrite(ctx context.Context, req Request) (string, error)
	Close() error
}

// BuildPrompt renders the instruction block placed ahead of the file content.
func BuildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Add documentation comments to every public member of the following")
	if req.Language != "" {
		b.WriteString(" " + req.Language)
	}
	b.WriteString(" source file that is missing them.")
	if req.DocStyle != "" {
		fmt.Fprintf(&b, " Write the comments in %s.", req.DocStyle)
	}
	if len(req.Symbols) > 0 {
		fmt.Fprintf(&b, " Only document these members: %s.", strings.Join(req.Symbols, ", "))
	}
	b.WriteString(" Do not change any code. Reply with the complete file content and nothing else.")
	return b.String()
}

// StripFence removes a surrounding Markdown code fence when the model wraps
// its reply in one, with or without a language tag on the opening fence.
func StripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return s
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return s
	}
	return strings.Join(lines[1:len(lines)-1], "\n") + "\n"
}
