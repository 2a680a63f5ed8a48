package compose

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"sunset/internal/config"
	"sunset/internal/domain"
	siteRepo "sunset/internal/domain/repositories/site"
	"sunset/internal/sitepath"
)

// includeDirective matches the textual include marker carrying one path
// argument, e.g. <!-- include:sections/hero.html -->.
var includeDirective = regexp.MustCompile(`<!--\s*include:\s*([^\s>]+?)\s*-->`)

// HTMLComposer resolves include directives across stored document fragments
// for one revision. All includes resolve against the same pinned revision
// number, never the includer's own point in time.
type HTMLComposer struct {
	versions siteRepo.FileVersionRepository
	entry    string
	logger   *slog.Logger
}

// NewHTMLComposer creates the include-directive composer.
func NewHTMLComposer(versions siteRepo.FileVersionRepository, stack *config.StackConfig, logger *slog.Logger) *HTMLComposer {
	return &HTMLComposer{
		versions: versions,
		entry:    stack.DocumentEntry,
		logger:   logger,
	}
}

// Compose locates the entry document at-or-before rev and resolves its
// include directives recursively. The entry is matched by basename across the
// snapshot, so a document rooted under a subdirectory composes the same way
// a nested component entry bundles. Invalid, missing, and circular includes
// degrade to inline placeholders; directives past the global caps are left
// verbatim. Every degradation is recorded as a warning on the artifact.
func (c *HTMLComposer) Compose(ctx context.Context, projectID string, rev int) (*Artifact, error) {
	files, err := c.versions.AllAtOrBefore(ctx, projectID, rev)
	if err != nil {
		return nil, fmt.Errorf("compose %s@%d: %w", projectID, rev, err)
	}
	entry, ok := sitepath.FindEntry(files, c.entry)
	if !ok {
		return nil, fmt.Errorf("no %s at or before revision %d: %w", c.entry, rev, domain.ErrNotFound)
	}

	state := &includeState{budget: config.MaxTotalIncludes}
	out, err := c.resolve(ctx, files[entry], projectID, rev, 0, []string{entry}, state)
	if err != nil {
		return nil, err
	}

	return &Artifact{HTML: out, Warnings: state.warnings}, nil
}

type includeState struct {
	budget   int
	warnings []string
}

func (s *includeState) warnf(format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

// resolve rewrites one document's include directives left to right.
func (c *HTMLComposer) resolve(ctx context.Context, content, projectID string, rev, depth int, stack []string, state *includeState) (string, error) {
	matches := includeDirective.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, nil
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		out.WriteString(content[last:m[0]])
		last = m[1]
		directive := content[m[0]:m[1]]
		rawPath := content[m[2]:m[3]]

		// Past either cap the remaining directives stay verbatim. Soft
		// degradation, surfaced via warnings rather than an error.
		if state.budget <= 0 {
			state.warnf("include cap reached, directive left unresolved: %s", rawPath)
			out.WriteString(directive)
			continue
		}
		if depth >= config.MaxIncludeDepth {
			state.warnf("include depth cap reached, directive left unresolved: %s", rawPath)
			out.WriteString(directive)
			continue
		}

		target, err := sitepath.Normalize(rawPath, sitepath.KindDocument)
		if err != nil {
			state.warnf("invalid include path: %s", rawPath)
			out.WriteString(missingPlaceholder(rawPath))
			continue
		}

		if containsPath(stack, target) {
			state.warnf("circular include: %s", target)
			out.WriteString(circularPlaceholder(target))
			continue
		}

		included, ok, err := c.versions.ContentAtOrBefore(ctx, projectID, target, rev)
		if err != nil {
			return "", fmt.Errorf("resolve include %s: %w", target, err)
		}
		if !ok {
			state.warnf("missing include: %s", target)
			out.WriteString(missingPlaceholder(target))
			continue
		}

		state.budget--
		resolved, err := c.resolve(ctx, included, projectID, rev, depth+1, append(stack, target), state)
		if err != nil {
			return "", err
		}
		out.WriteString(resolved)
	}
	out.WriteString(content[last:])

	return out.String(), nil
}

func containsPath(stack []string, path string) bool {
	for _, p := range stack {
		if p == path {
			return true
		}
	}
	return false
}

func missingPlaceholder(path string) string {
	return fmt.Sprintf(`<div data-include-missing="%s"><!-- missing include --></div>`, html.EscapeString(path))
}

func circularPlaceholder(path string) string {
	return fmt.Sprintf(`<div data-include-circular="%s"><!-- circular include --></div>`, html.EscapeString(path))
}
