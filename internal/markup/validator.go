// Package markup validates generated HTML and auto-repairs common defects.
// Generated text arrives straight from a language model, so the validator is
// defensive: it strips stray code fences, detects unclosed tags with a stack
// scan, and for documents injects a missing root wrapper. Repair runs at most
// once; still-invalid output is a hard failure upstream.
package markup

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Mode selects the structural policy applied during validation.
type Mode int

const (
	// ModeDocument requires html/head/body structural elements.
	ModeDocument Mode = iota
	// ModeFragment forbids a nested document root.
	ModeFragment
)

// MaxContentSize is the hard ceiling on generated content. Larger input is
// rejected without attempting repair.
const MaxContentSize = 1 << 20 // 1 MiB

// Result reports the outcome of ValidateAndFix. FixesApplied is a
// human-readable list for observability, not for programmatic branching.
type Result struct {
	Valid         bool     `json:"valid"`
	FixedCode     string   `json:"fixed_code"`
	FixesApplied  []string `json:"fixes_applied"`
	Errors        []string `json:"errors"`
	TooLarge      bool     `json:"-"`
	HasNestedRoot bool     `json:"-"`
}

// void elements never receive closers
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// ValidateAndFix parses raw generated text, validates it against the mode's
// structural policy, and runs a single bounded repair pass when invalid.
func ValidateAndFix(raw string, mode Mode) *Result {
	result := &Result{FixedCode: raw}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		result.Errors = append(result.Errors, "content is empty")
		return result
	}
	if len(raw) > MaxContentSize {
		result.TooLarge = true
		result.Errors = append(result.Errors, fmt.Sprintf("content exceeds %d byte limit", MaxContentSize))
		return result
	}

	code, stripped := StripCodeFence(trimmed)
	if stripped {
		result.FixesApplied = append(result.FixesApplied, "stripped enclosing code fence markers")
	}

	scan := scanStructure(code)
	errs := scan.policyErrors(mode)
	if len(errs) == 0 {
		result.Valid = true
		result.FixedCode = code
		return result
	}

	// Bounded auto-repair: one pass, then a final re-validation. A fragment
	// containing a document root is a policy violation, not a syntax defect,
	// and is never repaired.
	repaired := code
	if len(scan.unclosed) > 0 {
		var closers strings.Builder
		for i := len(scan.unclosed) - 1; i >= 0; i-- {
			closers.WriteString("</" + scan.unclosed[i] + ">")
		}
		repaired += closers.String()
		result.FixesApplied = append(result.FixesApplied,
			fmt.Sprintf("closed %d unclosed tag(s): %s", len(scan.unclosed), strings.Join(scan.unclosed, ", ")))
	}
	if mode == ModeDocument && !scan.hasHTML {
		repaired = wrapDocument(repaired)
		result.FixesApplied = append(result.FixesApplied, "wrapped content in document root structure")
	}

	rescan := scanStructure(repaired)
	errs = rescan.policyErrors(mode)

	result.FixedCode = repaired
	result.Valid = len(errs) == 0
	result.Errors = errs
	result.HasNestedRoot = mode == ModeFragment && rescan.hasHTML
	return result
}

// ContainsDocumentRoot reports whether the source carries an <html> root
// tag. Component sources destined for fragment roles are rejected on this
// alone; their JSX is otherwise left untouched.
func ContainsDocumentRoot(source string) bool {
	return scanStructure(source).hasHTML
}

// StripCodeFence removes enclosing markdown fence markers, a common LLM
// artifact. Only a fence spanning the whole input counts.
func StripCodeFence(code string) (string, bool) {
	if !strings.HasPrefix(code, "```") {
		return code, false
	}
	body := code
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		body = body[idx+1:] // drop the opening fence line (may carry a language tag)
	} else {
		return code, false
	}
	body = strings.TrimRight(body, " \t\n")
	if !strings.HasSuffix(body, "```") {
		return code, false
	}
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body), true
}

// structureScan is the outcome of one tokenizer pass.
type structureScan struct {
	unclosed []string // open-order list of tags never closed
	stray    []string // closers with no matching opener
	hasHTML  bool
	hasHead  bool
	hasBody  bool
}

// scanStructure walks the token stream and tracks tag balance via a stack.
// End tags close the nearest matching open tag, discarding anything opened
// inside it (mirrors browser recovery for misnested markup).
func scanStructure(code string) *structureScan {
	scan := &structureScan{}
	var stack []string

	z := html.NewTokenizer(strings.NewReader(code))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				break
			}
			break
		}

		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			scan.noteStructural(tag)
			if !voidElements[tag] {
				stack = append(stack, tag)
			}
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			scan.noteStructural(string(name))
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			matched := false
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] == tag {
					stack = stack[:i]
					matched = true
					break
				}
			}
			if !matched {
				scan.stray = append(scan.stray, tag)
			}
		}
	}

	scan.unclosed = stack
	return scan
}

func (s *structureScan) noteStructural(tag string) {
	switch tag {
	case "html":
		s.hasHTML = true
	case "head":
		s.hasHead = true
	case "body":
		s.hasBody = true
	}
}

// policyErrors evaluates the scan against the mode's structural policy.
func (s *structureScan) policyErrors(mode Mode) []string {
	var errs []string
	if len(s.unclosed) > 0 {
		errs = append(errs, fmt.Sprintf("unclosed tag(s): %s", strings.Join(s.unclosed, ", ")))
	}
	switch mode {
	case ModeDocument:
		if !s.hasHTML {
			errs = append(errs, "missing <html> root element")
		}
		if !s.hasHead {
			errs = append(errs, "missing <head> element")
		}
		if !s.hasBody {
			errs = append(errs, "missing <body> element")
		}
	case ModeFragment:
		if s.hasHTML {
			errs = append(errs, "fragment must not contain a document root")
		}
	}
	return errs
}

// wrapDocument injects the missing declaration and root structure around
// repaired content.
func wrapDocument(code string) string {
	return "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n</head>\n<body>\n" +
		code + "\n</body>\n</html>"
}
