package markup

import (
	"strings"
	"testing"
)

func TestValidateAndFixDocument(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValid bool
		wantFixes int
	}{
		{
			name:      "complete document passes untouched",
			raw:       "<html><head><title>t</title></head><body><p>hi</p></body></html>",
			wantValid: true,
			wantFixes: 0,
		},
		{
			name:      "unclosed tags are closed and document wrapped",
			raw:       "<div><p>hello",
			wantValid: true,
			wantFixes: 2,
		},
		{
			name:      "fenced document is unwrapped",
			raw:       "```html\n<html><head></head><body><p>hi</p></body></html>\n```",
			wantValid: true,
			wantFixes: 1,
		},
		{
			name:      "body content without root gets wrapped",
			raw:       "<h1>Welcome</h1><p>copy</p>",
			wantValid: true,
			wantFixes: 1,
		},
		{
			name:      "empty content is invalid",
			raw:       "   \n  ",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAndFix(tt.raw, ModeDocument)
			if result.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
			if !tt.wantValid {
				return
			}
			if len(result.FixesApplied) != tt.wantFixes {
				t.Errorf("FixesApplied = %v, want %d entries", result.FixesApplied, tt.wantFixes)
			}
			for _, tag := range []string{"<html", "<head", "<body"} {
				if !strings.Contains(result.FixedCode, tag) {
					t.Errorf("FixedCode missing %s:\n%s", tag, result.FixedCode)
				}
			}
		})
	}
}

func TestValidateAndFixRepairsUnclosedTags(t *testing.T) {
	result := ValidateAndFix("<div><p>hello", ModeDocument)
	if !result.Valid {
		t.Fatalf("expected repaired document to be valid, errors: %v", result.Errors)
	}
	if !strings.Contains(result.FixedCode, "</p></div>") {
		t.Errorf("closers not appended in innermost-first order:\n%s", result.FixedCode)
	}
}

func TestValidateAndFixFragment(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantValid     bool
		wantNestedErr bool
	}{
		{
			name:      "plain fragment passes",
			raw:       "<section><h2>Hero</h2></section>",
			wantValid: true,
		},
		{
			name:      "unclosed fragment is repaired",
			raw:       "<section><h2>Hero",
			wantValid: true,
		},
		{
			name:          "document root inside fragment is rejected",
			raw:           "<html><body><p>nested</p></body></html>",
			wantValid:     false,
			wantNestedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAndFix(tt.raw, ModeFragment)
			if result.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
			if result.HasNestedRoot != tt.wantNestedErr {
				t.Errorf("HasNestedRoot = %v, want %v", result.HasNestedRoot, tt.wantNestedErr)
			}
			if tt.wantValid && strings.Contains(result.FixedCode, "<html") {
				t.Errorf("fragment must not gain a document root:\n%s", result.FixedCode)
			}
		})
	}
}

func TestValidateAndFixTooLarge(t *testing.T) {
	result := ValidateAndFix("<p>"+strings.Repeat("x", MaxContentSize)+"</p>", ModeDocument)
	if result.Valid {
		t.Fatal("oversized content must not validate")
	}
	if !result.TooLarge {
		t.Error("TooLarge not set")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name         string
		code         string
		want         string
		wantStripped bool
	}{
		{
			name:         "fence with language tag",
			code:         "```html\n<p>hi</p>\n```",
			want:         "<p>hi</p>",
			wantStripped: true,
		},
		{
			name:         "fence without language tag",
			code:         "```\n<p>hi</p>\n```",
			want:         "<p>hi</p>",
			wantStripped: true,
		},
		{
			name: "no fence",
			code: "<p>hi</p>",
			want: "<p>hi</p>",
		},
		{
			name: "opening fence only",
			code: "```html\n<p>hi</p>",
			want: "```html\n<p>hi</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stripped := StripCodeFence(tt.code)
			if stripped != tt.wantStripped {
				t.Fatalf("stripped = %v, want %v", stripped, tt.wantStripped)
			}
			if got != tt.want {
				t.Errorf("StripCodeFence = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContainsDocumentRoot(t *testing.T) {
	if !ContainsDocumentRoot("<html><body>x</body></html>") {
		t.Error("document root not detected")
	}
	if ContainsDocumentRoot("<section>x</section>") {
		t.Error("false positive on plain fragment")
	}
}
