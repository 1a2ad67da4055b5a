package query

import (
	"context"
	"testing"
)

func TestLanguageForFile(t *testing.T) {
	cases := []struct {
		path string
		lang string
		ok   bool
	}{
		{"app/api/users/route.ts", LangTypeScript, true},
		{"components/Widget.tsx", LangTSX, true},
		{"lib/util.js", LangJavaScript, true},
		{"lib/util.jsx", LangJavaScript, true},
		{"lib/util.mjs", LangJavaScript, true},
		{"README.md", "", false},
		{"Makefile", "", false},
	}
	for _, tc := range cases {
		lang, ok := LanguageForFile(tc.path)
		if ok != tc.ok || lang != tc.lang {
			t.Errorf("LanguageForFile(%q) = %q, %v; want %q, %v", tc.path, lang, ok, tc.lang, tc.ok)
		}
	}
}

func TestEngineMatches(t *testing.T) {
	lang, ok := Grammar(LangTypeScript)
	if !ok {
		t.Fatal("typescript grammar missing")
	}
	src := []byte(`
function alpha() {}
function beta() {}
`)
	tree, err := Parse(context.Background(), lang, src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	engine := NewEngine(lang)
	captures, err := engine.Matches(tree.RootNode(), src, `(function_declaration name: (identifier) @fn.name)`)
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if len(captures) != 2 {
		t.Fatalf("expected 2 captures, got %d", len(captures))
	}
	if captures[0].Text != "alpha" || captures[1].Text != "beta" {
		t.Errorf("captures = %q, %q; want alpha, beta", captures[0].Text, captures[1].Text)
	}
	for _, c := range captures {
		if c.Name != "fn.name" {
			t.Errorf("capture name = %q, want fn.name", c.Name)
		}
		if c.StartByte >= c.EndByte {
			t.Errorf("capture %q has empty span", c.Text)
		}
	}
}

func TestEnginePredicateFiltering(t *testing.T) {
	lang, _ := Grammar(LangTypeScript)
	src := []byte(`
if (req.method === 'POST') {}
if (req.status === 'open') {}
`)
	tree, err := Parse(context.Background(), lang, src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	pattern := `
((member_expression
   object: (identifier)
   property: (property_identifier) @prop)
 (#eq? @prop "method"))
`
	engine := NewEngine(lang)
	captures, err := engine.Matches(tree.RootNode(), src, pattern)
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if len(captures) != 1 {
		t.Fatalf("expected 1 capture after predicate filtering, got %d", len(captures))
	}
	if captures[0].Text != "method" {
		t.Errorf("capture = %q, want method", captures[0].Text)
	}
}

func TestEngineBadPattern(t *testing.T) {
	lang, _ := Grammar(LangTypeScript)
	src := []byte(`const x = 1;`)
	tree, err := Parse(context.Background(), lang, src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	engine := NewEngine(lang)
	if _, err := engine.Matches(tree.RootNode(), src, `(unbalanced`); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}
