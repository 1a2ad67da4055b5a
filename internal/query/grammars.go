package query

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language identifiers accepted by the grammar registry.
const (
	LangTypeScript = "typescript"
	LangTSX        = "tsx"
	LangJavaScript = "javascript"
)

// SourceExtensions maps recognized source file extensions to language identifiers.
var SourceExtensions = map[string]string{
	".ts":  LangTypeScript,
	".tsx": LangTSX,
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
	".mjs": LangJavaScript,
}

var (
	grammarsMu sync.Mutex
	grammars   = map[string]*sitter.Language{}
)

// Grammar returns the syntax-tree language definition for the given language
// identifier. Definitions are created once and cached for the process lifetime.
// Returns false for unknown identifiers.
func Grammar(languageID string) (*sitter.Language, bool) {
	grammarsMu.Lock()
	defer grammarsMu.Unlock()

	if lang, ok := grammars[languageID]; ok {
		return lang, true
	}

	var lang *sitter.Language
	switch languageID {
	case LangTypeScript:
		lang = typescript.GetLanguage()
	case LangTSX:
		lang = tsx.GetLanguage()
	case LangJavaScript:
		lang = javascript.GetLanguage()
	default:
		return nil, false
	}
	grammars[languageID] = lang
	return lang, true
}

// LanguageForFile returns the language identifier for a file path based on
// its extension, or false if the extension has no registered grammar.
func LanguageForFile(filePath string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filePath))
	id, ok := SourceExtensions[ext]
	return id, ok
}

// NewParser returns a parser configured for the given language definition.
// Parsers are not safe for concurrent use; callers create one per analysis.
func NewParser(lang *sitter.Language) *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return p
}
