// Package structurer turns source text into a lightweight code-file model
// exposing the file's top-level functions. The REST extraction core uses it
// to locate a pages-router handler by name; it performs no semantic analysis.
package structurer

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/unit-mesh/autodev-context/internal/query"
)

// Function describes one top-level function in a source file.
type Function struct {
	Name     string `json:"name"`
	Exported bool   `json:"exported"`
	Line     int    `json:"line"`
	EndLine  int    `json:"end_line"`
}

// CodeFile is the structural model of one source file.
type CodeFile struct {
	Path      string     `json:"path"`
	Language  string     `json:"language"`
	Functions []Function `json:"functions"`
}

// FunctionNames returns the names of all top-level functions in order.
func (f *CodeFile) FunctionNames() []string {
	names := make([]string, 0, len(f.Functions))
	for _, fn := range f.Functions {
		names = append(names, fn.Name)
	}
	return names
}

// Structurer extracts a CodeFile model from source text.
type Structurer interface {
	// Structure parses source and returns its code-file model. A nil model
	// with a nil error means the file's language is not supported.
	Structure(ctx context.Context, source []byte, filePath string) (*CodeFile, error)
}

// TreeSitterStructurer implements Structurer for TypeScript and JavaScript
// sources using a tree-sitter walk of the top level of the file.
type TreeSitterStructurer struct{}

// New creates a structurer for TypeScript/JavaScript sources.
func New() *TreeSitterStructurer {
	return &TreeSitterStructurer{}
}

// Structure implements Structurer.
func (s *TreeSitterStructurer) Structure(ctx context.Context, source []byte, filePath string) (*CodeFile, error) {
	langID, ok := query.LanguageForFile(filePath)
	if !ok {
		return nil, nil
	}
	lang, ok := query.Grammar(langID)
	if !ok {
		return nil, nil
	}

	tree, err := query.Parse(ctx, lang, source)
	if err != nil {
		return nil, fmt.Errorf("structure %s: %w", filePath, err)
	}
	defer tree.Close()

	model := &CodeFile{Path: filePath, Language: langID}
	root := tree.RootNode()
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "export_statement":
			s.collectExported(child, source, model)
		case "function_declaration", "generator_function_declaration":
			s.collectFunction(child, source, model, false)
		case "lexical_declaration", "variable_declaration":
			s.collectArrowFunctions(child, source, model, false)
		}
	}
	return model, nil
}

// collectExported walks an export_statement's children and records any
// function declarations it wraps as exported.
func (s *TreeSitterStructurer) collectExported(node *sitter.Node, source []byte, model *CodeFile) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "function_declaration", "generator_function_declaration":
			s.collectFunction(child, source, model, true)
		case "lexical_declaration", "variable_declaration":
			s.collectArrowFunctions(child, source, model, true)
		}
	}
}

func (s *TreeSitterStructurer) collectFunction(node *sitter.Node, source []byte, model *CodeFile, exported bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	model.Functions = append(model.Functions, Function{
		Name:     nameNode.Content(source),
		Exported: exported,
		Line:     int(node.StartPoint().Row) + 1,
		EndLine:  int(node.EndPoint().Row) + 1,
	})
}

// collectArrowFunctions records const/let declarators whose value is an
// arrow function or function expression: const handler = () => {...}.
func (s *TreeSitterStructurer) collectArrowFunctions(node *sitter.Node, source []byte, model *CodeFile, exported bool) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		valueNode := child.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			continue
		}
		switch valueNode.Type() {
		case "arrow_function", "function", "function_expression":
			model.Functions = append(model.Functions, Function{
				Name:     nameNode.Content(source),
				Exported: exported,
				Line:     int(child.StartPoint().Row) + 1,
				EndLine:  int(child.EndPoint().Row) + 1,
			})
		}
	}
}
