// Package restapi extracts a web service's REST API topology directly from
// source code, without executing it. For one source file it determines the
// routing convention in effect, the canonical URL the file answers to, the
// HTTP methods its handlers support, and the outbound HTTP calls made from
// the handler bodies. The output, resources the file exposes and demands it
// makes, feeds the cross-file service dependency graph.
package restapi

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/unit-mesh/autodev-context/internal/query"
	"github.com/unit-mesh/autodev-context/internal/structurer"
)

// handlerNames are the accepted names for a pages-router handler function,
// in lookup order.
var handlerNames = []string{"handler", "GET", "POST", "PUT", "DELETE", "PATCH"}

// Analyzer runs the extraction pipeline for one file at a time. It is
// configured once with a grammar for its language; intermediate state is
// local to a single Analyze call, so separate Analyzer instances may run
// concurrently, one per file.
type Analyzer struct {
	languageID string
	lang       *sitter.Language
	engine     query.Engine
	structurer structurer.Structurer
	log        func(format string, args ...any)
	verbose    bool

	demands []Demand
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the diagnostic logger. The default writes to stderr.
func WithLogger(fn func(format string, args ...any)) Option {
	return func(a *Analyzer) {
		if fn != nil {
			a.log = fn
		}
	}
}

// WithEngine overrides the pattern query engine (used in tests and by
// alternative query backends).
func WithEngine(e query.Engine) Option {
	return func(a *Analyzer) { a.engine = e }
}

// WithStructurer overrides the code-structure collaborator.
func WithStructurer(s structurer.Structurer) Option {
	return func(a *Analyzer) { a.structurer = s }
}

// NewAnalyzer creates an analyzer for the given language identifier
// ("typescript", "tsx", or "javascript"). An unknown language does not fail
// construction: the analyzer degrades to returning empty results with a
// warning, per the recoverable-failure policy.
func NewAnalyzer(languageID string, opts ...Option) *Analyzer {
	a := &Analyzer{
		languageID: languageID,
		structurer: structurer.New(),
		log: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		},
	}
	if lang, ok := query.Grammar(languageID); ok {
		a.lang = lang
		a.engine = query.NewEngine(lang)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ForFile creates an analyzer for the language matching filePath's
// extension. Unsupported extensions yield an analyzer that produces empty
// results.
func ForFile(filePath string, opts ...Option) *Analyzer {
	langID, _ := query.LanguageForFile(filePath)
	return NewAnalyzer(langID, opts...)
}

// Analyze runs the full pipeline for one file (classify, derive URL,
// extract methods, detect client calls, emit) and returns the resources it
// exposes. Demands accumulated during the call are available via Demands.
// All failure modes degrade to an empty result with a diagnostic; no error
// escapes.
func (a *Analyzer) Analyze(ctx context.Context, source []byte, filePath, workspacePath string) []Resource {
	a.demands = nil

	if a.lang == nil || a.engine == nil {
		a.log("warning: no parser initialized for language %q; skipping %s", a.languageID, filePath)
		return nil
	}
	if len(source) == 0 {
		a.log("warning: empty source for %s", filePath)
		return nil
	}

	convention := ClassifyRoute(filePath)
	if convention == ConventionNone {
		return nil
	}
	if convention == ConventionAppRouter && !IsRouteFile(filePath) {
		return nil
	}

	url := DeriveURL(filePath)
	if url == "" {
		return nil
	}

	tree, err := query.Parse(ctx, a.lang, source)
	if err != nil {
		a.log("warning: parse %s: %v", filePath, err)
		return nil
	}
	defer tree.Close()

	p := &pipeline{
		engine:   a.engine,
		source:   source,
		root:     tree.RootNode(),
		filePath: filePath,
		warnf:    func(format string, args ...any) { a.log("warning: "+format, args...) },
	}

	var resources []Resource
	switch convention {
	case ConventionAppRouter:
		resources = a.emitAppRouter(p, url, filePath, workspacePath)
	case ConventionPagesRouter:
		resources = a.emitPagesRouter(ctx, p, url, filePath, workspacePath)
	}
	return resources
}

// Demands returns the outbound HTTP calls discovered by the most recent
// Analyze call.
func (a *Analyzer) Demands() []Demand {
	out := make([]Demand, len(a.demands))
	copy(out, a.demands)
	return out
}

// emitAppRouter emits one Resource per exported verb function, narrowed to
// the methods a Resource may carry (HEAD and OPTIONS are recognized but
// informational only). Demands are scoped to the function lexically
// enclosing each call site.
func (a *Analyzer) emitAppRouter(p *pipeline, url, filePath, workspacePath string) []Resource {
	var resources []Resource
	for _, method := range p.appMethods() {
		if !resourceMethods[method] {
			continue
		}
		resources = append(resources, Resource{
			URL:        url,
			HTTPMethod: method,
			Package:    owningPackage(filePath, workspacePath),
			File:       filepath.Base(filePath),
			Handler:    method,
			Convention: ConventionAppRouter,
		})
	}
	if len(resources) > 0 {
		a.demands = p.detectClientCalls("")
	}
	return resources
}

// emitPagesRouter locates the single legacy handler by name, emits one
// Resource per explicitly checked method (or the default five-method set
// when the handler has no checks), and attributes every discovered Demand
// to that handler.
func (a *Analyzer) emitPagesRouter(ctx context.Context, p *pipeline, url, filePath, workspacePath string) []Resource {
	model, err := a.structurer.Structure(ctx, p.source, filePath)
	if err != nil || model == nil {
		a.log("warning: no code model for %s", filePath)
		return nil
	}

	handler := findHandler(model)
	if handler == "" {
		return nil
	}

	methods := p.pagesMethods()
	if len(methods) == 0 {
		methods = defaultMethods
	}

	resources := make([]Resource, 0, len(methods))
	for _, method := range methods {
		resources = append(resources, Resource{
			URL:        url,
			HTTPMethod: method,
			Package:    owningPackage(filePath, workspacePath),
			File:       filepath.Base(filePath),
			Handler:    handler,
			Convention: ConventionPagesRouter,
		})
	}
	a.demands = p.detectClientCalls(handler)
	return resources
}

// findHandler returns the first top-level function whose name is an accepted
// pages-router handler name, or "".
func findHandler(model *structurer.CodeFile) string {
	present := make(map[string]bool, len(model.Functions))
	for _, fn := range model.Functions {
		present[fn.Name] = true
	}
	for _, name := range handlerNames {
		if present[name] {
			return name
		}
	}
	return ""
}

// owningPackage derives the owning directory of filePath, relative to the
// workspace root when possible.
func owningPackage(filePath, workspacePath string) string {
	p := filePath
	if workspacePath != "" {
		if rel, err := filepath.Rel(workspacePath, filePath); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
	}
	dir := filepath.ToSlash(filepath.Dir(p))
	if dir == "." {
		return ""
	}
	return dir
}

// pipeline holds the per-call extraction state. It lives for exactly one
// Analyze invocation and is never shared between files.
type pipeline struct {
	engine   query.Engine
	source   []byte
	root     *sitter.Node
	filePath string
	warnf    func(format string, args ...any)
}
