package restapi

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// clientCallPattern matches outbound HTTP invocations of the shape
// object.method("url", ...) where the first argument is a string literal.
// One call site yields three captures delivered in traversal order.
const clientCallPattern = `
(call_expression
  function: (member_expression
    object: (identifier) @call.object
    property: (property_identifier) @call.method)
  arguments: (arguments . (string) @call.url))
`

// httpClientVerbs is the set of method names recognized as HTTP client calls.
var httpClientVerbs = map[string]bool{
	"get": true, "post": true, "delete": true, "put": true, "patch": true,
}

// invocation accumulates the three capture pieces of one call site.
type invocation struct {
	object string
	method string
	url    string
}

// detectClientCalls scans the whole file's tree for outbound HTTP calls.
// Captures belonging to one call site are correlated by the enclosing call
// expression's node identity, so interleaved call sites cannot corrupt each
// other's triples. The URL-literal capture triggers emission: a Demand is
// produced only when object, method, and literal are all present and the
// method is a recognized client verb; the call site's state is discarded
// afterwards either way.
//
// When attributeTo is non-empty every Demand is credited to that handler
// (pages-router files have a single handler that owns all calls). Otherwise
// the caller is the function lexically enclosing the call site, empty for
// module-level calls.
func (p *pipeline) detectClientCalls(attributeTo string) []Demand {
	captures, err := p.engine.Matches(p.root, p.source, clientCallPattern)
	if err != nil {
		p.warnf("client call detection failed for %s: %v", p.filePath, err)
		return nil
	}

	pending := make(map[uint32]*invocation)
	var demands []Demand
	for _, c := range captures {
		key, ok := enclosingCallKey(c.Node)
		if !ok {
			continue
		}
		inv := pending[key]
		if inv == nil {
			inv = &invocation{}
			pending[key] = inv
		}
		switch c.Name {
		case "call.object":
			inv.object = c.Text
		case "call.method":
			inv.method = c.Text
		case "call.url":
			inv.url = stripQuotes(c.Text)
			if inv.object != "" && inv.method != "" && inv.url != "" &&
				httpClientVerbs[strings.ToLower(inv.method)] {
				caller := attributeTo
				if caller == "" {
					caller = enclosingFunctionName(c.Node, p.source)
				}
				demands = append(demands, Demand{
					SourceCaller:     caller,
					TargetURL:        inv.url,
					TargetHTTPMethod: strings.ToUpper(inv.method),
				})
			}
			delete(pending, key)
		}
	}
	return demands
}

// enclosingCallKey returns the start byte of the nearest enclosing call
// expression, identifying the call site a capture belongs to.
func enclosingCallKey(node *sitter.Node) (uint32, bool) {
	for cur := node; cur != nil; cur = cur.Parent() {
		if cur.Type() == "call_expression" {
			return cur.StartByte(), true
		}
	}
	return 0, false
}

// enclosingFunctionName walks ancestors to find the name of the function
// containing node: a named declaration, a class method, or a const/let
// declarator holding an arrow function.
func enclosingFunctionName(node *sitter.Node, source []byte) string {
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Type() {
		case "function_declaration", "generator_function_declaration", "method_definition":
			if name := cur.ChildByFieldName("name"); name != nil {
				return name.Content(source)
			}
		case "arrow_function", "function", "function_expression":
			if parent := cur.Parent(); parent != nil && parent.Type() == "variable_declarator" {
				if name := parent.ChildByFieldName("name"); name != nil {
					return name.Content(source)
				}
			}
		}
	}
	return ""
}

// stripQuotes removes one matching pair of surrounding quote characters.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') ||
			(s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '`' && s[len(s)-1] == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
