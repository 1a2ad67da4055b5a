package restapi

import "strings"

// pagesMethodPattern matches the method-branching conditionals of a legacy
// handler: if (req.method === "POST") { ... }. Only equality comparisons
// count; a negated guard like req.method !== "POST" does not declare POST
// as supported. The property-access side and the string-literal side are
// captured separately and correlated by position.
const pagesMethodPattern = `
((if_statement
  condition: (parenthesized_expression
    (binary_expression
      left: (member_expression
        object: (identifier)
        property: (property_identifier) @request.property)
      operator: ["==" "==="]
      right: (string) @request.method)))
 (#eq? @request.property "method"))
`

// appHandlerPattern matches every exported top-level function declaration;
// under the app-router convention the function name is the HTTP verb served.
const appHandlerPattern = `
(export_statement
  (function_declaration
    name: (identifier) @handler.name))
`

// defaultMethods is the fallback set for a pages-router handler with no
// explicit method checks: the absence of checks signals "all methods
// accepted", not an error.
var defaultMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH"}

// recognizedHandlerMethods is the full set of verbs an app-router function
// name may declare. HEAD and OPTIONS are recognized here but narrowed out of
// the final resource set.
var recognizedHandlerMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// resourceMethods is the subset of verbs that may appear on an emitted
// Resource.
var resourceMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true, "PATCH": true,
}

// pagesMethods extracts the explicitly checked HTTP methods from a legacy
// handler body. A string-literal capture counts only when it appears after a
// property-access capture in traversal order; values are quote-stripped,
// upper-cased, and deduplicated preserving first-seen order. An empty result
// means the caller should fall back to defaultMethods.
func (p *pipeline) pagesMethods() []string {
	captures, err := p.engine.Matches(p.root, p.source, pagesMethodPattern)
	if err != nil {
		p.warnf("method extraction failed for %s: %v", p.filePath, err)
		return nil
	}

	var methods []string
	seen := make(map[string]bool)
	var propertyAt uint32
	propertySeen := false
	for _, c := range captures {
		switch c.Name {
		case "request.property":
			propertyAt = c.StartByte
			propertySeen = true
		case "request.method":
			if !propertySeen || c.StartByte <= propertyAt {
				continue
			}
			m := strings.ToUpper(stripQuotes(c.Text))
			if m == "" || seen[m] {
				continue
			}
			seen[m] = true
			methods = append(methods, m)
		}
	}
	return methods
}

// appMethods extracts the verbs served by an app-router file: every exported
// function declaration whose upper-cased name is a recognized HTTP method.
// Order follows the declarations; duplicates collapse to the first.
func (p *pipeline) appMethods() []string {
	captures, err := p.engine.Matches(p.root, p.source, appHandlerPattern)
	if err != nil {
		p.warnf("handler extraction failed for %s: %v", p.filePath, err)
		return nil
	}

	var methods []string
	seen := make(map[string]bool)
	for _, c := range captures {
		if c.Name != "handler.name" {
			continue
		}
		m := strings.ToUpper(c.Text)
		if !recognizedHandlerMethods[m] || seen[m] {
			continue
		}
		seen[m] = true
		methods = append(methods, m)
	}
	return methods
}
