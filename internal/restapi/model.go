package restapi

// Resource describes one HTTP endpoint a file exposes: the canonical URL it
// answers to, the method it supports, and where the handler lives. One
// Resource exists per (file, HTTP method) pair observed or inferred.
type Resource struct {
	// ID is assigned later by the graph builder; empty at extraction time.
	ID string `json:"id"`
	// URL is the canonical URL path derived from the file's location.
	URL string `json:"url"`
	// HTTPMethod is the upper-cased HTTP method this resource serves.
	HTTPMethod string `json:"http_method"`
	// Package is the owning directory, relative to the workspace root.
	Package string `json:"package"`
	// File is the owning file name.
	File string `json:"file"`
	// Handler is the name of the handler function.
	Handler string `json:"handler"`
	// Convention names the routing convention that produced this resource.
	Convention Convention `json:"convention"`
}

// Demand describes one outbound HTTP call a file's code makes. A Demand is
// emitted only when the client object, method name, and URL literal are all
// present in a single correlated call-site match.
type Demand struct {
	// SourceCaller is the name of the function enclosing the call site;
	// empty when the call happens outside any recognized handler.
	SourceCaller string `json:"source_caller"`
	// TargetURL is the called URL literal with surrounding quotes stripped.
	TargetURL string `json:"target_url"`
	// TargetHTTPMethod is the upper-cased HTTP method of the call.
	TargetHTTPMethod string `json:"target_http_method"`
}
