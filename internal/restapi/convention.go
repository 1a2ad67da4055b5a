package restapi

import (
	"path/filepath"
	"strings"

	"github.com/unit-mesh/autodev-context/internal/query"
)

// Convention identifies which file-based routing convention applies to a
// file. It is decided once per file and threaded through extraction.
type Convention string

const (
	// ConventionNone marks a file that exposes no API routes.
	ConventionNone Convention = ""
	// ConventionPagesRouter is the legacy convention: a single handler
	// function branching on the request's method property.
	ConventionPagesRouter Convention = "pages-router"
	// ConventionAppRouter is the modern convention: one exported function
	// per HTTP verb, in a file named "route".
	ConventionAppRouter Convention = "app-router"
)

// Directory segments that mark a file as API-relevant. Matching is a
// case-sensitive substring check on the slash-normalized path.
const (
	pagesAPISegment = "/pages/api/"
	appAPISegment   = "/app/api/"
)

// ClassifyRoute decides which routing convention applies to filePath.
// Files under neither API directory yield ConventionNone and are not
// analyzed further.
func ClassifyRoute(filePath string) Convention {
	p := filepath.ToSlash(filePath)
	switch {
	case strings.Contains(p, appAPISegment):
		return ConventionAppRouter
	case strings.Contains(p, pagesAPISegment):
		return ConventionPagesRouter
	}
	return ConventionNone
}

// IsRouteFile reports whether the file's base name is exactly "route" with a
// recognized source extension. This is an additional eligibility filter for
// the app-router convention; the pages-router convention applies to any
// eligible file under /pages/api/ regardless of name.
func IsRouteFile(filePath string) bool {
	base := filepath.Base(filePath)
	ext := filepath.Ext(base)
	if _, ok := query.SourceExtensions[strings.ToLower(ext)]; !ok {
		return false
	}
	return strings.TrimSuffix(base, ext) == "route"
}
