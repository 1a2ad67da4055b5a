package restapi

import (
	"path"
	"path/filepath"
	"strings"
)

const apiSegment = "/api/"

// DeriveURL maps a file's location to the canonical URL path it serves.
// It takes the substring from the first "/api/" segment to the end, strips
// the file extension, then drops a trailing "/index" (pages router) or
// "/route" (app router) suffix, checked in that order. Returns "" when no
// "/api/" segment exists, which callers treat as "emit no resource".
//
// ".../pages/api/users/index.ts" and ".../app/api/users/route.ts" both
// yield "/api/users". Derivation is idempotent on already-canonical paths.
func DeriveURL(filePath string) string {
	p := filepath.ToSlash(filePath)
	idx := strings.Index(p, apiSegment)
	if idx < 0 {
		return ""
	}
	url := p[idx:]
	url = strings.TrimSuffix(url, path.Ext(url))
	if strings.HasSuffix(url, "/index") {
		url = url[:len(url)-len("/index")]
	} else if strings.HasSuffix(url, "/route") {
		url = url[:len(url)-len("/route")]
	}
	return url
}
