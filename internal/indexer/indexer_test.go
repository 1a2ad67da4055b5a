package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/unit-mesh/autodev-context/internal/graph"
	"github.com/unit-mesh/autodev-context/internal/graph/embedded"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func newTestIndexer(t *testing.T, root string) *Indexer {
	t.Helper()
	store, err := embedded.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return New(Config{
		GraphStore:    store,
		WorkspaceRoot: root,
		Workers:       2,
		Logger:        func(string, ...any) {},
	})
}

func TestIndexDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "web/app/api/users/route.ts", `
export async function GET() { return Response.json([]); }
export async function POST(req: Request) { return Response.json({}); }
`)
	writeFile(t, root, "web/pages/api/profile.ts", `
export default async function handler(req, res) {
  const user = await api.get('/api/users', { cache: false });
  res.status(200).json(user);
}
`)
	writeFile(t, root, "web/lib/helper.ts", `export const helper = () => 1;`)
	writeFile(t, root, "web/README.md", "docs")
	writeFile(t, root, "web/node_modules/pkg/index.js", "module.exports = {};")

	idx := newTestIndexer(t, root)
	ctx := context.Background()
	if err := idx.IndexDirectory(ctx, root); err != nil {
		t.Fatalf("IndexDirectory: %v", err)
	}

	stats := idx.Stats()
	if stats.FilesIndexed != 3 {
		t.Errorf("indexed %d files, want 3", stats.FilesIndexed)
	}
	if len(stats.Errors) != 0 {
		t.Errorf("errors: %v", stats.Errors)
	}

	resources, err := idx.Store().QueryNodes(ctx, graph.NodeFilter{Type: graph.NodeResource})
	if err != nil {
		t.Fatalf("QueryNodes: %v", err)
	}
	// App-router GET+POST, plus the pages handler's default five methods.
	if len(resources) != 7 {
		t.Errorf("got %d resource nodes, want 7", len(resources))
	}

	demands, err := idx.Store().QueryNodes(ctx, graph.NodeFilter{Type: graph.NodeDemand})
	if err != nil {
		t.Fatalf("QueryNodes: %v", err)
	}
	if len(demands) != 1 {
		t.Fatalf("got %d demand nodes, want 1", len(demands))
	}
	if demands[0].Properties[graph.PropURL] != "/api/users" {
		t.Errorf("demand url = %q", demands[0].Properties[graph.PropURL])
	}

	// The demand hangs off the handler function via a Calls edge.
	callers, err := idx.Store().GetNeighbors(ctx, demands[0].ID, graph.EdgeCalls, graph.Incoming)
	if err != nil {
		t.Fatalf("GetNeighbors: %v", err)
	}
	if len(callers) != 1 || callers[0].Name != "handler" {
		t.Fatalf("callers = %+v", callers)
	}
}

func TestIndexDirectoryRootLayout(t *testing.T) {
	// The workspace root IS the Next.js project: route files live at
	// app/api/... and pages/api/... with no intermediate directory, so
	// their workspace-relative paths carry no leading separator.
	root := t.TempDir()
	writeFile(t, root, "app/api/users/route.ts", `
export async function GET() { return Response.json([]); }
`)
	writeFile(t, root, "pages/api/profile.ts", `
export default async function handler(req, res) {
  res.status(200).json({});
}
`)

	idx := newTestIndexer(t, root)
	ctx := context.Background()
	if err := idx.IndexDirectory(ctx, root); err != nil {
		t.Fatalf("IndexDirectory: %v", err)
	}

	resources, err := idx.Store().QueryNodes(ctx, graph.NodeFilter{Type: graph.NodeResource})
	if err != nil {
		t.Fatalf("QueryNodes: %v", err)
	}
	// App-router GET, plus the pages handler's default five methods.
	if len(resources) != 6 {
		t.Fatalf("got %d resource nodes, want 6", len(resources))
	}
	for _, r := range resources {
		if r.FilePath != "app/api/users/route.ts" && r.FilePath != "pages/api/profile.ts" {
			t.Errorf("resource stored with path %q, want workspace-relative", r.FilePath)
		}
	}
}

func TestIndexFileIncremental(t *testing.T) {
	root := t.TempDir()
	rel := "web/pages/api/items.ts"
	writeFile(t, root, rel, `
export default function handler(req, res) {
  if (req.method === 'GET') { res.json([]); }
}
`)

	idx := newTestIndexer(t, root)
	ctx := context.Background()
	abs := filepath.Join(root, rel)

	if err := idx.IndexFile(ctx, abs); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	resources, _ := idx.Store().QueryNodes(ctx, graph.NodeFilter{Type: graph.NodeResource})
	if len(resources) != 1 {
		t.Fatalf("got %d resources, want 1", len(resources))
	}

	// Re-index after an edit; the old nodes must be replaced, not accumulated.
	writeFile(t, root, rel, `
export default function handler(req, res) {
  if (req.method === 'GET') { res.json([]); }
  if (req.method === 'DELETE') { res.status(204).end(); }
}
`)
	if err := idx.IndexFile(ctx, abs); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	resources, _ = idx.Store().QueryNodes(ctx, graph.NodeFilter{Type: graph.NodeResource})
	if len(resources) != 2 {
		t.Fatalf("after re-index got %d resources, want 2", len(resources))
	}

	if !idx.HasChanges() {
		t.Error("HasChanges should be true")
	}
	changed := idx.ChangedFiles()
	if len(changed) != 1 || changed[0] != "web/pages/api/items.ts" {
		t.Errorf("changed files = %v", changed)
	}
}

func TestIndexFileSkipsUnsupported(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes.txt", "hello")

	idx := newTestIndexer(t, root)
	if err := idx.IndexFile(context.Background(), filepath.Join(root, "notes.txt")); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	if idx.Stats().FilesIndexed != 0 {
		t.Error("unsupported file should not count as indexed")
	}
}
