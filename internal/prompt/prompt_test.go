package prompt

import (
	"context"
	"strings"
	"testing"

	"github.com/unit-mesh/autodev-context/internal/graph"
	"github.com/unit-mesh/autodev-context/internal/graph/embedded"
	"github.com/unit-mesh/autodev-context/pkg/llm"
)

// fakeClient echoes the prompt it received so tests can inspect the context.
type fakeClient struct {
	lastSystem string
	lastPrompt string
	reply      string
}

func (f *fakeClient) Chat(_ context.Context, systemPrompt string, messages []llm.Message) (*llm.Response, error) {
	f.lastSystem = systemPrompt
	if len(messages) > 0 {
		f.lastPrompt = messages[len(messages)-1].Content
	}
	return &llm.Response{Content: f.reply}, nil
}

func (f *fakeClient) Model() string    { return "fake-model" }
func (f *fakeClient) Provider() string { return "fake" }
func (f *fakeClient) Close() error     { return nil }

func seedStore(t *testing.T) graph.Store {
	t.Helper()
	store, err := embedded.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	svc := &graph.Node{
		ID:   graph.NewNodeID(string(graph.NodeService), "web", "web"),
		Type: graph.NodeService,
		Name: "web",
	}
	res := &graph.Node{
		ID:       graph.NewNodeID(string(graph.NodeResource), "web/app/api/users/route.ts", "GET /api/users"),
		Type:     graph.NodeResource,
		Name:     "GET /api/users",
		FilePath: "web/app/api/users/route.ts",
		Properties: map[string]string{
			graph.PropHTTPMethod: "GET",
			graph.PropURL:        "/api/users",
			graph.PropHandler:    "GET",
		},
	}
	dem := &graph.Node{
		ID:       graph.NewNodeID(string(graph.NodeDemand), "web/pages/api/profile.ts", "GET /api/users"),
		Type:     graph.NodeDemand,
		Name:     "GET /api/users",
		FilePath: "web/pages/api/profile.ts",
		Properties: map[string]string{
			graph.PropHTTPMethod: "GET",
			graph.PropURL:        "/api/users",
			graph.PropHandler:    "handler",
			graph.PropResolved:   "true",
		},
	}
	for _, n := range []*graph.Node{svc, res, dem} {
		if err := store.AddNode(ctx, n); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	if err := store.AddEdge(ctx, &graph.Edge{
		ID:       graph.NewEdgeID(graph.EdgeExposes, svc.ID, res.ID),
		Type:     graph.EdgeExposes,
		SourceID: svc.ID,
		TargetID: res.ID,
	}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := store.AddEdge(ctx, &graph.Edge{
		ID:       graph.NewEdgeID(graph.EdgeConsumes, dem.ID, res.ID),
		Type:     graph.EdgeConsumes,
		SourceID: dem.ID,
		TargetID: res.ID,
	}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	return store
}

func TestBuildOverviewContext(t *testing.T) {
	store := seedStore(t)
	b := NewContextBuilder(store)

	overview, err := b.BuildOverviewContext(context.Background())
	if err != nil {
		t.Fatalf("BuildOverviewContext: %v", err)
	}
	for _, want := range []string{"Service: web", "GET /api/users", "web/app/api/users/route.ts"} {
		if !strings.Contains(overview, want) {
			t.Errorf("overview missing %q:\n%s", want, overview)
		}
	}
}

func TestBuildDemandContext(t *testing.T) {
	store := seedStore(t)
	b := NewContextBuilder(store)

	out, err := b.BuildDemandContext(context.Background(), "/api/users")
	if err != nil {
		t.Fatalf("BuildDemandContext: %v", err)
	}
	for _, want := range []string{"handler", "web/pages/api/profile.ts", "[resolved]", "consumes GET /api/users"} {
		if !strings.Contains(out, want) {
			t.Errorf("demand context missing %q:\n%s", want, out)
		}
	}

	out, err = b.BuildDemandContext(context.Background(), "/api/none")
	if err != nil {
		t.Fatalf("BuildDemandContext: %v", err)
	}
	if !strings.HasPrefix(out, "No demands") {
		t.Errorf("expected miss message, got %q", out)
	}
}

func TestExplainIncludesContext(t *testing.T) {
	store := seedStore(t)
	client := &fakeClient{reply: "profile.ts calls the users endpoint."}
	e := NewExplainer(client, NewContextBuilder(store), nil, false)

	answer, err := e.Explain(context.Background(), "Who calls /api/users ?")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if answer != "profile.ts calls the users endpoint." {
		t.Errorf("answer = %q", answer)
	}
	if !strings.Contains(client.lastPrompt, "Topology overview") {
		t.Error("prompt missing overview context")
	}
	if !strings.Contains(client.lastPrompt, "Demands for /api/users") {
		t.Error("prompt missing demand context")
	}
	if !strings.Contains(client.lastPrompt, "Question: Who calls /api/users ?") {
		t.Error("prompt missing the question")
	}
	if client.lastSystem == "" {
		t.Error("system prompt not sent")
	}
}
