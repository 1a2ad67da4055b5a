package restapi

import (
	"context"
	"testing"
)

func analyze(t *testing.T, source, filePath string) (*Analyzer, []Resource) {
	t.Helper()
	quiet := func(string, ...any) {}
	a := ForFile(filePath, WithLogger(quiet))
	resources := a.Analyze(context.Background(), []byte(source), filePath, "web")
	return a, resources
}

func TestAnalyzeNonAPIFile(t *testing.T) {
	src := `export function helper() { return 1; }`
	_, resources := analyze(t, src, "web/src/lib/helper.ts")
	if len(resources) != 0 {
		t.Fatalf("expected no resources for non-API file, got %d", len(resources))
	}
}

func TestAnalyzeEmptySource(t *testing.T) {
	_, resources := analyze(t, "", "web/app/api/users/route.ts")
	if len(resources) != 0 {
		t.Fatalf("expected no resources for empty source, got %d", len(resources))
	}
}

func TestAnalyzeUnknownLanguage(t *testing.T) {
	quiet := func(string, ...any) {}
	a := NewAnalyzer("cobol", WithLogger(quiet))
	resources := a.Analyze(context.Background(), []byte("x"), "web/app/api/users/route.ts", "web")
	if len(resources) != 0 {
		t.Fatalf("expected no resources without a parser, got %d", len(resources))
	}
}

func TestAppRouterExportedVerbs(t *testing.T) {
	src := `
import { NextResponse } from 'next/server';

export async function GET(request: Request) {
  return NextResponse.json({ users: [] });
}

export async function POST(request: Request) {
  return NextResponse.json({ created: true });
}

function internalHelper() {}
`
	_, resources := analyze(t, src, "web/app/api/users/route.ts")
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d: %+v", len(resources), resources)
	}
	wantMethods := map[string]bool{"GET": true, "POST": true}
	for _, r := range resources {
		if !wantMethods[r.HTTPMethod] {
			t.Errorf("unexpected method %q", r.HTTPMethod)
		}
		delete(wantMethods, r.HTTPMethod)
		if r.URL != "/api/users" {
			t.Errorf("URL = %q, want /api/users", r.URL)
		}
		if r.Convention != ConventionAppRouter {
			t.Errorf("Convention = %q, want %q", r.Convention, ConventionAppRouter)
		}
		if r.Handler != r.HTTPMethod {
			t.Errorf("Handler = %q, want %q", r.Handler, r.HTTPMethod)
		}
		if r.File != "route.ts" {
			t.Errorf("File = %q, want route.ts", r.File)
		}
		if r.Package != "app/api/users" {
			t.Errorf("Package = %q, want app/api/users", r.Package)
		}
		if r.ID != "" {
			t.Errorf("ID should be unassigned at extraction time, got %q", r.ID)
		}
	}
	if len(wantMethods) != 0 {
		t.Errorf("missing methods: %v", wantMethods)
	}
}

func TestAppRouterOptionsNarrowedOut(t *testing.T) {
	src := `
export async function OPTIONS() { return new Response(null); }
export async function HEAD() { return new Response(null); }
export async function GET() { return new Response('ok'); }
`
	_, resources := analyze(t, src, "web/app/api/ping/route.ts")
	if len(resources) != 1 {
		t.Fatalf("expected 1 resource, got %d: %+v", len(resources), resources)
	}
	if resources[0].HTTPMethod != "GET" {
		t.Errorf("method = %q, want GET", resources[0].HTTPMethod)
	}
}

func TestAppRouterRequiresRouteFilename(t *testing.T) {
	src := `export async function GET() { return new Response('ok'); }`
	_, resources := analyze(t, src, "web/app/api/users/handlers.ts")
	if len(resources) != 0 {
		t.Fatalf("expected no resources for non-route filename, got %d", len(resources))
	}
}

func TestPagesRouterNegatedGuardIgnored(t *testing.T) {
	src := `
export default function handler(req, res) {
  if (req.method !== 'PUT') {
    return res.status(405).end();
  }
  if (req.method == 'POST') {
    res.status(201).json({});
  }
}
`
	_, resources := analyze(t, src, "web/pages/api/items.ts")
	// The negated guard does not declare PUT; the loose-equality check
	// still counts.
	if len(resources) != 1 {
		t.Fatalf("expected 1 resource, got %d: %+v", len(resources), resources)
	}
	if resources[0].HTTPMethod != "POST" {
		t.Errorf("method = %q, want POST", resources[0].HTTPMethod)
	}
}

func TestPagesRouterExplicitMethodChecks(t *testing.T) {
	src := `
export default function handler(req, res) {
  if (req.method === 'POST') {
    res.status(201).json({ created: true });
  } else if (req.method === 'GET') {
    res.status(200).json({ users: [] });
  } else if (req.method === 'GET') {
    res.status(200).json({ dup: true });
  } else {
    res.status(405).end();
  }
}
`
	_, resources := analyze(t, src, "web/pages/api/users/index.ts")
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d: %+v", len(resources), resources)
	}
	// First-seen order is preserved and duplicates collapse.
	if resources[0].HTTPMethod != "POST" || resources[1].HTTPMethod != "GET" {
		t.Errorf("methods = %q, %q; want POST, GET", resources[0].HTTPMethod, resources[1].HTTPMethod)
	}
	for _, r := range resources {
		if r.Handler != "handler" {
			t.Errorf("Handler = %q, want handler", r.Handler)
		}
		if r.Convention != ConventionPagesRouter {
			t.Errorf("Convention = %q, want %q", r.Convention, ConventionPagesRouter)
		}
		if r.URL != "/api/users" {
			t.Errorf("URL = %q, want /api/users", r.URL)
		}
	}
}

func TestPagesRouterDefaultMethodSet(t *testing.T) {
	src := `
export default function handler(req, res) {
  res.status(200).json({ ok: true });
}
`
	_, resources := analyze(t, src, "web/pages/api/health.ts")
	if len(resources) != 5 {
		t.Fatalf("expected 5 resources, got %d: %+v", len(resources), resources)
	}
	want := []string{"GET", "POST", "PUT", "DELETE", "PATCH"}
	for i, r := range resources {
		if r.HTTPMethod != want[i] {
			t.Errorf("resources[%d].HTTPMethod = %q, want %q", i, r.HTTPMethod, want[i])
		}
		if r.Handler != "handler" {
			t.Errorf("Handler = %q, want handler", r.Handler)
		}
	}
}

func TestPagesRouterWithoutHandlerEmitsNothing(t *testing.T) {
	src := `
export function listUsers() { return []; }
`
	_, resources := analyze(t, src, "web/pages/api/users.ts")
	if len(resources) != 0 {
		t.Fatalf("expected no resources without a recognized handler, got %d", len(resources))
	}
}

func TestDemandFromHandlerCall(t *testing.T) {
	src := `
import api from '../../lib/api';

export default async function handler(req, res) {
  const user = await api.get('/users/1', { timeout: 500 });
  res.status(200).json(user);
}
`
	a, resources := analyze(t, src, "web/pages/api/profile.ts")
	if len(resources) == 0 {
		t.Fatal("expected resources for handler file")
	}
	demands := a.Demands()
	if len(demands) != 1 {
		t.Fatalf("expected 1 demand, got %d: %+v", len(demands), demands)
	}
	d := demands[0]
	if d.SourceCaller != "handler" {
		t.Errorf("SourceCaller = %q, want handler", d.SourceCaller)
	}
	if d.TargetURL != "/users/1" {
		t.Errorf("TargetURL = %q, want /users/1", d.TargetURL)
	}
	if d.TargetHTTPMethod != "GET" {
		t.Errorf("TargetHTTPMethod = %q, want GET", d.TargetHTTPMethod)
	}
}

func TestDemandIgnoresUnknownVerb(t *testing.T) {
	src := `
export default function handler(req, res) {
  api.unknownVerb('/x');
  res.end();
}
`
	a, _ := analyze(t, src, "web/pages/api/misc.ts")
	if demands := a.Demands(); len(demands) != 0 {
		t.Fatalf("expected no demands for unknown verb, got %+v", demands)
	}
}

func TestDemandScopedToEnclosingAppHandler(t *testing.T) {
	src := `
import client from '@/lib/client';

export async function GET() {
  const orders = await client.get('/orders');
  return Response.json(orders);
}

export async function POST(req: Request) {
  const result = await client.post('/orders', await req.json());
  return Response.json(result);
}
`
	a, resources := analyze(t, src, "web/app/api/orders/route.ts")
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(resources))
	}
	demands := a.Demands()
	if len(demands) != 2 {
		t.Fatalf("expected 2 demands, got %d: %+v", len(demands), demands)
	}
	byMethod := make(map[string]Demand)
	for _, d := range demands {
		byMethod[d.TargetHTTPMethod] = d
	}
	if d := byMethod["GET"]; d.SourceCaller != "GET" || d.TargetURL != "/orders" {
		t.Errorf("GET demand = %+v", d)
	}
	if d := byMethod["POST"]; d.SourceCaller != "POST" || d.TargetURL != "/orders" {
		t.Errorf("POST demand = %+v", d)
	}
}

func TestDemandFromModuleLevelCall(t *testing.T) {
	src := `
import client from '@/lib/client';

const warmup = client.get('/health');

export async function GET() {
  return Response.json({ ok: true });
}
`
	a, _ := analyze(t, src, "web/app/api/status/route.ts")
	demands := a.Demands()
	if len(demands) != 1 {
		t.Fatalf("expected 1 demand, got %d: %+v", len(demands), demands)
	}
	if demands[0].SourceCaller != "" {
		t.Errorf("module-level call should have empty caller, got %q", demands[0].SourceCaller)
	}
}

func TestDemandCorrelationSurvivesNestedCalls(t *testing.T) {
	// The inner call site must not steal or corrupt the outer call's triple.
	src := `
export default function handler(req, res) {
  api.get('/outer', () => {
    client.post('/inner');
  });
  res.end();
}
`
	a, _ := analyze(t, src, "web/pages/api/nested.ts")
	demands := a.Demands()
	if len(demands) != 2 {
		t.Fatalf("expected 2 demands, got %d: %+v", len(demands), demands)
	}
	urls := map[string]string{}
	for _, d := range demands {
		urls[d.TargetURL] = d.TargetHTTPMethod
	}
	if urls["/outer"] != "GET" {
		t.Errorf("outer call = %q, want GET", urls["/outer"])
	}
	if urls["/inner"] != "POST" {
		t.Errorf("inner call = %q, want POST", urls["/inner"])
	}
}

func TestEndToEndAppRouter(t *testing.T) {
	src := `
export async function GET() { return Response.json([]); }
export async function DELETE() { return new Response(null, { status: 204 }); }
`
	a, resources := analyze(t, src, "/project/app/api/users/route.ts")
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d: %+v", len(resources), resources)
	}
	for _, r := range resources {
		if r.URL != "/api/users" {
			t.Errorf("URL = %q, want /api/users", r.URL)
		}
	}
	methods := map[string]bool{resources[0].HTTPMethod: true, resources[1].HTTPMethod: true}
	if !methods["GET"] || !methods["DELETE"] {
		t.Errorf("methods = %v, want GET and DELETE", methods)
	}
	if demands := a.Demands(); len(demands) != 0 {
		t.Errorf("expected zero demands, got %+v", demands)
	}
}
