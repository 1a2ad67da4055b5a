package structurer

import (
	"context"
	"testing"
)

func structure(t *testing.T, source, filePath string) *CodeFile {
	t.Helper()
	model, err := New().Structure(context.Background(), []byte(source), filePath)
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	return model
}

func TestStructureFunctionDeclarations(t *testing.T) {
	src := `
function first() {}

export function second() { return 1; }

export default function handler(req, res) {
  res.end();
}
`
	model := structure(t, src, "pages/api/users.ts")
	names := model.FunctionNames()
	want := []string{"first", "second", "handler"}
	if len(names) != len(want) {
		t.Fatalf("functions = %v, want %v", names, want)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("names[%d] = %q, want %q", i, names[i], n)
		}
	}
	if model.Functions[0].Exported {
		t.Error("first should not be exported")
	}
	if !model.Functions[1].Exported {
		t.Error("second should be exported")
	}
	if !model.Functions[2].Exported {
		t.Error("handler should be exported")
	}
}

func TestStructureArrowFunctions(t *testing.T) {
	src := `
const listUsers = async () => [];
export const createUser = (body) => ({ ...body });
let notAFunction = 42;
var legacy = function () {};
`
	model := structure(t, src, "lib/api.ts")
	names := model.FunctionNames()
	want := []string{"listUsers", "createUser", "legacy"}
	if len(names) != len(want) {
		t.Fatalf("functions = %v, want %v", names, want)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("names[%d] = %q, want %q", i, names[i], n)
		}
	}
	if model.Functions[0].Exported {
		t.Error("listUsers should not be exported")
	}
	if !model.Functions[1].Exported {
		t.Error("createUser should be exported")
	}
}

func TestStructureLineNumbers(t *testing.T) {
	src := "function a() {\n}\n\nfunction b() {\n  return 2;\n}\n"
	model := structure(t, src, "x.ts")
	if len(model.Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(model.Functions))
	}
	if model.Functions[0].Line != 1 || model.Functions[0].EndLine != 2 {
		t.Errorf("a spans %d-%d, want 1-2", model.Functions[0].Line, model.Functions[0].EndLine)
	}
	if model.Functions[1].Line != 4 || model.Functions[1].EndLine != 6 {
		t.Errorf("b spans %d-%d, want 4-6", model.Functions[1].Line, model.Functions[1].EndLine)
	}
}

func TestStructureUnsupportedExtension(t *testing.T) {
	model, err := New().Structure(context.Background(), []byte("body"), "README.md")
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if model != nil {
		t.Fatalf("expected nil model for unsupported extension, got %+v", model)
	}
}
