package orchestrator

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ramgopal99/centipede/internal/engine"
	"github.com/ramgopal99/centipede/internal/task"
)

func sampleTree(t *testing.T) *TaskHolder {
	t.Helper()

	root := newStageHolder(t, "root", "{root}/{name}", StatusBypass)
	root.AddVar("root", "/out", true)
	root.AddVar("count", 3, false)
	root.Task().SetMetadata("match.types", []any{"generic"})

	child := newStageHolder(t, "child", "", StatusExecute)
	child.filter = engine.MustTemplate("(eval {n} > 1)")
	grandchild := newStageHolder(t, "grandchild", "", StatusIgnore)

	addChild(t, child, grandchild)
	addChild(t, root, child)
	return root
}

func TestToJSON_Format(t *testing.T) {
	h := newStageHolder(t, "s", "{a}", StatusExecute)
	h.AddVar("a", "x", true)

	data, err := h.ToJSON(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"template":{"target":"{a}","filter":""},"vars":{"a":"x"},"status":"execute",` +
		`"contextVarNames":["a"],"task":{"type":"test.stage","options":{"id":"s","stage":"s"},"metadata":{}},` +
		`"subTaskHolders":[]}`
	if string(data) != expected {
		t.Errorf("ToJSON =\n%s\nwant\n%s", data, expected)
	}
}

func TestFromJSON_RoundTrip(t *testing.T) {
	root := sampleTree(t)

	first, err := root.ToJSON(true)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	restored, err := FromJSON(first)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	second, err := restored.ToJSON(true)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("round trip is not stable:\n%s\n%s", first, second)
	}

	if diff := cmp.Diff(root.ToSerializable(true).Template, restored.ToSerializable(true).Template); diff != "" {
		t.Errorf("template mismatch:\n%s", diff)
	}
	if restored.Status() != StatusBypass {
		t.Errorf("status = %q", restored.Status())
	}
	if diff := cmp.Diff([]string{"root"}, restored.ContextVarNames()); diff != "" {
		t.Errorf("context names mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"generic"}, restored.Matcher().Types()); diff != "" {
		t.Errorf("matcher should be rebuilt from metadata:\n%s", diff)
	}

	subs := restored.SubTaskHolders()
	if len(subs) != 1 || len(subs[0].SubTaskHolders()) != 1 {
		t.Fatal("tree shape was not restored")
	}
	if subs[0].FilterTemplate().String() != "(eval {n} > 1)" {
		t.Errorf("filter = %q", subs[0].FilterTemplate().String())
	}
	if subs[0].SubTaskHolders()[0].Status() != StatusIgnore {
		t.Error("grandchild status was not restored")
	}
}

func TestToJSON_WithoutSubTaskHolders(t *testing.T) {
	root := sampleTree(t)

	s := root.ToSerializable(false)
	if len(s.SubTaskHolders) != 0 {
		t.Errorf("expected no sub task holders, got %d", len(s.SubTaskHolders))
	}
	if len(root.SubTaskHolders()) != 1 {
		t.Error("serializing should not change the tree")
	}
}

func TestClone_Independent(t *testing.T) {
	root := sampleTree(t)

	clone, err := root.Clone(true)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	clone.AddVar("root", "/elsewhere", true)
	clone.Task().SetOption("stage", "changed")
	clone.SubTaskHolders()[0].AddVar("extra", 1, false)
	clone.ClearSubTaskHolders()

	if v, _ := root.Var("root"); v != "/out" {
		t.Errorf("original var changed: %v", v)
	}
	if v, _ := root.Task().Option("stage"); v != "root" {
		t.Errorf("original task option changed: %v", v)
	}
	subs := root.SubTaskHolders()
	if len(subs) != 1 {
		t.Fatal("original children changed")
	}
	if len(subs[0].VarNames()) != 0 {
		t.Error("original child vars changed")
	}

	shallow, err := root.Clone(false)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if len(shallow.SubTaskHolders()) != 0 {
		t.Error("Clone(false) should drop children")
	}
}

func TestFromJSON_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected error
	}{
		{
			name:     "unknown task",
			data:     `{"template":{"target":"","filter":""},"vars":{},"status":"execute","contextVarNames":[],"task":{"type":"nope","options":{},"metadata":{}},"subTaskHolders":[]}`,
			expected: task.ErrUnknownTask,
		},
		{
			name:     "invalid status",
			data:     `{"template":{"target":"","filter":""},"vars":{},"status":"later","contextVarNames":[],"task":{"type":"test.stage","options":{},"metadata":{}},"subTaskHolders":[]}`,
			expected: ErrInvalidStatus,
		},
		{
			name:     "context var without value",
			data:     `{"template":{"target":"","filter":""},"vars":{},"status":"execute","contextVarNames":["x"],"task":{"type":"test.stage","options":{},"metadata":{}},"subTaskHolders":[]}`,
			expected: ErrInvalidVarName,
		},
		{
			name:     "broken template",
			data:     `{"template":{"target":"{name","filter":""},"vars":{},"status":"execute","contextVarNames":[],"task":{"type":"test.stage","options":{},"metadata":{}},"subTaskHolders":[]}`,
			expected: engine.ErrTemplateParse,
		},
		{
			name:     "unknown field",
			data:     `{"template":{"target":"","filter":""},"extra":1}`,
			expected: ErrInvalidHolder,
		},
		{
			name:     "not json",
			data:     `[`,
			expected: ErrInvalidHolder,
		},
		{
			name:     "broken child",
			data:     `{"template":{"target":"","filter":""},"vars":{},"status":"execute","contextVarNames":[],"task":{"type":"test.stage","options":{},"metadata":{}},"subTaskHolders":[{"template":{"target":"","filter":""},"vars":{},"status":"?","contextVarNames":[],"task":{"type":"test.stage","options":{},"metadata":{}},"subTaskHolders":[]}]}`,
			expected: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON([]byte(tt.data))
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}
