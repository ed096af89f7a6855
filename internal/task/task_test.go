package task

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/values"
)

// labelPerformer возвращает копию каждого вложения с переменной stage.
type labelPerformer struct{}

func (labelPerformer) Perform(_ context.Context, t *Task) ([]crawler.Crawler, error) {
	stage, _ := t.Option("stage")
	var out []crawler.Crawler
	for _, a := range t.Attachments() {
		c := crawler.New(crawler.TypeGeneric)
		c.SetVar("stage", stage, false)
		c.SetVar("outputPath", a.FilePath, false)
		out = append(out, c)
	}
	return out, nil
}

func (labelPerformer) DefaultOptions() map[string]any {
	return map[string]any{"stage": "default"}
}

func newItem(name string) crawler.Crawler {
	c := crawler.New(crawler.TypeGeneric)
	c.SetVar("name", name, false)
	return c
}

func TestRegistry_Create(t *testing.T) {
	r := NewRegistry()
	r.Register("label", func() Performer { return labelPerformer{} })

	task, err := r.Create("label")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type() != "label" {
		t.Errorf("type = %q", task.Type())
	}
	if v, _ := task.Option("stage"); v != "default" {
		t.Errorf("default option not applied, got %v", v)
	}

	if _, err := r.Create("missing"); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
	if !r.Has("label") || r.Has("missing") {
		t.Error("Has returned wrong result")
	}
}

func TestTask_Accessors(t *testing.T) {
	task := New("label", labelPerformer{})
	task.SetOption("stage", "A")
	task.SetMetadata("match.types", []any{"exr"})

	if !task.HasOption("stage") || task.HasOption("other") {
		t.Error("HasOption returned wrong result")
	}
	if _, err := task.Option("other"); !errors.Is(err, ErrInvalidOptionName) {
		t.Errorf("expected ErrInvalidOptionName, got %v", err)
	}
	if _, err := task.Metadata("other"); !errors.Is(err, ErrInvalidMetadataName) {
		t.Errorf("expected ErrInvalidMetadataName, got %v", err)
	}
	if _, err := task.RequireOption("target"); !errors.Is(err, ErrMissingOption) {
		t.Errorf("expected ErrMissingOption, got %v", err)
	}
	if diff := cmp.Diff([]string{"match.types"}, task.MetadataNames()); diff != "" {
		t.Errorf("MetadataNames mismatch:\n%s", diff)
	}
}

func TestTask_AttachmentsKeepOrder(t *testing.T) {
	task := New("label", labelPerformer{})
	a, b, c := newItem("a"), newItem("b"), newItem("c")
	task.Add(b, "/out/b")
	task.Add(a, "")
	task.Add(c, "/out/c")

	got := task.Crawlers()
	if len(got) != 3 || got[0] != b || got[1] != a || got[2] != c {
		t.Fatalf("unexpected order: %v", got)
	}

	if p, err := task.FilePath(c); err != nil || p != "/out/c" {
		t.Errorf("FilePath(c) = %q, %v", p, err)
	}
	if p, err := task.FilePath(a); err != nil || p != "" {
		t.Errorf("FilePath(a) = %q, %v", p, err)
	}
	if _, err := task.FilePath(newItem("x")); !errors.Is(err, ErrInvalidCrawler) {
		t.Errorf("expected ErrInvalidCrawler, got %v", err)
	}
}

func TestTask_OutputAppliesContextVars(t *testing.T) {
	task := New("label", labelPerformer{})
	task.SetOption("stage", "A")

	item := newItem("f1")
	item.SetVar("shot", "sh010", true)
	item.SetVar("local", "x", false)
	task.Add(item, "/out/f1.txt")

	out, err := task.Output(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out))
	}

	result := out[0]
	if v, _ := result.Var("stage"); v != "A" {
		t.Errorf("stage = %v", v)
	}
	if v, _ := result.Var("outputPath"); v != "/out/f1.txt" {
		t.Errorf("outputPath = %v", v)
	}
	if v, _ := result.Var("shot"); v != "sh010" {
		t.Errorf("context var shot = %v", v)
	}
	if diff := cmp.Diff([]string{"shot"}, result.ContextVarNames()); diff != "" {
		t.Errorf("ContextVarNames mismatch:\n%s", diff)
	}
	if result.HasVar("local") {
		t.Error("non-context var should not be applied to results")
	}
}

func TestTask_OutputKeepsOwnContextVars(t *testing.T) {
	passThrough := PerformerFunc(func(_ context.Context, t *Task) ([]crawler.Crawler, error) {
		return t.Crawlers(), nil
	})
	task := New("pass", passThrough)

	a := newItem("a")
	a.SetVar("shot", "A", true)
	b := newItem("b")
	b.SetVar("shot", "B", true)
	task.Add(a, "")
	task.Add(b, "")

	out, err := task.Output(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, c := range out {
		v, _ := c.Var("shot")
		got = append(got, values.String(v))
	}
	if diff := cmp.Diff([]string{"A", "B"}, got); diff != "" {
		t.Errorf("shot mismatch:\n%s", diff)
	}

	// новый crawler без context-переменных получает их от вложений
	fresh := PerformerFunc(func(_ context.Context, t *Task) ([]crawler.Crawler, error) {
		return []crawler.Crawler{newItem("merged")}, nil
	})
	merge := New("merge", fresh)
	merge.Add(a, "")
	out, err = merge.Output(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := out[0].Var("shot"); v != "A" {
		t.Errorf("shot = %v, want A", v)
	}
}

func TestTask_OutputNoPartialResults(t *testing.T) {
	calls := 0
	failing := PerformerFunc(func(_ context.Context, t *Task) ([]crawler.Crawler, error) {
		calls++
		var out []crawler.Crawler
		for i, c := range t.Crawlers() {
			if i == 1 {
				return out, errors.New("boom")
			}
			out = append(out, c)
		}
		return out, nil
	})

	task := New("failing", failing)
	task.Add(newItem("a"), "")
	task.Add(newItem("b"), "")

	out, err := task.Output(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if out != nil {
		t.Errorf("expected nil result on error, got %v", out)
	}
	if calls != 1 {
		t.Errorf("performer called %d times", calls)
	}
}

func TestTask_CloneDropsAttachments(t *testing.T) {
	task := New("label", labelPerformer{})
	task.SetOption("nested", map[string]any{"k": "v"})
	task.SetMetadata("wrapper.name", "default")
	task.Add(newItem("a"), "/out/a")

	clone := task.Clone()
	if clone.Type() != "label" {
		t.Errorf("clone type = %q", clone.Type())
	}
	if len(clone.Attachments()) != 0 {
		t.Error("clone should have no attachments")
	}
	if diff := cmp.Diff(task.ToSerializable(), clone.ToSerializable()); diff != "" {
		t.Errorf("clone mismatch:\n%s", diff)
	}

	nested, _ := clone.Option("nested")
	nested.(map[string]any)["k"] = "changed"
	original, _ := task.Option("nested")
	if original.(map[string]any)["k"] != "v" {
		t.Error("options should not be shared with clone")
	}
}

func TestTask_JSON(t *testing.T) {
	Register("test.label", func() Performer { return labelPerformer{} })

	task, err := Create("test.label")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	task.SetOption("stage", "B")
	task.SetMetadata("match.types", []any{"exr"})

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"type":"test.label","options":{"stage":"B"},"metadata":{"match.types":["exr"]}}`
	if string(data) != want {
		t.Errorf("JSON = %s, want %s", data, want)
	}

	var s Serialized
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	restored, err := FromSerialized(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(task.ToSerializable(), restored.ToSerializable()); diff != "" {
		t.Errorf("round trip mismatch:\n%s", diff)
	}

	if _, err := FromSerialized(Serialized{Type: "nope"}); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
}
