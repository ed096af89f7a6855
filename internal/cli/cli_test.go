package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/ramgopal99/centipede/internal/config"
	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/expression"
	"github.com/ramgopal99/centipede/internal/loader"
	"github.com/ramgopal99/centipede/internal/tasks"
	"github.com/ramgopal99/centipede/internal/wrapper"
)

func TestMain(m *testing.M) {
	expression.RegisterStandard(expression.Default())
	crawler.RegisterDefaults()
	tasks.RegisterDefaults()
	wrapper.RegisterDefaults(0)
	os.Exit(m.Run())
}

// execute выполняет команду и возвращает stdout.
func execute(t *testing.T, newCmd func(outputFn func() *Output) *cobra.Command, jsonMode bool, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newCmd(func() *Output { return NewOutputTo(jsonMode, &stdout, &stderr) })
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func runCmd(outputFn func() *Output) *cobra.Command {
	return NewRunCmd(func() *config.Config { return &config.Config{Parallelism: 1} }, outputFn)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRunCmd_CopiesSequenceFrame(t *testing.T) {
	dir := t.TempDir()
	plate := filepath.Join(dir, "in", "plate.0001.exr")
	writeFile(t, plate, "pixels")

	outDir := filepath.Join(dir, "out")
	configPath := filepath.Join(dir, "publish.json")
	writeFile(t, configPath, `{
  "vars": {"out": "`+filepath.ToSlash(outDir)+`"},
  "tasks": [
    {
      "run": "copy",
      "target": "{out}/{name}_v1.(pad {frame} 4).{ext}",
      "metadata": {"match.types": ["exr"]},
      "tasks": [{"run": "setVars", "options": {"vars": {"published": "{name}"}}}]
    }
  ]
}`)

	stdout, err := execute(t, runCmd, true, configPath, "--path", plate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result []crawler.Serialized
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 crawlers, got %d", len(result))
	}

	target := filepath.Join(outDir, "plate_v1.0001.exr")
	if result[0].Vars["filePath"] != target {
		t.Errorf("filePath = %v, want %s", result[0].Vars["filePath"], target)
	}
	if result[0].Vars["configName"] != "publish.json" {
		t.Errorf("configName should be propagated, got %v", result[0].Vars["configName"])
	}

	if result[1].Vars["published"] != "plate_v1" {
		t.Errorf("published = %v", result[1].Vars["published"])
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("copied file missing: %v", err)
	}
	if string(data) != "pixels" {
		t.Errorf("copied content = %q", data)
	}
}

func TestRunCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "empty.json")
	writeFile(t, configPath, `{"tasks": []}`)

	_, err := execute(t, runCmd, false, filepath.Join(dir, "missing.json"), "--path", dir)
	if !errors.Is(err, loader.ErrInvalidFile) {
		t.Errorf("expected ErrInvalidFile, got %v", err)
	}

	_, err = execute(t, runCmd, false, configPath, "--path", filepath.Join(dir, "nope.exr"))
	if !errors.Is(err, crawler.ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}

	_, err = execute(t, runCmd, false, configPath, "--path", dir, "--parallelism", "0")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}

	if _, err := execute(t, runCmd, false, configPath); err == nil {
		t.Error("missing --path should fail")
	}
}

func TestRunCmd_LoadsDirectory(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "notes.txt")
	writeFile(t, input, "text")

	configs := filepath.Join(dir, "configs")
	writeFile(t, filepath.Join(configs, "a.yaml"), "tasks:\n  - run: setVars\n    options:\n      vars: {step: a}\n")
	writeFile(t, filepath.Join(configs, "b.json"), `{"tasks": [{"run": "setVars", "options": {"vars": {"step": "b"}}}]}`)

	stdout, err := execute(t, runCmd, true, configs, "--path", input, "--parallelism", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result []crawler.Serialized
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("decode output: %v", err)
	}

	var steps []string
	for _, s := range result {
		steps = append(steps, s.Vars["step"].(string))
	}
	if diff := cmp.Diff([]string{"a", "b"}, steps); diff != "" {
		t.Errorf("result order mismatch:\n%s", diff)
	}
}

func TestEvalCmd(t *testing.T) {
	stdout, err := execute(t, NewEvalCmd, false, "sum", "1", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(stdout) != "3" {
		t.Errorf("eval sum = %q", stdout)
	}

	if _, err := execute(t, NewEvalCmd, false, "nope"); !errors.Is(err, expression.ErrUnknownProcedure) {
		t.Errorf("expected ErrUnknownProcedure, got %v", err)
	}
}

func TestResolveCmd(t *testing.T) {
	stdout, err := execute(t, NewResolveCmd, false, "{a}_(upper {b})", "a=x", "b=y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(stdout) != "x_Y" {
		t.Errorf("resolve = %q", stdout)
	}

	if _, err := execute(t, NewResolveCmd, false, "{a}", "broken"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}

	dir := t.TempDir()
	plate := filepath.Join(dir, "shot.1001.exr")
	writeFile(t, plate, "")

	stdout, err = execute(t, NewResolveCmd, false, "{name}.(pad (sum {frame} 1) 4)", "--path", plate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(stdout) != "shot.1002" {
		t.Errorf("resolve with path = %q", stdout)
	}
}

func TestInspectCmd(t *testing.T) {
	dir := t.TempDir()
	plate := filepath.Join(dir, "plate.0010.exr")
	writeFile(t, plate, "")

	stdout, err := execute(t, NewInspectCmd, true, plate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result []crawler.Serialized
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(result) != 1 || result[0].Type != "exr" {
		t.Fatalf("unexpected crawlers: %+v", result)
	}
	if result[0].Vars["imageType"] != "sequence" {
		t.Errorf("imageType = %v", result[0].Vars["imageType"])
	}

	stdout, err = execute(t, NewInspectCmd, false, plate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "frame=10") {
		t.Errorf("table output missing vars:\n%s", stdout)
	}
}

func TestListCmds(t *testing.T) {
	stdout, err := execute(t, NewProceduresCmd, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"pad", "retimepad", "eval"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("procedures output missing %q", name)
		}
	}

	stdout, err = execute(t, NewTasksCmd, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"copy", "checksum", "subprocess"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("tasks output missing %q", name)
		}
	}
}

func TestBootstrapCmd_Usage(t *testing.T) {
	cmd := NewBootstrapCmd()
	cmd.SetArgs([]string{"only-one"})
	cmd.SetErr(io.Discard)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(context.Background())
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Errorf("expected exit code 2, got %v", err)
	}
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"a=1", "b=x=y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a": "1", "b": "x=y"}, got); diff != "" {
		t.Errorf("assignments mismatch:\n%s", diff)
	}

	if _, err := parseAssignments([]string{"=v"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
