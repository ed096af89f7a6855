package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestRun_Lifecycle(t *testing.T) {
	configs := []string{"shots.json"}
	run := NewRun(configs, []string{"/plates/a.exr"})
	configs[0] = "changed"

	if run.ID == uuid.Nil {
		t.Error("run should get an ID")
	}
	if run.Configs[0] != "shots.json" {
		t.Error("configs should be copied")
	}
	if run.Status != RunStatusPending || run.IsFinished() {
		t.Errorf("new run status = %q", run.Status)
	}
	if run.Duration() != 0 {
		t.Error("unfinished run should have zero duration")
	}

	run.MarkRunning()
	if run.Status != RunStatusRunning || run.StartedAt == nil {
		t.Fatal("MarkRunning should set status and start time")
	}

	run.MarkSucceeded(RunStats{Executed: 2, Produced: 3}, json.RawMessage(`[]`))
	if !run.IsFinished() || run.FinishedAt == nil {
		t.Fatal("MarkSucceeded should finish the run")
	}
	if run.Stats.Produced != 3 || string(run.Results) != "[]" {
		t.Errorf("unexpected stats/results: %+v %s", run.Stats, run.Results)
	}
	if run.Duration() < 0 {
		t.Error("duration should not be negative")
	}
}

func TestRun_MarkFailed(t *testing.T) {
	run := NewRun(nil, nil)
	run.MarkRunning()
	run.MarkFailed("holder 0 (copy): boom")

	if run.Status != RunStatusFailed || run.Error != "holder 0 (copy): boom" {
		t.Errorf("unexpected run: %+v", run)
	}

	run = NewRun(nil, nil)
	run.MarkCancelled()
	if run.Status != RunStatusCancelled || !run.IsFinished() {
		t.Errorf("unexpected run: %+v", run)
	}
}

func TestRunStatus_IsTerminal(t *testing.T) {
	tests := map[RunStatus]bool{
		RunStatusPending:   false,
		RunStatusRunning:   false,
		RunStatusSucceeded: true,
		RunStatusFailed:    true,
		RunStatusCancelled: true,
	}
	for status, expected := range tests {
		if got := status.IsTerminal(); got != expected {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, expected)
		}
	}
}
