package metrics

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

// fakeBackend records every call for assertions.
type fakeBackend struct {
	mu       sync.Mutex
	counters []counterCall
	hists    []histCall
	flushed  int
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, counterCall{name: name, delta: delta, labels: labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hists = append(f.hists, histCall{name: name, value: value, labels: labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushed++
	return nil
}

// withFakeBackend swaps the package backend for the test's lifetime.
func withFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	prev := backend
	fb := &fakeBackend{}
	SetBackend(fb)
	t.Cleanup(func() { backend = prev })
	return fb
}

// TestRecordStep verifies the counter/histogram pair and the status label.
func TestRecordStep(t *testing.T) {
	fb := withFakeBackend(t)

	RecordStep("job1", "prepare_table", nil, 250*time.Millisecond)
	RecordStep("job1", "prepare_table", fmt.Errorf("boom"), time.Second)

	if len(fb.counters) != 2 || len(fb.hists) != 2 {
		t.Fatalf("calls = %d counters, %d hists; want 2 and 2", len(fb.counters), len(fb.hists))
	}

	ok := fb.counters[0]
	if ok.name != "target_step_total" || ok.delta != 1 {
		t.Fatalf("counter = %+v", ok)
	}
	if ok.labels["status"] != "success" || ok.labels["step"] != "prepare_table" || ok.labels["job"] != "job1" {
		t.Fatalf("labels = %v", ok.labels)
	}

	failed := fb.counters[1]
	if failed.labels["status"] != "failure" {
		t.Fatalf("labels = %v, want failure status", failed.labels)
	}

	if fb.hists[0].name != "target_step_duration_seconds" || fb.hists[0].value != 0.25 {
		t.Fatalf("hist = %+v", fb.hists[0])
	}
}

// TestRecordTable verifies the outcome label.
func TestRecordTable(t *testing.T) {
	fb := withFakeBackend(t)

	RecordTable("job1", "prepared")
	RecordTable("job1", "unchanged")

	if len(fb.counters) != 2 {
		t.Fatalf("counters = %d, want 2", len(fb.counters))
	}
	if fb.counters[0].name != "target_tables_total" || fb.counters[0].labels["outcome"] != "prepared" {
		t.Fatalf("counter = %+v", fb.counters[0])
	}
	if fb.counters[1].labels["outcome"] != "unchanged" {
		t.Fatalf("counter = %+v", fb.counters[1])
	}
}

// TestRecordMessages verifies the kind label and the non-positive guard.
func TestRecordMessages(t *testing.T) {
	fb := withFakeBackend(t)

	RecordMessages("job1", "record", 5)
	RecordMessages("job1", "record", 0)
	RecordMessages("job1", "record", -1)

	if len(fb.counters) != 1 {
		t.Fatalf("counters = %d, want 1 (non-positive deltas skipped)", len(fb.counters))
	}
	c := fb.counters[0]
	if c.name != "target_messages_total" || c.delta != 5 || c.labels["kind"] != "record" {
		t.Fatalf("counter = %+v", c)
	}
}

// TestSetBackendNil verifies that a nil backend is ignored.
func TestSetBackendNil(t *testing.T) {
	fb := withFakeBackend(t)

	SetBackend(nil)
	RecordTable("job1", "prepared")

	if len(fb.counters) != 1 {
		t.Fatalf("counters = %d, want the fake to still receive calls", len(fb.counters))
	}
}

// TestFlush verifies delegation to the installed backend.
func TestFlush(t *testing.T) {
	fb := withFakeBackend(t)

	if err := Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if fb.flushed != 1 {
		t.Fatalf("flushed = %d, want 1", fb.flushed)
	}
}
