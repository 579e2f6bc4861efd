package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	callsCounters   []counterCall
	callsHistograms []histCall
	flushCount      int
}

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

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsCounters = append(f.callsCounters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsHistograms = append(f.callsHistograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

// swap installs fb for the duration of the test.
func swap(t *testing.T, fb Backend) {
	t.Helper()
	orig := current()
	SetBackend(fb)
	t.Cleanup(func() { SetBackend(orig) })
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	fb := &fakeBackend{}
	swap(t, fb)

	RecordStep("heart", "extract", nil, 2*time.Second)
	RecordStep("heart", "load", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.callsCounters) != 2 || len(fb.callsHistograms) != 2 {
		t.Fatalf("calls = %d counters, %d histograms; want 2 and 2", len(fb.callsCounters), len(fb.callsHistograms))
	}

	cc0 := fb.callsCounters[0]
	if cc0.name != StepTotal || cc0.delta != 1 {
		t.Fatalf("counter[0] = %#v; want name=%s, delta=1", cc0, StepTotal)
	}
	if cc0.labels["step"] != "extract" || cc0.labels["status"] != "success" || cc0.labels["job"] != "heart" {
		t.Fatalf("counter[0].labels = %v", cc0.labels)
	}
	if h0 := fb.callsHistograms[0]; h0.name != StepDuration || h0.value < 1.999 || h0.value > 2.001 {
		t.Fatalf("hist[0] = %#v; want %s ~2.0", h0, StepDuration)
	}

	if got := fb.callsCounters[1].labels["status"]; got != "failure" {
		t.Fatalf("counter[1].labels[status]=%q; want failure", got)
	}
	if h1 := fb.callsHistograms[1]; h1.value < 1.499 || h1.value > 1.501 {
		t.Fatalf("hist[1].value=%v; want ~1.5", h1.value)
	}
}

func TestRecordRowsImputedAndBatches(t *testing.T) {
	fb := &fakeBackend{}
	swap(t, fb)

	RecordRows("heart", RowsExtracted, 303)
	RecordRows("heart", RowsDuplicatesRemoved, 0) // ignored
	RecordImputed("heart", "ca", "knn", 4)
	RecordImputed("heart", "thal", "knn", 0) // ignored
	RecordBatches("heart", 2)

	want := []counterCall{
		{RowsTotal, 303, Labels{"job": "heart", "kind": RowsExtracted}},
		{ImputedCellTotal, 4, Labels{"job": "heart", "column": "ca", "strategy": "knn"}},
		{BatchesTotal, 2, Labels{"job": "heart"}},
	}
	if len(fb.callsCounters) != len(want) {
		t.Fatalf("got %d counter calls, want %d: %#v", len(fb.callsCounters), len(want), fb.callsCounters)
	}
	for i, w := range want {
		got := fb.callsCounters[i]
		if got.name != w.name || got.delta != w.delta {
			t.Fatalf("counter[%d] = %#v; want %#v", i, got, w)
		}
		for k, v := range w.labels {
			if got.labels[k] != v {
				t.Fatalf("counter[%d].labels[%s]=%q; want %q", i, k, got.labels[k], v)
			}
		}
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	fb := &fakeBackend{}
	swap(t, fb)

	if current() != fb {
		t.Fatal("SetBackend did not replace global backend")
	}
	if err := Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("expected flushCount=1, got %d", fb.flushCount)
	}

	// SetBackend(nil) should not nil out the backend.
	SetBackend(nil)
	if current() != fb {
		t.Fatal("SetBackend(nil) should not change backend")
	}

	Reset()
	if _, ok := current().(nopBackend); !ok {
		t.Fatalf("Reset() left %T installed", current())
	}
	SetBackend(fb)
}
