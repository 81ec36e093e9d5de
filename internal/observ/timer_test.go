package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRecordAggregates(t *testing.T) {
	timer := NewTimer()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			timer.Record("sema", time.Millisecond)
			timer.Record("borrow", 2*time.Millisecond)
		}()
	}
	wg.Wait()

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %+v", report.Phases)
	}
	for _, p := range report.Phases {
		if p.Count != 8 {
			t.Fatalf("%s count = %d, want 8", p.Name, p.Count)
		}
	}
	if report.TotalMS != 24 {
		t.Fatalf("total = %v, want 24", report.TotalMS)
	}
}

func TestBeginEndSummary(t *testing.T) {
	timer := NewTimer()
	idx := timer.Begin("discover")
	timer.End(idx, "3 units")
	timer.End(42, "ignored")

	out := timer.Summary()
	if !strings.Contains(out, "discover") || !strings.Contains(out, "// 3 units") || !strings.Contains(out, "total") {
		t.Fatalf("summary:\n%s", out)
	}
	if strings.Contains(out, "x1") {
		t.Fatalf("single samples should not show a count:\n%s", out)
	}
}

func TestNilTimer(t *testing.T) {
	var timer *Timer
	timer.Record("sema", time.Second)
	timer.End(timer.Begin("x"), "")
	if len(timer.Report().Phases) != 0 {
		t.Fatal("nil timer should report nothing")
	}
}
