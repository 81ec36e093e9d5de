package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestLevelScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopeUnit, true},
		{LevelPhase, ScopePass, false},
		{LevelDetail, ScopePass, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestRingKeepsUnitBoundariesAtErrorLevel(t *testing.T) {
	ring := NewRingTracer(8, LevelError)
	unit := Begin(ring, ScopeUnit, "unit a.json", 0)
	pass := Begin(ring, ScopePass, "sema", unit.ID())
	pass.End("")
	unit.WithExtra("verdict", "E_SAFETY_OVERFLOW").End("")

	events := ring.Snapshot()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[1].Kind != KindSpanEnd || events[1].Extra["verdict"] != "E_SAFETY_OVERFLOW" {
		t.Fatalf("end event = %+v", events[1])
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeNode, name, "", 0)
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ","); got != "c,d,e" {
		t.Fatalf("snapshot = %s", got)
	}
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	span := Begin(tr, ScopePass, "borrow", 0)
	span.WithExtra("code", "E_BORROW_DOUBLE_DROP").End("failed")
	Begin(tr, ScopeNode, "fn main", span.ID()).End("")

	out := buf.String()
	if !strings.Contains(out, "→ borrow") || !strings.Contains(out, "← borrow (failed) {code=E_BORROW_DOUBLE_DROP}") {
		t.Fatalf("unexpected trace:\n%s", out)
	}
	if strings.Contains(out, "fn main") {
		t.Fatalf("node scope leaked at detail level:\n%s", out)
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, OutputPath: "run.ndjson"})
	if err != nil {
		t.Fatal(err)
	}
	Point(tr, ScopeUnit, "cache hit", "a.json", 0)
	if !strings.Contains(buf.String(), `"kind":"point"`) {
		t.Fatalf("ndjson = %s", buf.String())
	}
	if ring := RingOf(tr); ring == nil || len(ring.Snapshot()) != 1 {
		t.Fatal("expected the ring to hold the point")
	}
}

func TestHeartbeatReportsOpenSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	before := OpenSpans()
	span := Begin(tr, ScopeUnit, "slow.json", 0)
	if got := OpenSpans(); got != before+1 {
		t.Fatalf("open spans = %d, want %d", got, before+1)
	}

	hb := StartHeartbeat(tr, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	hb.Stop()
	hb.Stop()
	span.End("")
	span.End("")
	if got := OpenSpans(); got != before {
		t.Fatalf("open spans after end = %d, want %d", got, before)
	}

	out := buf.String()
	if !strings.Contains(out, "♡ heartbeat (#1 open=") {
		t.Fatalf("no heartbeat in:\n%s", out)
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("heartbeat started for a disabled tracer")
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("empty context should carry Nop")
	}
	ring := NewRingTracer(4, LevelPhase)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatal("tracer lost")
	}
	ctx = WithSpanContext(ctx, SpanContext{SpanID: 7})
	if CurrentSpan(ctx).SpanID != 7 {
		t.Fatal("span context lost")
	}
}

func TestParseHelpers(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat = %v, %v", f, err)
	}
}
