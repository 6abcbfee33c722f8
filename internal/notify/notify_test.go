package notify

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCollectorReturnsCopy(t *testing.T) {
	c := &Collector{}
	c.Notify(Info("Already Answered", "You have already answered this question"))

	got := c.Notices()
	got[0].Title = "changed"

	if c.Notices()[0].Title != "Already Answered" {
		t.Fatal("Notices must return a copy")
	}
}

func TestMultiSkipsNil(t *testing.T) {
	first, second := &Collector{}, &Collector{}
	Multi{first, nil, second}.Notify(Success("Saved", "Your answer has been saved.."))

	if len(first.Notices()) != 1 || len(second.Notices()) != 1 {
		t.Fatal("expected both collectors to receive the notice")
	}
}

func TestLogNotifierLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := NewLogNotifier(zap.New(core))

	n.Notify(Error("Error", "boom"))
	n.Notify(Warning("Error", "Unable to access cameras. Please check permissions."))
	n.Notify(Info("Info", "fyi"))

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []zapcore.Level{zapcore.ErrorLevel, zapcore.WarnLevel, zapcore.InfoLevel}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, want[i], e.Level)
		}
	}
	if entries[0].ContextMap()["description"] != "boom" {
		t.Fatalf("unexpected fields %v", entries[0].ContextMap())
	}
}

func TestOrNop(t *testing.T) {
	OrNop(nil).Notify(Info("x", "y"))
}
