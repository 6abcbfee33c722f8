package devices

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spigell/mockwise/internal/notify"
)

type fakePlatform struct {
	devices []Device
	err     error
}

func (f fakePlatform) Enumerate(context.Context) ([]Device, error) {
	return f.devices, f.err
}

func cams(labels ...string) []Device {
	out := make([]Device, 0, len(labels))
	for i, l := range labels {
		out = append(out, Device{ID: string(rune('a' + i)), Label: l, Kind: KindVideoInput})
	}
	return out
}

func TestDefaultSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		devices []Device
		want    string
		ok      bool
	}{
		{name: "prefers neutral label", devices: cams("Front Camera", "USB Webcam", "Back Camera"), want: "USB Webcam", ok: true},
		{name: "falls back to first", devices: cams("Front Camera", "Back Camera"), want: "Front Camera", ok: true},
		{name: "case insensitive", devices: cams("FRONT", "backside", "Integrated"), want: "Integrated", ok: true},
		{name: "empty label is neutral", devices: cams("front", ""), want: "", ok: true},
		{name: "no devices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := NewEnumerator(fakePlatform{devices: tt.devices}, nil, nil)
			if err := e.Init(context.Background()); err != nil {
				t.Fatalf("init: %v", err)
			}
			got, ok := e.Selected()
			if ok != tt.ok {
				t.Fatalf("expected selected=%v, got %v", tt.ok, ok)
			}
			if ok && got.Label != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got.Label)
			}
		})
	}
}

func TestInitFiltersVideoInputs(t *testing.T) {
	platform := fakePlatform{devices: []Device{
		{ID: "mic", Label: "Microphone", Kind: KindAudioInput},
		{ID: "cam", Label: "Front Camera", Kind: KindVideoInput},
	}}
	e := NewEnumerator(platform, nil, nil)
	if err := e.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := e.Devices(); len(got) != 1 || got[0].ID != "cam" {
		t.Fatalf("unexpected devices %+v", got)
	}
}

func TestInitFailureIsReported(t *testing.T) {
	collector := &notify.Collector{}
	e := NewEnumerator(fakePlatform{err: errors.New("permission denied")}, collector, nil)

	err := e.Init(context.Background())
	if !errors.Is(err, ErrDeviceAccess) {
		t.Fatalf("expected ErrDeviceAccess, got %v", err)
	}
	if len(e.Devices()) != 0 {
		t.Fatal("expected no devices")
	}
	if _, ok := e.Selected(); ok {
		t.Fatal("expected no selection")
	}
	n := collector.Notices()
	if len(n) != 1 || n[0].Level != notify.LevelWarning || n[0].Description != "Unable to access cameras. Please check permissions." {
		t.Fatalf("unexpected notices %+v", n)
	}
}

func TestSelect(t *testing.T) {
	e := NewEnumerator(fakePlatform{devices: cams("USB", "Front")}, nil, nil)
	if err := e.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Select("b"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if d, _ := e.Selected(); d.Label != "Front" {
		t.Fatalf("unexpected selection %+v", d)
	}
	if _, err := e.Select("zzz"); !errors.Is(err, ErrUnknownDevice) {
		t.Fatalf("expected ErrUnknownDevice, got %v", err)
	}
}

type fakeStream struct {
	id     string
	closed *int
}

func (s fakeStream) Close() error     { *s.closed++; return nil }
func (s fakeStream) DeviceID() string { return s.id }

type fakeAcquirer struct {
	acquired []string
	closed   int
	fail     map[string]bool
}

func (f *fakeAcquirer) Acquire(_ context.Context, id string) (Stream, error) {
	if f.fail[id] {
		return nil, errors.New("busy")
	}
	f.acquired = append(f.acquired, id)
	return fakeStream{id: id, closed: &f.closed}, nil
}

func TestCameraLifecycle(t *testing.T) {
	ctx := context.Background()
	acq := &fakeAcquirer{fail: map[string]bool{"broken": true}}
	collector := &notify.Collector{}
	c := NewCamera(acq, collector, nil)

	if err := c.Enable(ctx, ""); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}

	if err := c.Enable(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := c.Enable(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if len(acq.acquired) != 1 {
		t.Fatalf("re-enabling the same device must not re-acquire: %v", acq.acquired)
	}

	if err := c.Switch(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if acq.closed != 1 || c.DeviceID() != "b" || !c.Enabled() {
		t.Fatalf("switch must tear down and re-acquire, closed=%d id=%s", acq.closed, c.DeviceID())
	}

	c.Disable()
	if c.Enabled() || acq.closed != 2 {
		t.Fatal("disable must release the handle")
	}

	if err := c.Switch(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if c.Enabled() || len(acq.acquired) != 2 {
		t.Fatal("switching while disabled must not acquire")
	}

	if err := c.Enable(ctx, "broken"); !errors.Is(err, ErrDeviceAccess) {
		t.Fatalf("expected ErrDeviceAccess, got %v", err)
	}
	if c.Enabled() {
		t.Fatal("failed acquisition must leave the camera off")
	}
	if len(collector.Notices()) != 1 {
		t.Fatalf("expected one warning, got %+v", collector.Notices())
	}
}

func TestV4L2Platform(t *testing.T) {
	sys := t.TempDir()
	for name, label := range map[string]string{"video1": "Front Camera\n", "video0": "USB Webcam\n"} {
		dir := filepath.Join(sys, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "name"), []byte(label), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(sys, "v4l-subdev0"), 0o755); err != nil {
		t.Fatal(err)
	}

	p := &V4L2Platform{SysDir: sys, DevDir: "/dev"}
	got, err := p.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 devices, got %+v", got)
	}
	if got[0].ID != "/dev/video0" || got[0].Label != "USB Webcam" || got[1].Label != "Front Camera" {
		t.Fatalf("unexpected devices %+v", got)
	}

	if _, err := (&V4L2Platform{SysDir: filepath.Join(sys, "missing")}).Enumerate(context.Background()); err == nil {
		t.Fatal("expected error for missing sysfs directory")
	}
}
