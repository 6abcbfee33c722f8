// Package devices lists camera inputs, picks a default and owns the camera
// handle used for the preview.
package devices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/notify"
)

type Kind string

const (
	KindVideoInput Kind = "videoinput"
	KindAudioInput Kind = "audioinput"
)

var (
	ErrDeviceAccess  = errors.New("unable to access devices")
	ErrUnknownDevice = errors.New("unknown device")
)

type Device struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`
}

// Name is the label, or a generated name for unlabeled devices.
func (d Device) Name() string {
	if d.Label != "" {
		return d.Label
	}
	return "Camera " + d.ID
}

// Platform lists the media inputs of the host.
type Platform interface {
	Enumerate(ctx context.Context) ([]Device, error)
}

// Enumerator keeps the camera list and the current selection.
type Enumerator struct {
	mu       sync.RWMutex
	platform Platform
	notifier notify.Notifier
	logger   *zap.Logger
	devices  []Device
	selected string
}

func NewEnumerator(platform Platform, notifier notify.Notifier, logger *zap.Logger) *Enumerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enumerator{
		platform: platform,
		notifier: notify.OrNop(notifier),
		logger:   logger,
	}
}

// Init queries the platform. A failure leaves no devices and no selection
// and raises a warning; the preview is simply unavailable.
func (e *Enumerator) Init(ctx context.Context) error {
	all, err := e.platform.Enumerate(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.devices = nil
		e.selected = ""
		e.logger.Warn("device enumeration failed", zap.Error(err))
		e.notifier.Notify(notify.Warning("Error", "Unable to access cameras. Please check permissions."))
		return fmt.Errorf("%w: %w", ErrDeviceAccess, err)
	}

	video := make([]Device, 0, len(all))
	for _, d := range all {
		if d.Kind == KindVideoInput {
			video = append(video, d)
		}
	}

	e.devices = video
	e.selected = ""
	if d, ok := DefaultDevice(video); ok {
		e.selected = d.ID
	}
	e.logger.Debug("devices enumerated", zap.Int("cameras", len(video)), zap.String("selected", e.selected))
	return nil
}

// DefaultDevice prefers the first device whose label mentions neither
// "back" nor "front", falling back to the first device.
func DefaultDevice(devices []Device) (Device, bool) {
	if len(devices) == 0 {
		return Device{}, false
	}
	for _, d := range devices {
		label := strings.ToLower(d.Label)
		if !strings.Contains(label, "back") && !strings.Contains(label, "front") {
			return d, true
		}
	}
	return devices[0], true
}

func (e *Enumerator) Devices() []Device {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Device, len(e.devices))
	copy(out, e.devices)
	return out
}

// Selected returns the current device, if any.
func (e *Enumerator) Selected() (Device, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, d := range e.devices {
		if d.ID == e.selected {
			return d, true
		}
	}
	return Device{}, false
}

func (e *Enumerator) Select(id string) (Device, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range e.devices {
		if d.ID == id {
			e.selected = id
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("%w: %s", ErrUnknownDevice, id)
}
