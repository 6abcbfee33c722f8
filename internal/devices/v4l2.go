package devices

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const sysVideoClass = "/sys/class/video4linux"

// V4L2Platform lists Linux video4linux devices.
type V4L2Platform struct {
	SysDir string
	DevDir string
}

func NewV4L2Platform() *V4L2Platform {
	return &V4L2Platform{SysDir: sysVideoClass, DevDir: "/dev"}
}

func (p *V4L2Platform) Enumerate(ctx context.Context) ([]Device, error) {
	entries, err := os.ReadDir(p.SysDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.SysDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "video") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	out := make([]Device, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		label, err := os.ReadFile(filepath.Join(p.SysDir, name, "name"))
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read device name for %s: %w", name, err)
		}
		out = append(out, Device{
			ID:    filepath.Join(p.DevDir, name),
			Label: strings.TrimSpace(string(label)),
			Kind:  KindVideoInput,
		})
	}
	return out, nil
}

type fileStream struct {
	*os.File
	id string
}

func (s fileStream) DeviceID() string { return s.id }

// FileAcquirer opens the device node read-only.
type FileAcquirer struct{}

func (FileAcquirer) Acquire(_ context.Context, deviceID string) (Stream, error) {
	f, err := os.Open(deviceID)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", deviceID, err)
	}
	return fileStream{File: f, id: deviceID}, nil
}
