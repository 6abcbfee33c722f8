package devices

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/notify"
)

var ErrNoDevice = errors.New("no camera selected")

// Stream is an acquired device handle.
type Stream interface {
	io.Closer
	DeviceID() string
}

type Acquirer interface {
	Acquire(ctx context.Context, deviceID string) (Stream, error)
}

// Camera holds at most one open stream. Disabling it releases the handle;
// switching devices while enabled closes the old stream before opening the
// new one.
type Camera struct {
	mu       sync.Mutex
	acquirer Acquirer
	notifier notify.Notifier
	logger   *zap.Logger
	deviceID string
	stream   Stream
}

func NewCamera(acquirer Acquirer, notifier notify.Notifier, logger *zap.Logger) *Camera {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Camera{
		acquirer: acquirer,
		notifier: notify.OrNop(notifier),
		logger:   logger,
	}
}

// Enable opens the device. Failure is reported and leaves the camera off.
func (c *Camera) Enable(ctx context.Context, deviceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open(ctx, deviceID)
}

func (c *Camera) open(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return ErrNoDevice
	}
	if c.stream != nil && c.deviceID == deviceID {
		return nil
	}
	c.release()

	stream, err := c.acquirer.Acquire(ctx, deviceID)
	if err != nil {
		c.logger.Warn("camera acquisition failed", zap.String("device", deviceID), zap.Error(err))
		c.notifier.Notify(notify.Warning("Error", "Unable to access cameras. Please check permissions."))
		return fmt.Errorf("%w: %w", ErrDeviceAccess, err)
	}
	c.stream = stream
	c.deviceID = deviceID
	return nil
}

func (c *Camera) release() {
	if c.stream == nil {
		return
	}
	if err := c.stream.Close(); err != nil {
		c.logger.Warn("closing camera stream", zap.String("device", c.deviceID), zap.Error(err))
	}
	c.stream = nil
}

func (c *Camera) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release()
}

func (c *Camera) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream != nil
}

// Switch records deviceID as the camera to use and re-acquires it when the
// camera is on.
func (c *Camera) Switch(ctx context.Context, deviceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		c.deviceID = deviceID
		return nil
	}
	return c.open(ctx, deviceID)
}

// DeviceID is the device the camera uses or last used.
func (c *Camera) DeviceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceID
}
