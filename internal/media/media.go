// Package media manages exclusive leases on the camera and microphone used by
// a mock interview. A lease is granted only after a permission decision.
package media

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrPermissionDenied is returned when access to the devices is refused.
	ErrPermissionDenied = errors.New("camera and microphone permission denied")
	// ErrDeviceBusy is returned when another lease already holds the devices.
	ErrDeviceBusy = errors.New("camera and microphone already in use")
)

// Stream is a held camera and microphone lease.
type Stream interface {
	ID() string
	// Release frees the devices. Calling it more than once is safe.
	Release() error
}

// Acquirer requests exclusive access to the devices.
type Acquirer interface {
	Acquire(ctx context.Context) (Stream, error)
}

// PermissionFunc decides whether device access is granted.
type PermissionFunc func(ctx context.Context) error

// Grant always allows access.
func Grant(context.Context) error { return nil }

// Deny always refuses access.
func Deny(context.Context) error { return ErrPermissionDenied }

// Devices is the single set of capture devices of an installation.
type Devices struct {
	permit PermissionFunc

	mu     sync.Mutex
	holder string
}

// NewDevices returns a device set gated by permit. A nil permit grants access.
func NewDevices(permit PermissionFunc) *Devices {
	if permit == nil {
		permit = Grant
	}
	return &Devices{permit: permit}
}

// Acquire asks for permission and then takes the lease.
func (d *Devices) Acquire(ctx context.Context) (Stream, error) {
	return d.AcquireWith(ctx, d.permit)
}

// AcquireWith takes the lease using permit instead of the default decision.
func (d *Devices) AcquireWith(ctx context.Context, permit PermissionFunc) (Stream, error) {
	if err := permit(ctx); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.holder != "" {
		return nil, ErrDeviceBusy
	}
	d.holder = uuid.New().String()
	return &lease{id: d.holder, devices: d}, nil
}

// Held returns the number of outstanding leases, zero or one.
func (d *Devices) Held() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.holder == "" {
		return 0
	}
	return 1
}

func (d *Devices) release(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.holder == id {
		d.holder = ""
	}
}

type lease struct {
	id      string
	devices *Devices
	once    sync.Once
}

func (l *lease) ID() string { return l.id }

func (l *lease) Release() error {
	l.once.Do(func() { l.devices.release(l.id) })
	return nil
}

// WithPermission returns an Acquirer that takes leases from d using permit.
func (d *Devices) WithPermission(permit PermissionFunc) Acquirer {
	return acquirerFunc(func(ctx context.Context) (Stream, error) {
		return d.AcquireWith(ctx, permit)
	})
}

type acquirerFunc func(ctx context.Context) (Stream, error)

func (f acquirerFunc) Acquire(ctx context.Context) (Stream, error) { return f(ctx) }
