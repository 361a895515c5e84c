package service

import (
	"context"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus" // systemd D-Bus API.
	"github.com/pkg/errors"                 // Wrap errors with stacktrace.
	"go.uber.org/zap"                       // Logging.
)

// DBusConn is the subset of *dbus.Conn used by Systemd.
type DBusConn interface {
	StartUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	StopUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	RestartUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	ListUnitsByNamesContext(ctx context.Context, units []string) ([]dbus.UnitStatus, error)
	Close()
}

var _ DBusConn = (*dbus.Conn)(nil)

// Systemd is a Manager that talks to systemd over D-Bus.
type Systemd struct {
	dial   func(ctx context.Context) (DBusConn, error)
	logger *zap.Logger
}

// NewSystemd returns a new Systemd that connects to the system bus.
func NewSystemd(logger *zap.Logger) *Systemd {
	return NewSystemdWithDialer(logger, func(ctx context.Context) (DBusConn, error) {
		return dbus.NewWithContext(ctx)
	})
}

// NewSystemdWithDialer returns a new Systemd that opens
// D-Bus connections with dial.
func NewSystemdWithDialer(logger *zap.Logger, dial func(ctx context.Context) (DBusConn, error)) *Systemd {
	return &Systemd{dial: dial, logger: logger}
}

// unitName adds the .service suffix if name doesn't have a unit type.
func unitName(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return name + ".service"
}

type jobFunc func(ctx context.Context, name string, mode string, ch chan<- string) (int, error)

// job runs a systemd job and waits for its result.
func (s *Systemd) job(ctx context.Context, verb, name string, f func(DBusConn) jobFunc) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return errors.Wrap(err, "error connecting to systemd")
	}
	defer conn.Close()

	unit := unitName(name)
	ch := make(chan string, 1)
	if _, err := f(conn)(ctx, unit, "replace", ch); err != nil {
		return errors.Wrapf(err, "error requesting %s of %s", verb, unit)
	}
	select {
	case result := <-ch:
		if result != "done" {
			return errors.Errorf("%s of %s finished with result %q", verb, unit, result)
		}
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "waiting for %s of %s", verb, unit)
	}
	s.logger.Debug("systemd job done", zap.String("job", verb), zap.String("unit", unit))
	return nil
}

// Start implements Manager.
func (s *Systemd) Start(ctx context.Context, name string) error {
	return s.job(ctx, "start", name, func(c DBusConn) jobFunc { return c.StartUnitContext })
}

// Stop implements Manager.
func (s *Systemd) Stop(ctx context.Context, name string) error {
	return s.job(ctx, "stop", name, func(c DBusConn) jobFunc { return c.StopUnitContext })
}

// Restart implements Manager.
func (s *Systemd) Restart(ctx context.Context, name string) error {
	return s.job(ctx, "restart", name, func(c DBusConn) jobFunc { return c.RestartUnitContext })
}

// Running implements Manager. A unit is running if it's loaded and active.
func (s *Systemd) Running(ctx context.Context, name string) (bool, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return false, errors.Wrap(err, "error connecting to systemd")
	}
	defer conn.Close()

	unit := unitName(name)
	units, err := conn.ListUnitsByNamesContext(ctx, []string{unit})
	if err != nil {
		return false, errors.Wrapf(err, "error listing %s", unit)
	}
	for _, u := range units {
		if u.Name == unit {
			return u.LoadState == "loaded" && u.ActiveState == "active", nil
		}
	}
	return false, nil
}

var _ Manager = (*Systemd)(nil)
