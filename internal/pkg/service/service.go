// Package service controls services managed by the host's init system.
package service

import (
	"context"
)

// Manager starts, stops, and inspects services by name.
type Manager interface {
	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string) error
	Restart(ctx context.Context, name string) error
	Running(ctx context.Context, name string) (bool, error)
}

// Unit is a single named service.
type Unit struct {
	Manager Manager
	Name    string
}

// NewUnit returns a new Unit.
func NewUnit(m Manager, name string) *Unit {
	return &Unit{Manager: m, Name: name}
}

// Start starts the service.
func (u *Unit) Start(ctx context.Context) error { return u.Manager.Start(ctx, u.Name) }

// Stop stops the service.
func (u *Unit) Stop(ctx context.Context) error { return u.Manager.Stop(ctx, u.Name) }

// Restart restarts the service.
func (u *Unit) Restart(ctx context.Context) error { return u.Manager.Restart(ctx, u.Name) }

// Running returns true if the service is running.
func (u *Unit) Running(ctx context.Context) (bool, error) { return u.Manager.Running(ctx, u.Name) }
