//go:build !linux

package mpris

// Adapter does nothing outside Linux.
type Adapter struct{}

func New(Player) (*Adapter, error) { return &Adapter{}, nil }

func (a *Adapter) Close() error { return nil }
