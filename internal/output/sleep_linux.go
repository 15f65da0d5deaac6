//go:build linux

package output

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"
)

const (
	logindPath      = "/org/freedesktop/login1"
	logindInterface = "org.freedesktop.login1.Manager"
	logindSignal    = "PrepareForSleep"
)

// WatchSleep interrupts the device's audio graphs whenever logind announces
// the machine is about to sleep. Blocks until ctx is done.
func WatchSleep(ctx context.Context, d *Device) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("connect system bus: %w", err)
	}
	defer conn.Close()

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(logindPath),
		dbus.WithMatchInterface(logindInterface),
		dbus.WithMatchMember(logindSignal),
	); err != nil {
		return fmt.Errorf("match %s: %w", logindSignal, err)
	}

	signals := make(chan *dbus.Signal, 4)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok {
				return nil
			}
			if sleeping, ok := prepareForSleep(sig); ok && sleeping {
				log.Info().Msg("system going to sleep, interrupting audio")
				d.Interrupt()
			}
		}
	}
}

func prepareForSleep(sig *dbus.Signal) (sleeping, ok bool) {
	if sig == nil || sig.Name != logindInterface+"."+logindSignal || len(sig.Body) != 1 {
		return false, false
	}
	sleeping, ok = sig.Body[0].(bool)
	return sleeping, ok
}
