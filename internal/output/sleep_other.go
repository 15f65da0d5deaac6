//go:build !linux

package output

import "context"

// WatchSleep is a no-op on non-Linux platforms.
func WatchSleep(ctx context.Context, _ *Device) error {
	<-ctx.Done()
	return nil
}
