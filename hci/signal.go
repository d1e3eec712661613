package hci

import (
	"context"

	"github.com/go-ble/ble"
)

// WrapContextWithSigHandler calls cancel on SIGINT or SIGTERM.
func WrapContextWithSigHandler(ctx context.Context, cancel func()) context.Context {
	return ble.WithSigHandler(ctx, cancel)
}
