package api

import (
	"context"

	"github.com/carverauto/pulse/pkg/kv"
)

// Bus is the subscribe side of the shared store used by the live stream.
type Bus interface {
	Subscribe(ctx context.Context, topic string) (kv.Subscription, error)
}
