// AngelaMos | 2026
// ping.go

package core

import (
	"context"
	"fmt"
	"time"
)

const pingTimeout = 5 * time.Second

// pingWithin runs ping under pingTimeout and names the backend in the
// returned error.
func pingWithin(ctx context.Context, backend string, ping func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := ping(ctx); err != nil {
		return fmt.Errorf("%s unreachable: %w", backend, err)
	}
	return nil
}
