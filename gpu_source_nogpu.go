//go:build nogpu

package quadcast

import (
	"fmt"
	"log/slog"
)

// openSource always fails: the package was built without GPU support.
func openSource(*rendererOptions) (frameSource, error) {
	return nil, fmt.Errorf("%w: built with the nogpu tag", ErrNoGPU)
}

func propagateLogger(*slog.Logger) {}
