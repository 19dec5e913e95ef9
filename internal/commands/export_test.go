package commands

import (
	"context"

	"chaintodo/internal/config"
	"chaintodo/internal/mirror"
)

// SetMirrorTarget replaces the mirror target factory until the returned
// function is called.
func SetMirrorTarget(target mirror.Target, err error) (restore func()) {
	prev := newMirrorTarget
	newMirrorTarget = func(ctx context.Context, cfg *config.Config) (mirror.Target, error) {
		return target, err
	}
	return func() { newMirrorTarget = prev }
}
