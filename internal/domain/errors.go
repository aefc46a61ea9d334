package domain

import "errors"

// Sentinel errors used across layers.
var (
	// ErrMediaUnavailable means no playable track exists: the library is
	// empty, or every track failed to start in one pass.
	ErrMediaUnavailable = errors.New("no playable media")
	ErrPlaybackFailure  = errors.New("playback failure")
	ErrAssetLoad        = errors.New("asset load failure")
	// ErrHardwareFault is fatal to the main loop and triggers shutdown.
	ErrHardwareFault = errors.New("hardware fault")
)
