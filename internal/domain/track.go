package domain

import (
	"path/filepath"
	"strings"
)

// Track is a single playable file on local storage.
type Track struct {
	Path        string
	DisplayName string
}

// NewTrack creates a track whose display name is the file name without
// its extension.
func NewTrack(path string) Track {
	base := filepath.Base(path)
	return Track{
		Path:        path,
		DisplayName: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// PlaybackState is the transport state owned by the playback controller.
type PlaybackState struct {
	TrackIndex          int
	Playing             bool
	Volume              float64
	ConsecutiveFailures int
}
