// Package library finds the playable files on local storage.
package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"

	"github.com/hammamikhairi/valplayer/internal/domain"
	"github.com/hammamikhairi/valplayer/internal/logger"
)

// Compile-time interface check.
var _ domain.TrackSource = (*Scanner)(nil)

// Extensions lists the file types the audio backend can decode.
var Extensions = []string{".mp3", ".wav", ".ogg", ".flac"}

// Option configures the scanner.
type Option func(*Scanner)

// WithTags enables display names read from embedded metadata.
func WithTags(enabled bool) Option {
	return func(s *Scanner) {
		s.tags = enabled
	}
}

// Scanner walks music directories.
type Scanner struct {
	log  *logger.Logger
	tags bool
}

// NewScanner creates a scanner. Tag reading is on by default.
func NewScanner(log *logger.Logger, opts ...Option) *Scanner {
	s := &Scanner{log: log, tags: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the sorted tracks under primary, or under fallback when
// primary holds none. Both directories are created if absent. An empty
// result is not an error; callers render the empty-library screen.
func (s *Scanner) List(primary, fallback string) ([]domain.Track, error) {
	tracks := s.scan(primary)
	if len(tracks) == 0 && fallback != "" {
		s.log.Warn("no tracks in %s, trying fallback %s", primary, fallback)
		tracks = s.scan(fallback)
		if len(tracks) > 0 {
			s.log.Info("loaded %d tracks from fallback directory", len(tracks))
		}
	}

	var mkErr error
	for _, dir := range []string{primary, fallback} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.log.Warn("creating music directory %s: %v", dir, err)
			mkErr = fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if len(tracks) == 0 {
		s.log.Warn("no music files found in %s or %s", primary, fallback)
		return nil, mkErr
	}
	return tracks, nil
}

func (s *Scanner) scan(dir string) []domain.Track {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		s.log.Warn("music directory %s is not accessible", dir)
		return nil
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Debug("skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && Playable(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		s.log.Error("scanning %s: %v", dir, err)
		return nil
	}

	sort.Strings(paths)
	tracks := make([]domain.Track, 0, len(paths))
	for _, p := range paths {
		tracks = append(tracks, s.track(p))
	}
	s.log.Info("loaded %d tracks from %s", len(tracks), dir)
	return tracks
}

func (s *Scanner) track(path string) domain.Track {
	t := domain.NewTrack(path)
	if !s.tags {
		return t
	}
	if name, ok := taggedName(path); ok {
		t.DisplayName = name
	}
	return t
}

// taggedName builds "Artist - Title" from embedded metadata.
func taggedName(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return "", false
	}
	title := strings.TrimSpace(m.Title())
	if title == "" {
		return "", false
	}
	if artist := strings.TrimSpace(m.Artist()); artist != "" {
		return artist + " - " + title, true
	}
	return title, true
}

// Playable reports whether path has a supported audio extension.
func Playable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
