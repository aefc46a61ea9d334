package player

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/hammamikhairi/valplayer/internal/domain"
	"github.com/hammamikhairi/valplayer/internal/logger"
)

// fakeBackend records calls and fails loads for configured paths.
type fakeBackend struct {
	failing  map[string]bool
	failAll  bool
	loads    []string
	plays    int
	pauses   int
	resumes  int
	volume   float64
	busy     bool
	loadedAt string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{failing: map[string]bool{}}
}

func (f *fakeBackend) Load(path string) error {
	f.loads = append(f.loads, path)
	if f.failAll || f.failing[path] {
		f.busy = false
		return fmt.Errorf("decode %s: bad header", path)
	}
	f.loadedAt = path
	return nil
}

func (f *fakeBackend) Play() error { f.plays++; f.busy = true; return nil }
func (f *fakeBackend) Pause() { f.pauses++; f.busy = false }
func (f *fakeBackend) Resume() { f.resumes++; f.busy = true }
func (f *fakeBackend) SetVolume(v float64) { f.volume = v }
func (f *fakeBackend) IsBusy() bool { return f.busy }
func (f *fakeBackend) Close() error { return nil }

func makeTracks(n int) []domain.Track {
	tracks := make([]domain.Track, n)
	for i := range tracks {
		tracks[i] = domain.NewTrack(fmt.Sprintf("/music/%02d.mp3", i))
	}
	return tracks
}

func setupController(t *testing.T, n int, opts ...Option) (*Controller, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	return New(backend, makeTracks(n), logger.New(logger.LevelOff, nil), opts...), backend
}

func TestAdjustVolumeClamps(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		delta float64
		want  float64
	}{
		{"step up", 0.45, 0.05, 0.5},
		{"clamp high", 0.98, 0.05, 1.0},
		{"clamp low", 0.02, -0.05, 0.0},
		{"step down", 0.5, -0.05, 0.45},
		{"already max", 1.0, 0.05, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, backend := setupController(t, 3, WithVolume(tt.start))
			c.AdjustVolume(tt.delta)
			got := c.State().Volume
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("volume = %f, want %f", got, tt.want)
			}
			if backend.volume != got {
				t.Fatalf("backend volume %f not propagated (controller %f)", backend.volume, got)
			}
		})
	}
}

func TestVolumeStaysBoundedUnderRepeatedPresses(t *testing.T) {
	c, _ := setupController(t, 1)
	for i := 0; i < 40; i++ {
		c.AdjustVolume(0.05)
		if v := c.State().Volume; v < 0 || v > 1 {
			t.Fatalf("volume %f out of range", v)
		}
	}
	for i := 0; i < 40; i++ {
		c.AdjustVolume(-0.05)
		if v := c.State().Volume; v < 0 || v > 1 {
			t.Fatalf("volume %f out of range", v)
		}
	}
	if c.State().Volume != 0 {
		t.Fatalf("expected volume floor 0, got %f", c.State().Volume)
	}
}

func TestNextPreviousWrap(t *testing.T) {
	c, _ := setupController(t, 5)

	if err := c.Previous(); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if got := c.State().TrackIndex; got != 4 {
		t.Fatalf("previous from 0 = %d, want 4", got)
	}
	if err := c.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if got := c.State().TrackIndex; got != 0 {
		t.Fatalf("next from 4 = %d, want 0", got)
	}

	for i := 0; i < 7; i++ {
		c.Next()
	}
	for i := 0; i < 7; i++ {
		c.Previous()
	}
	if got := c.State().TrackIndex; got != 0 {
		t.Fatalf("next/previous not inverse: index %d", got)
	}
}

func TestNextWhilePausedDoesNotPlay(t *testing.T) {
	c, backend := setupController(t, 3)

	if err := c.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if len(backend.loads) != 0 || c.Playing() {
		t.Fatalf("next while stopped should not load (loads=%v)", backend.loads)
	}
}

func TestNextWhilePlayingRestarts(t *testing.T) {
	c, backend := setupController(t, 3)
	if err := c.PlayCurrent(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if err := c.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if !c.Playing() {
		t.Fatal("should still be playing")
	}
	want := []string{"/music/00.mp3", "/music/01.mp3"}
	if fmt.Sprint(backend.loads) != fmt.Sprint(want) {
		t.Fatalf("loads = %v, want %v", backend.loads, want)
	}
}

func TestAllTracksFailing(t *testing.T) {
	c, backend := setupController(t, 3)
	backend.failAll = true

	err := c.PlayCurrent()
	if !errors.Is(err, domain.ErrMediaUnavailable) {
		t.Fatalf("expected ErrMediaUnavailable, got %v", err)
	}
	if len(backend.loads) != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d (%v)", len(backend.loads), backend.loads)
	}
	if c.Playing() {
		t.Fatal("playing should be false after exhausting tracks")
	}
	if got := c.State().ConsecutiveFailures; got != 3 {
		t.Fatalf("consecutive failures = %d, want 3", got)
	}
}

func TestFailingTrackIsSkipped(t *testing.T) {
	c, backend := setupController(t, 4)
	backend.failing["/music/00.mp3"] = true
	backend.failing["/music/01.mp3"] = true

	if err := c.PlayCurrent(); err != nil {
		t.Fatalf("play: %v", err)
	}
	st := c.State()
	if st.TrackIndex != 2 || !st.Playing {
		t.Fatalf("expected playing track 2, got %+v", st)
	}
	if st.ConsecutiveFailures != 0 {
		t.Fatalf("failures should reset on success, got %d", st.ConsecutiveFailures)
	}
	if len(backend.loads) != 3 {
		t.Fatalf("expected 3 attempts, got %v", backend.loads)
	}
}

func TestTogglePause(t *testing.T) {
	c, backend := setupController(t, 2)

	// Nothing loaded: toggling starts playback.
	if err := c.TogglePause(); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !c.Playing() || len(backend.loads) != 1 {
		t.Fatalf("expected playback to start, loads=%v", backend.loads)
	}

	c.TogglePause()
	if c.Playing() || backend.pauses != 1 {
		t.Fatalf("expected pause, playing=%v pauses=%d", c.Playing(), backend.pauses)
	}

	c.TogglePause()
	if !c.Playing() || backend.resumes != 1 || len(backend.loads) != 1 {
		t.Fatalf("expected resume in place, resumes=%d loads=%v", backend.resumes, backend.loads)
	}
}

func TestToggleAfterSkipWhilePausedStartsNewTrack(t *testing.T) {
	c, backend := setupController(t, 3)
	c.PlayCurrent()
	c.TogglePause()
	c.Next()

	if err := c.TogglePause(); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if backend.resumes != 0 {
		t.Fatal("should not resume the stale track")
	}
	if backend.loadedAt != "/music/01.mp3" {
		t.Fatalf("expected track 1 loaded, got %s", backend.loadedAt)
	}
}

func TestOnTickAutoAdvance(t *testing.T) {
	c, backend := setupController(t, 3)
	c.PlayCurrent()

	if err := c.OnTick(false); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if c.State().TrackIndex != 0 {
		t.Fatal("should not advance while track is running")
	}

	if err := c.OnTick(true); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if c.State().TrackIndex != 1 || !c.Playing() {
		t.Fatalf("expected auto-advance to track 1, got %+v", c.State())
	}
	if backend.loadedAt != "/music/01.mp3" {
		t.Fatalf("backend has %s", backend.loadedAt)
	}

	c.TogglePause()
	c.OnTick(true)
	if c.State().TrackIndex != 1 {
		t.Fatal("paused player must not auto-advance")
	}
}

func TestEmptyLibrary(t *testing.T) {
	c, backend := setupController(t, 0)

	if err := c.PlayCurrent(); !errors.Is(err, domain.ErrMediaUnavailable) {
		t.Fatalf("expected ErrMediaUnavailable, got %v", err)
	}
	for _, op := range []func() error{c.Next, c.Previous, c.TogglePause} {
		if err := op(); err != nil {
			t.Fatalf("transport op on empty library: %v", err)
		}
	}
	if err := c.OnTick(true); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if _, ok := c.Current(); ok {
		t.Fatal("Current should report no track")
	}
	if len(backend.loads) != 0 {
		t.Fatalf("unexpected loads %v", backend.loads)
	}
}
