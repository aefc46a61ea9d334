package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"github.com/hammamikhairi/valplayer/internal/domain"
	"github.com/hammamikhairi/valplayer/internal/library"
)

// ResampleQuality is passed to beep.Resample when a file's rate differs
// from the output rate.
const ResampleQuality = 4

// decode picks a decoder by file extension.
func decode(ext string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case ".mp3":
		return mp3.Decode(f)
	case ".wav":
		return wav.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	case ".flac":
		return flac.Decode(f)
	}
	return nil, beep.Format{}, errUnsupported
}

var errUnsupported = errors.New("unsupported format")

// stream is a decoded file resampled to the output rate. Closing it
// closes the decoder, which closes the file.
type stream struct {
	beep.Streamer
	source beep.StreamSeekCloser
}

func (s *stream) Close() error { return s.source.Close() }

// openStream decodes path by its extension and resamples it to rate.
func openStream(path string, rate beep.SampleRate) (*stream, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !library.Playable(path) {
		return nil, fmt.Errorf("%s: %w: %v", path, domain.ErrPlaybackFailure, errUnsupported)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, domain.ErrPlaybackFailure, err)
	}
	src, format, err := decode(ext, f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w: %v", path, domain.ErrPlaybackFailure, err)
	}

	var s beep.Streamer = src
	if format.SampleRate != rate {
		s = beep.Resample(ResampleQuality, format.SampleRate, rate, src)
	}
	return &stream{Streamer: s, source: src}, nil
}

// pcmReader turns a stereo beep stream into signed 16-bit little-endian
// PCM for oto.
type pcmReader struct {
	s   beep.Streamer
	buf [][2]float64
}

func newPCMReader(s beep.Streamer) *pcmReader {
	return &pcmReader{s: s}
}

const bytesPerFrame = 4

func (r *pcmReader) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	buf := r.buf[:frames]

	n, ok := r.s.Stream(buf)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(p[i*4:], uint16(toInt16(buf[i][0])))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(toInt16(buf[i][1])))
	}
	if !ok && n == 0 {
		if err := r.s.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	return n * bytesPerFrame, nil
}

func toInt16(v float64) int16 {
	switch {
	case v >= 1:
		return 32767
	case v <= -1:
		return -32768
	}
	return int16(v * 32767)
}
