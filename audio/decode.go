// ABOUTME: Selects a beep decoder by file extension and opens audio files with it
// ABOUTME: Formats without a decoder are rejected with ErrUnsupportedFormat

package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// ErrUnsupportedFormat is returned for files no decoder understands
var ErrUnsupportedFormat = errors.New("unsupported audio format")

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

// m4a is listed by the scanner but has no pure Go decoder, so it is absent here
var decoders = map[string]decodeFunc{
	".mp3":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) },
	".wav":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
	".flac": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) },
	".ogg":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
}

// Supported reports whether a decoder exists for path's extension
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]

	return ok
}

// decode opens path and returns a seekable stream over its samples.
// Closing the stream closes the file.
func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))

	decoder, ok := decoders[ext]
	if !ok {
		return nil, beep.Format{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}

	f, err := os.Open(filepath.FromSlash(path))
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to open audio file: %w", err)
	}

	stream, format, err := decoder(f)
	if err != nil {
		_ = f.Close()

		return nil, beep.Format{}, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	return stream, format, nil
}
