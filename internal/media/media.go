// Package media provides the local tracks a client sends to its peers.
package media

import (
	"context"
	"sync"

	"github.com/pion/webrtc/v4"
)

// Kind is the media kind of a track.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Track is a local track shared read-only by every peer session. Disabling
// a track stops its samples without renegotiation.
type Track interface {
	ID() string
	Kind() Kind
	Local() webrtc.TrackLocal
	SetEnabled(enabled bool)
	Enabled() bool
}

// Source acquires local media. Acquire fails when the device is missing or
// access is refused.
type Source interface {
	Acquire(ctx context.Context) (*Stream, error)
}

// Stream is a set of tracks acquired together and released together.
type Stream struct {
	tracks   []Track
	stop     func()
	stopOnce sync.Once
}

// NewStream groups tracks. stop, if non-nil, runs once on Stop.
func NewStream(tracks []Track, stop func()) *Stream {
	return &Stream{tracks: tracks, stop: stop}
}

// Tracks returns all tracks of the stream.
func (s *Stream) Tracks() []Track {
	return s.tracks
}

// TracksOf returns the tracks of one kind.
func (s *Stream) TracksOf(kind Kind) []Track {
	var out []Track
	for _, t := range s.tracks {
		if t.Kind() == kind {
			out = append(out, t)
		}
	}
	return out
}

// Stop releases the underlying device. Safe to call more than once.
func (s *Stream) Stop() {
	s.stopOnce.Do(func() {
		if s.stop != nil {
			s.stop()
		}
	})
}
