package media

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

const (
	videoClockRate = 90000
	audioClockRate = 48000
	videoInterval  = time.Second / 30
	audioInterval  = 20 * time.Millisecond
	videoPayload   = 1000
	audioPayload   = 120
)

// Synthetic is a Source producing generated VP8 and Opus sized RTP packets.
// It stands in for a camera and microphone on machines without either.
type Synthetic struct {
	// StreamID labels the produced tracks.
	StreamID string
	// Video and Audio select which tracks are produced.
	Video bool
	Audio bool
}

// NewSynthetic returns a source with both video and audio.
func NewSynthetic(streamID string) *Synthetic {
	return &Synthetic{StreamID: streamID, Video: true, Audio: true}
}

// Acquire implements Source.
func (s *Synthetic) Acquire(ctx context.Context) (*Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.Video && !s.Audio {
		return nil, fmt.Errorf("synthetic source: no tracks requested")
	}

	streamID := s.StreamID
	if streamID == "" {
		streamID = "meshroom"
	}

	var tracks []Track
	if s.Video {
		t, err := newGeneratedTrack(KindVideo, webrtc.MimeTypeVP8, videoClockRate, 0, streamID, videoInterval, videoPayload, videoClockRate/30)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	if s.Audio {
		t, err := newGeneratedTrack(KindAudio, webrtc.MimeTypeOpus, audioClockRate, 2, streamID, audioInterval, audioPayload, audioClockRate/50)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}

	genCtx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, t := range tracks {
		wg.Add(1)
		go func(t *generatedTrack) {
			defer wg.Done()
			t.run(genCtx)
		}(t.(*generatedTrack))
	}

	return NewStream(tracks, func() {
		cancel()
		wg.Wait()
	}), nil
}

type generatedTrack struct {
	kind      Kind
	local     *webrtc.TrackLocalStaticRTP
	interval  time.Duration
	payload   int
	tsStep    uint32
	enabled   atomic.Bool
	sequence  uint16
	timestamp uint32
}

func newGeneratedTrack(kind Kind, mime string, clockRate uint32, channels uint16, streamID string, interval time.Duration, payload int, tsStep uint32) (*generatedTrack, error) {
	local, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: mime, ClockRate: clockRate, Channels: channels},
		string(kind), streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("create %s track: %w", kind, err)
	}
	t := &generatedTrack{kind: kind, local: local, interval: interval, payload: payload, tsStep: tsStep}
	t.enabled.Store(true)
	return t, nil
}

func (t *generatedTrack) ID() string               { return t.local.ID() }
func (t *generatedTrack) Kind() Kind               { return t.kind }
func (t *generatedTrack) Local() webrtc.TrackLocal { return t.local }
func (t *generatedTrack) SetEnabled(enabled bool)  { t.enabled.Store(enabled) }
func (t *generatedTrack) Enabled() bool            { return t.enabled.Load() }

func (t *generatedTrack) run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	buf := make([]byte, t.payload)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// the clock keeps running while muted so the receiver sees a gap
		t.timestamp += t.tsStep
		if !t.Enabled() {
			continue
		}

		_, _ = rand.Read(buf)
		t.sequence++
		pkt := &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				Marker:         t.kind == KindVideo,
				SequenceNumber: t.sequence,
				Timestamp:      t.timestamp,
			},
			Payload: buf,
		}
		// no bound peers yet is not an error worth reporting
		_ = t.local.WriteRTP(pkt)
	}
}
