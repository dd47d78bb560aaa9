package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/tcolgate/mp3"

	"glossaudio/internal/config"
	"glossaudio/internal/media/ffprobe"
	"glossaudio/internal/services"
)

// Prober returns the playback length of clip bytes in whole seconds.
type Prober interface {
	Duration(ctx context.Context, data []byte) (int, error)
}

// New returns the prober selected by the configuration.
func New(cfg *config.Config) (Prober, error) {
	if cfg == nil {
		return Native{}, nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Probe.Backend)) {
	case "", config.ProbeNative:
		return Native{}, nil
	case config.ProbeFFprobe:
		return FFprobe{Binary: cfg.FFprobeBinary()}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "probe", "select backend", cfg.Probe.Backend, nil)
	}
}

// Round converts seconds to the whole-second value stored on Media documents.
func Round(seconds float64) int {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	return int(math.Round(seconds))
}

// Native decodes MPEG audio frames without external tools.
type Native struct{}

const ctxCheckInterval = 256

// Duration sums the frame durations of an MPEG audio stream. Trailing bytes
// that do not decode after at least one good frame are ignored.
func (Native) Duration(ctx context.Context, data []byte) (int, error) {
	total, frames, err := decodeFrames(ctx, data)
	if err != nil {
		return 0, err
	}
	if frames == 0 {
		return 0, services.Wrap(services.ErrProbeFailed, "probe", "decode", "no MPEG audio frames found", nil)
	}
	return Round(total.Seconds()), nil
}

func decodeFrames(ctx context.Context, data []byte) (time.Duration, int, error) {
	decoder := mp3.NewDecoder(bytes.NewReader(data))
	var (
		frame   mp3.Frame
		skipped int
		total   time.Duration
		frames  int
	)
	for {
		if frames%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, 0, err
			}
		}
		if err := decoder.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || frames > 0 {
				return total, frames, nil
			}
			return 0, 0, services.Wrap(services.ErrProbeFailed, "probe", "decode", "", err)
		}
		total += frame.Duration()
		frames++
	}
}

// FFprobe measures duration with an external ffprobe binary.
type FFprobe struct {
	Binary string
	// TempDir holds the scratch copy of the clip; empty uses os.TempDir.
	TempDir string
}

// Duration writes data to a scratch file and reads its duration from ffprobe.
func (p FFprobe) Duration(ctx context.Context, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, services.Wrap(services.ErrProbeFailed, "probe", "ffprobe", "empty clip", nil)
	}
	file, err := os.CreateTemp(p.TempDir, "glossaudio-*.mp3")
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "probe", "ffprobe", "create scratch file", err)
	}
	path := file.Name()
	defer os.Remove(path)

	if _, err := file.Write(data); err != nil {
		file.Close()
		return 0, services.Wrap(services.ErrExternalTool, "probe", "ffprobe", "write scratch file", err)
	}
	if err := file.Close(); err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "probe", "ffprobe", "close scratch file", err)
	}

	result, err := ffprobe.Inspect(ctx, p.Binary, path)
	if err != nil {
		return 0, services.Wrap(services.ErrProbeFailed, "probe", "ffprobe", "", err)
	}
	if result.AudioStreamCount() == 0 {
		return 0, services.Wrap(services.ErrProbeFailed, "probe", "ffprobe", "no audio stream", nil)
	}
	seconds := result.DurationSeconds()
	if seconds <= 0 {
		return 0, services.Wrap(services.ErrProbeFailed, "probe", "ffprobe", fmt.Sprintf("no duration reported for %s codec", result.AudioCodec()), nil)
	}
	return Round(seconds), nil
}
