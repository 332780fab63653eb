package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	ffmpegbin "github.com/mgpai22/subburn/internal/ffmpeg"
)

// video file information
type Info struct {
	Path      string
	Duration  float64 // seconds
	Width     int
	Height    int
	FrameRate float64
	// display rotation in degrees; Width and Height are already swapped
	// for quarter turns, matching the frames ffmpeg decodes
	Rotation  int
	Codec     string
	Size      int64
	Audio     *AudioStream // nil when the file has no audio
}

type AudioStream struct {
	Codec      string
	SampleRate int
	Channels   int
	BitRate    int64
	Duration   float64
}

func (i *Info) HasAudio() bool {
	return i.Audio != nil
}

// ffprobe JSON output
type ffprobeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
		SampleRate   string `json:"sample_rate"`
		Channels     int    `json:"channels"`
		BitRate      string `json:"bit_rate"`
		Duration     string `json:"duration"`
		Tags         struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
		SideDataList []struct {
			Rotation float64 `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
}

// Probe reads stream information of a media file with ffprobe.
func Probe(ctx context.Context, path string) (*Info, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("video file not found: %w", err)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseProbeOutput(out.Bytes())
	if err != nil {
		return nil, err
	}
	info.Path = path
	return info, nil
}

func parseProbeOutput(data []byte) (*Info, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{
		Duration: parseFloat(probe.Format.Duration),
		Size:     int64(parseFloat(probe.Format.Size)),
	}

	foundVideo := false
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if foundVideo {
				continue
			}
			foundVideo = true
			info.Codec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			rotation := parseFloat(s.Tags.Rotate)
			for _, sd := range s.SideDataList {
				if sd.Rotation != 0 {
					rotation = sd.Rotation
				}
			}
			info.Rotation = normalizeRotation(rotation)
			if info.Rotation%180 == 90 {
				info.Width, info.Height = info.Height, info.Width
			}
			info.FrameRate = parseRate(s.AvgFrameRate)
			if info.FrameRate == 0 {
				info.FrameRate = parseRate(s.RFrameRate)
			}
			if info.Duration == 0 {
				info.Duration = parseFloat(s.Duration)
			}
		case "audio":
			if info.Audio != nil {
				continue
			}
			info.Audio = &AudioStream{
				Codec:      s.CodecName,
				SampleRate: int(parseFloat(s.SampleRate)),
				Channels:   s.Channels,
				BitRate:    int64(parseFloat(s.BitRate)),
				Duration:   parseFloat(s.Duration),
			}
		}
	}

	if !foundVideo {
		return nil, fmt.Errorf("no video stream found")
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("invalid video dimensions %dx%d", info.Width, info.Height)
	}
	return info, nil
}

// folds a rotation into [0, 360)
func normalizeRotation(deg float64) int {
	r := int(math.Round(deg)) % 360
	if r < 0 {
		r += 360
	}
	return r
}

// parses "30000/1001" or "25"
func parseRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")
	if !found {
		return parseFloat(rate)
	}
	n, d := parseFloat(num), parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv",
		".webm", ".m4v", ".mpeg", ".mpg", ".3gp":
		return true
	default:
		return false
	}
}
