// Package whisper wraps the external binaries the retry worker shells out
// to: ffmpeg for audio span extraction and a whisper-compatible CLI for
// re-transcription. Nothing here performs speech-to-text in process.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// FFmpegCommand is the default ffmpeg executable name.
const FFmpegCommand = "ffmpeg"

// Config describes the external transcriber invocation.
type Config struct {
	// Command is the transcriber executable, e.g. "whisper-cli".
	Command string
	Model   string
	// Language for transcription; empty means auto-detect.
	Language string
}

// Service invokes ffmpeg and the transcriber CLI.
type Service struct {
	cfg           Config
	ffmpegBinary  string
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewService creates a service with the given configuration.
func NewService(cfg Config, ffmpegBinary string) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	return &Service{cfg: cfg, ffmpegBinary: ffmpegBinary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Language returns the configured language, or "auto" for auto-detection.
func (s *Service) Language() string {
	if s.cfg.Language == "" {
		return "auto"
	}
	return s.cfg.Language
}

func (s *Service) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, detail)
	}
	return output, nil
}

// ExtractSegment cuts [start, start+duration) from a media file into an
// opus audio clip suitable for re-transcription.
func (s *Service) ExtractSegment(ctx context.Context, source string, start, duration float64, dest string) error {
	if duration <= 0 {
		// Zero-length retry rows still get a tenth of a second so ffmpeg
		// produces a usable clip.
		duration = 0.1
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", start),
		"-i", source,
		"-t", fmt.Sprintf("%.3f", duration),
		"-vn",
		"-acodec", "libopus",
		"-b:a", "128k",
		dest,
	}
	if _, err := s.run(ctx, s.ffmpegBinary, args...); err != nil {
		return fmt.Errorf("ffmpeg extract %.3fs-%.3fs: %w", start, start+duration, err)
	}
	return nil
}

// Result is the transcriber's output for one audio clip.
type Result struct {
	Text string
	// Confidence is the mean avg_logprob across output segments; 0 when
	// the transcriber reported none.
	Confidence float64
	Language   string
}

// transcriberOutput matches the JSON the whisper CLI emits on stdout.
type transcriberOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Text       string  `json:"text"`
		AvgLogprob float64 `json:"avg_logprob"`
	} `json:"segments"`
}

// Transcribe runs the external transcriber on an audio clip and combines
// its segment outputs into a single text plus mean confidence.
func (s *Service) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	args := []string{
		"--model", s.cfg.Model,
		"--output-format", "json",
	}
	if s.cfg.Language != "" {
		args = append(args, "--language", s.cfg.Language)
	}
	args = append(args, audioPath)

	output, err := s.run(ctx, s.cfg.Command, args...)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe %s: %w", audioPath, err)
	}

	var parsed transcriberOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return Result{}, fmt.Errorf("transcribe %s: parse output: %w", audioPath, err)
	}

	result := Result{Language: parsed.Language}
	if len(parsed.Segments) > 0 {
		texts := make([]string, 0, len(parsed.Segments))
		var sum float64
		for _, seg := range parsed.Segments {
			if text := strings.TrimSpace(seg.Text); text != "" {
				texts = append(texts, text)
			}
			sum += seg.AvgLogprob
		}
		result.Text = strings.Join(texts, " ")
		result.Confidence = sum / float64(len(parsed.Segments))
	} else {
		result.Text = strings.TrimSpace(parsed.Text)
	}
	return result, nil
}
