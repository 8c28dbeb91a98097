package adapters

import (
	"bytes"
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/domain"
	"github.com/google/uuid"
	"os/exec"
	"strconv"
	"strings"
)

type ffmpegMediaProcessor struct {
	logger    outbound.LoggerPort
	outputDir string
}

// NewFFmpegMediaProcessor performs the local demux/remux/probe operations by
// invoking ffmpeg and ffprobe as subprocesses. outputDir is where final
// combined videos land; it must outlive the per-job working directories.
func NewFFmpegMediaProcessor(logger outbound.LoggerPort, outputDir string) outbound.MediaProcessorPort {
	return &ffmpegMediaProcessor{
		logger:    logger,
		outputDir: outputDir,
	}
}

func (f *ffmpegMediaProcessor) ExtractAudio(videoPath string) (string, error) {
	audioPath := strings.TrimSuffix(videoPath, ".mp4") + "-audio.mp3"
	err := f.runTool("ffmpeg", "-y", "-i", videoPath, "-vn", "-acodec", "libmp3lame", "-q:a", "2", audioPath)
	if err != nil {
		return "", err
	}
	return audioPath, nil
}

func (f *ffmpegMediaProcessor) Combine(videoPath string, audioPath string) (string, error) {
	outputPath := f.outputDir + "/" + uuid.NewString() + ".mp4"
	// -map 0:v:0 -map 1:a:0 replaces the original audio track instead of
	// mixing the two.
	err := f.runTool("ffmpeg", "-y", "-i", videoPath, "-i", audioPath,
		"-map", "0:v:0", "-map", "1:a:0", "-c:v", "copy", "-c:a", "aac", "-b:a", "192k", "-shortest", outputPath)
	if err != nil {
		return "", err
	}
	return outputPath, nil
}

func (f *ffmpegMediaProcessor) DetectAspectRatio(imagePath string) (domain.AspectRatio, error) {
	out, err := f.runProbe("-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=width,height", "-of", "csv=s=x:p=0", imagePath)
	if err != nil {
		return "", err
	}

	dims := strings.Split(strings.TrimSpace(out), "x")
	if len(dims) != 2 {
		return "", domain.NewKindError(domain.MediaProcessingFailed, "unexpected ffprobe dimensions output: %q", out)
	}
	width, err := strconv.Atoi(dims[0])
	if err != nil {
		return "", domain.NewKindError(domain.MediaProcessingFailed, "failed to parse width from %q", out)
	}
	height, err := strconv.Atoi(dims[1])
	if err != nil {
		return "", domain.NewKindError(domain.MediaProcessingFailed, "failed to parse height from %q", out)
	}

	return domain.ClassifyAspectRatio(width, height), nil
}

func (f *ffmpegMediaProcessor) ProbeDuration(mediaPath string) (float64, error) {
	out, err := f.runProbe("-v", "error", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", mediaPath)
	if err != nil {
		return 0, err
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		f.logger.Error(err, "error parsing media duration")
		return 0, domain.NewKindError(domain.MediaProcessingFailed, "failed to parse duration from %q", out)
	}
	return duration, nil
}

func (f *ffmpegMediaProcessor) runTool(name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		f.logger.ErrorWithFields(err, "media tool failed", map[string]interface{}{
			"tool":   name,
			"stderr": stderr.String(),
		})
		return domain.NewKindError(domain.MediaProcessingFailed, "%s: %v: %s", name, err, stderr.String())
	}
	return nil
}

func (f *ffmpegMediaProcessor) runProbe(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command("ffprobe", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		f.logger.ErrorWithFields(err, "ffprobe failed", map[string]interface{}{
			"stderr": stderr.String(),
		})
		return "", domain.NewKindError(domain.MediaProcessingFailed, "ffprobe: %v: %s", err, stderr.String())
	}
	return stdout.String(), nil
}
