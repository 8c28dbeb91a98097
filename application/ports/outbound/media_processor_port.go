package outbound

import "generate-avatar-video/domain"

// MediaProcessorPort covers the local, synchronous media operations. No
// network calls; failures carry the tool's diagnostic output.
type MediaProcessorPort interface {
	// ExtractAudio demuxes the audio track without re-encoding and returns
	// the path of the extracted file.
	ExtractAudio(videoPath string) (string, error)
	// Combine remuxes the video with a replacement audio track, replacing
	// the original track, and returns the output path.
	Combine(videoPath string, audioPath string) (string, error)
	DetectAspectRatio(imagePath string) (domain.AspectRatio, error)
	ProbeDuration(mediaPath string) (float64, error)
}
