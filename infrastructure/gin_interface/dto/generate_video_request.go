package dto

// GenerateVideoRequest carries the non-file form fields of a generation
// request. The image, audio, and optional bypass video arrive as multipart
// file parts.
type GenerateVideoRequest struct {
	Prompt string `form:"prompt"`
	UserID string `form:"user_id"`
}
