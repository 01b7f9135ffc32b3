package request

import "io"

// UploadDocumentRequest is assembled from a multipart form
type UploadDocumentRequest struct {
	DocumentType string `validate:"required,max=60"`
	FileName     string `validate:"required"`
	ContentType  string
	Size         int64 `validate:"gt=0"`
	File         io.Reader
}

type ReviewDocumentRequest struct {
	Decision string  `json:"decision" validate:"required,oneof=approved rejected"`
	Reason   *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}
