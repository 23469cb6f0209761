package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hirely/hirely/internal/storage"
)

// uploadField is the multipart form field carrying the file
const uploadField = "file"

// multipartOverhead leaves room for boundaries and headers around the file
const multipartOverhead = 64 << 10

// readUpload reads and validates the uploaded file of a multipart request.
// The file type is sniffed from the content, never taken from the request.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, kind storage.Kind) (*storage.Upload, error) {
	if s.blobs == nil {
		return nil, ErrStorageUnavailable
	}

	limit := int64(storage.MaxBytes(kind))
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &ErrValidation{Field: uploadField, Message: fmt.Sprintf("file exceeds %d MiB", limit>>20)}
		}
		return nil, &ErrValidation{Field: uploadField, Message: "expected a multipart form upload"}
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, _, err := r.FormFile(uploadField)
	if err != nil {
		return nil, &ErrValidation{Field: uploadField, Message: "missing file"}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	upload, err := storage.Detect(kind, data)
	if err != nil {
		return nil, &ErrValidation{Field: uploadField, Message: err.Error()}
	}
	return upload, nil
}
