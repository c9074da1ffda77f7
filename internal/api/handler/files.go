package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/kiranshivaraju/slabscan/internal/api/response"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

const maxUploadBytes = 512 << 20

// NewListFilesHandler returns an http.HandlerFunc for GET /api/v1/files.
func NewListFilesHandler(states StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, states.Snapshot().Files)
	}
}

// NewUploadFileHandler returns an http.HandlerFunc for POST /api/v1/files.
// The multipart "file" part is counted and discarded; only its name and size
// are recorded.
func NewUploadFileHandler(wf Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		mr, err := r.MultipartReader()
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_INPUT",
				"Expected a multipart/form-data body", nil)
			return
		}

		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_INPUT",
					"Malformed multipart body", nil)
				return
			}
			if part.FormName() != "file" || part.FileName() == "" {
				part.Close()
				continue
			}

			if _, err := models.DesignFileType(part.FileName()); err != nil {
				part.Close()
				writeError(w, r, err)
				return
			}

			size, err := io.Copy(io.Discard, part)
			part.Close()
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
						"Design file exceeds the upload limit", nil)
					return
				}
				response.Error(w, http.StatusBadRequest, "INVALID_INPUT",
					"Could not read uploaded file", nil)
				return
			}

			f, err := wf.AddFile(part.FileName(), size)
			if err != nil {
				writeError(w, r, err)
				return
			}
			response.Created(w, f)
			return
		}

		response.Error(w, http.StatusBadRequest, "INVALID_INPUT", "file is required", nil)
	}
}
