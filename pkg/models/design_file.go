package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Design file formats accepted by the upload page.
const (
	DesignFileDWG = "dwg"
	DesignFileIFC = "ifc"
	DesignFileRVT = "rvt"
)

// DesignFile is the metadata of an uploaded design document. Contents are never parsed.
type DesignFile struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Size       string    `json:"size"`
	Type       string    `json:"type"`
	UploadDate time.Time `json:"upload_date"`
}

// DesignFileType returns the format of a design file from its extension, or
// ErrInvalidInput when the extension is not one of dwg, ifc or rvt.
func DesignFileType(name string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case DesignFileDWG, DesignFileIFC, DesignFileRVT:
		return ext, nil
	}
	return "", fmt.Errorf("%w: unsupported design file %q, expected .dwg, .ifc or .rvt", ErrInvalidInput, name)
}
