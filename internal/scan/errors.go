package scan

import "errors"

// ErrPermissionDenied is returned when the host refuses camera access.
var ErrPermissionDenied = errors.New("camera permission denied")
