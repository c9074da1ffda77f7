package app

import "errors"

var (
	ErrScanInProgress     = errors.New("scan already in progress")
	ErrAnalysisInProgress = errors.New("analysis already in progress")
	ErrNoScan             = errors.New("no scan available")
	ErrNoReport           = errors.New("no report available")
	ErrJobNotFound        = errors.New("job not found")
)
