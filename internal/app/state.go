// Package app holds the client-visible application state and the workflows
// that move it: camera preview, scanning, analysis, uploads, and navigation.
package app

import "github.com/kiranshivaraju/slabscan/pkg/models"

// State is an immutable snapshot of the application. Reduce returns new
// values; slices and pointers inside a State are never modified in place.
type State struct {
	Language     models.Language          `json:"language"`
	Page         models.Page              `json:"page"`
	Files        []models.DesignFile      `json:"files"`
	Scan         *models.Scan             `json:"scan,omitempty"`
	Metrics      *models.AnalysisMetrics  `json:"metrics,omitempty"`
	Regions      []models.DeviationRegion `json:"regions,omitempty"`
	Report       *models.ReportData       `json:"report,omitempty"`
	CameraActive bool                     `json:"camera_active"`
	Scanning     bool                     `json:"scanning"`
	Analyzing    bool                     `json:"analyzing"`
	Error        string                   `json:"error,omitempty"`
	Version      uint64                   `json:"version"`
}

// NewState returns the initial state: dashboard page in the given language.
func NewState(lang models.Language) State {
	return State{
		Language: lang,
		Page:     models.PageDashboard,
		Files:    []models.DesignFile{},
	}
}

// Action is an event applied to State by Reduce.
type Action interface {
	action()
}

type (
	SetLanguage struct{ Language models.Language }
	Navigate    struct{ Page models.Page }
	AddFile     struct{ File models.DesignFile }

	CameraStarted struct{}
	CameraStopped struct{}

	ScanStarted   struct{}
	ScanCompleted struct {
		Scan    *models.Scan
		Metrics models.AnalysisMetrics
		Regions []models.DeviationRegion
	}
	ScanFailed struct{ Reason string }

	AnalysisStarted   struct{}
	AnalysisCompleted struct{ Report *models.ReportData }
	AnalysisFailed    struct{ Reason string }
)

func (SetLanguage) action()       {}
func (Navigate) action()          {}
func (AddFile) action()           {}
func (CameraStarted) action()     {}
func (CameraStopped) action()     {}
func (ScanStarted) action()       {}
func (ScanCompleted) action()     {}
func (ScanFailed) action()        {}
func (AnalysisStarted) action()   {}
func (AnalysisCompleted) action() {}
func (AnalysisFailed) action()    {}

// Reduce applies a to s and returns the next state. Actions that do not apply
// (an unknown page or language, a report for a superseded scan) return s as is.
func Reduce(s State, a Action) State {
	next := s

	switch a := a.(type) {
	case SetLanguage:
		if !a.Language.Valid() {
			return s
		}
		next.Language = a.Language

	case Navigate:
		if !a.Page.Valid() {
			return s
		}
		next.Page = a.Page
		if a.Page == models.PageAnalysis && s.Report != nil {
			next.Page = models.PageReport
		}

	case AddFile:
		files := make([]models.DesignFile, 0, len(s.Files)+1)
		files = append(files, a.File)
		next.Files = append(files, s.Files...)

	case CameraStarted:
		next.CameraActive = true

	case CameraStopped:
		next.CameraActive = false

	case ScanStarted:
		next.Scanning = true
		next.Error = ""

	case ScanCompleted:
		metrics := a.Metrics
		next.Scan = a.Scan
		next.Metrics = &metrics
		next.Regions = a.Regions
		next.Report = nil
		next.Scanning = false
		next.CameraActive = false
		next.Page = models.PageAnalysis

	case ScanFailed:
		next.Scanning = false
		next.CameraActive = false
		next.Error = a.Reason

	case AnalysisStarted:
		next.Analyzing = true
		next.Error = ""

	case AnalysisCompleted:
		next.Analyzing = false
		if a.Report == nil || s.Scan == nil || a.Report.ScanID != s.Scan.ID {
			break
		}
		next.Report = a.Report
		next.Page = models.PageReport

	case AnalysisFailed:
		next.Analyzing = false
		next.Error = a.Reason

	default:
		return s
	}

	next.Version = s.Version + 1
	return next
}
