package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/slabscan/internal/analysis"
	"github.com/kiranshivaraju/slabscan/internal/cache"
	"github.com/kiranshivaraju/slabscan/internal/metrics"
	"github.com/kiranshivaraju/slabscan/internal/narrative"
	"github.com/kiranshivaraju/slabscan/internal/report"
	"github.com/kiranshivaraju/slabscan/internal/scan"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

const jobTTL = 30 * time.Minute

// Service runs the scan and analysis workflows against a Session. At most one
// scan and one analysis are in flight at a time.
type Service struct {
	session    *Session
	camera     scan.Camera
	scanner    *scan.Scanner
	narratives *narrative.Service
	cache      cache.Cache
	now        func() time.Time

	mu        sync.Mutex
	preview   *scan.Lease
	scanning  bool
	analyzing bool
	jobs      map[uuid.UUID]models.Job

	wg sync.WaitGroup
}

// NewService creates a new Service.
func NewService(session *Session, camera scan.Camera, scanner *scan.Scanner, narratives *narrative.Service, ca cache.Cache) *Service {
	return &Service{
		session:    session,
		camera:     camera,
		scanner:    scanner,
		narratives: narratives,
		cache:      ca,
		now:        func() time.Time { return time.Now().UTC() },
		jobs:       make(map[uuid.UUID]models.Job),
	}
}

// Session returns the state container the service updates.
func (s *Service) Session() *Session {
	return s.session
}

// StartCamera opens the rear camera for the live preview. It is a no-op when
// the preview is already running. Returns scan.ErrPermissionDenied if refused
// and ErrScanInProgress while a capture owns the camera.
func (s *Service) StartCamera(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanning {
		return ErrScanInProgress
	}
	if s.preview != nil {
		return nil
	}
	lease, err := scan.Acquire(ctx, s.camera)
	if err != nil {
		return err
	}
	s.preview = lease
	s.session.Dispatch(CameraStarted{})
	slog.Info("camera preview started", "stream_id", lease.StreamID())
	return nil
}

// StopCamera releases the preview stream if one is held.
func (s *Service) StopCamera() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPreviewLocked()
}

func (s *Service) stopPreviewLocked() {
	if s.preview == nil {
		return
	}
	s.preview.Release()
	s.preview = nil
	s.session.Dispatch(CameraStopped{})
}

// StartScan hands the camera to a background capture and returns its job.
// The camera is acquired before returning, so a refused permission is reported
// here rather than through the job.
func (s *Service) StartScan(ctx context.Context) (models.Job, error) {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return models.Job{}, ErrScanInProgress
	}
	lease := s.preview
	s.preview = nil
	if lease == nil {
		var err error
		lease, err = scan.Acquire(ctx, s.camera)
		if err != nil {
			s.mu.Unlock()
			return models.Job{}, err
		}
	}
	s.scanning = true
	s.mu.Unlock()

	job := s.createJob(ctx, models.JobTypeScan)
	s.session.Dispatch(ScanStarted{})

	s.wg.Add(1)
	go s.runScan(job.ID, lease)

	return job, nil
}

// runScan performs the capture in a goroutine.
// It recovers from panics and always marks the job as completed or failed.
func (s *Service) runScan(jobID uuid.UUID, lease *scan.Lease) {
	ctx := context.Background()
	defer s.wg.Done()

	// The flag is cleared before the outcome is published, and the job is
	// settled only after the state reflects it.
	finish := func(a Action) {
		s.mu.Lock()
		s.scanning = false
		s.mu.Unlock()
		s.session.Dispatch(a)
	}
	fail := func(code string, err error) {
		finish(ScanFailed{Reason: err.Error()})
		s.failJob(ctx, jobID, code, err.Error())
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in runScan", "error", r, "job_id", jobID)
			lease.Release()
			fail("INTERNAL_ERROR", fmt.Errorf("panic: %v", r))
		}
	}()

	s.markRunning(ctx, jobID)

	sc, err := s.scanner.Capture(ctx, lease)
	if err != nil {
		fail("SCAN_FAILED", err)
		return
	}

	m, err := metrics.Aggregate(sc.Points, s.now())
	if err != nil {
		fail("INVALID_INPUT", err)
		return
	}
	regions, err := analysis.FindRegions(sc.Points)
	if err != nil {
		fail("INVALID_INPUT", err)
		return
	}

	finish(ScanCompleted{Scan: sc, Metrics: m, Regions: regions})
	s.completeJob(ctx, jobID)
	slog.Info("scan completed", "job_id", jobID, "scan_id", sc.ID,
		"flatness_score", m.FlatnessScore, "regions", len(regions))
}

// StartAnalysis requests a narrative for the current scan in the background
// and returns its job.
func (s *Service) StartAnalysis(ctx context.Context) (models.Job, error) {
	s.mu.Lock()
	if s.analyzing {
		s.mu.Unlock()
		return models.Job{}, ErrAnalysisInProgress
	}
	st := s.session.Snapshot()
	if st.Scan == nil || st.Metrics == nil {
		s.mu.Unlock()
		return models.Job{}, ErrNoScan
	}
	s.analyzing = true
	s.mu.Unlock()

	job := s.createJob(ctx, models.JobTypeAnalysis)
	s.session.Dispatch(AnalysisStarted{})

	s.wg.Add(1)
	go s.runAnalysis(job.ID, st)

	return job, nil
}

// runAnalysis performs the narrative request in a goroutine.
// It recovers from panics and always marks the job as completed or failed.
func (s *Service) runAnalysis(jobID uuid.UUID, st State) {
	ctx := context.Background()
	defer s.wg.Done()

	finish := func(a Action) {
		s.mu.Lock()
		s.analyzing = false
		s.mu.Unlock()
		s.session.Dispatch(a)
	}
	fail := func(code string, err error) {
		finish(AnalysisFailed{Reason: err.Error()})
		s.failJob(ctx, jobID, code, err.Error())
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in runAnalysis", "error", r, "job_id", jobID)
			fail("INTERNAL_ERROR", fmt.Errorf("panic: %v", r))
		}
	}()

	s.markRunning(ctx, jobID)

	n := s.narratives.Analyze(ctx, narrative.Request{
		ScanID:   st.Scan.ID,
		Metrics:  *st.Metrics,
		Regions:  st.Regions,
		Language: st.Language,
	})

	r, err := report.Assemble(*st.Metrics, st.Scan.Points, st.Scan.ID, n, st.Regions, st.Language, s.now())
	if err != nil {
		fail("INVALID_INPUT", err)
		return
	}

	finish(AnalysisCompleted{Report: &r})
	s.completeJob(ctx, jobID)
	slog.Info("analysis completed", "job_id", jobID, "scan_id", st.Scan.ID,
		"provider", n.Provider, "fallback", n.Fallback)
}

// AddFile records an uploaded design file. Only the name and size are kept.
func (s *Service) AddFile(name string, size int64) (models.DesignFile, error) {
	ext, err := models.DesignFileType(name)
	if err != nil {
		return models.DesignFile{}, err
	}
	if size < 0 {
		return models.DesignFile{}, fmt.Errorf("%w: negative file size", models.ErrInvalidInput)
	}

	f := models.DesignFile{
		ID:         uuid.New(),
		Name:       filepath.Base(name),
		Size:       FormatSize(size),
		Type:       ext,
		UploadDate: s.now(),
	}
	s.session.Dispatch(AddFile{File: f})
	return f, nil
}

// FormatSize renders a byte count in megabytes with two decimals.
func FormatSize(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/1024/1024)
}

// SetLanguage switches the UI and narrative language.
func (s *Service) SetLanguage(lang models.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("%w: unsupported language %q", models.ErrInvalidInput, lang)
	}
	s.session.Dispatch(SetLanguage{Language: lang})
	return nil
}

// Navigate changes the current page. Leaving the scan page stops the preview.
func (s *Service) Navigate(page models.Page) (State, error) {
	if !page.Valid() {
		return State{}, fmt.Errorf("%w: unknown page %q", models.ErrInvalidInput, page)
	}
	if page != models.PageScan {
		s.StopCamera()
	}
	return s.session.Dispatch(Navigate{Page: page}), nil
}

// Job returns a scan or analysis job, falling back to the cache for jobs
// started by another instance.
func (s *Service) Job(ctx context.Context, id uuid.UUID) (models.Job, error) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	s.mu.Unlock()
	if ok {
		return job, nil
	}

	if s.cache != nil {
		job, found, err := s.cache.GetJob(ctx, id)
		if err != nil {
			return models.Job{}, fmt.Errorf("reading job %s: %w", id, err)
		}
		if found {
			return job, nil
		}
	}
	return models.Job{}, ErrJobNotFound
}

// Wait blocks until background scans and analyses have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close releases the camera and waits for background work.
func (s *Service) Close() {
	s.StopCamera()
	s.Wait()
}

// --- job bookkeeping ---

func (s *Service) createJob(ctx context.Context, jobType string) models.Job {
	now := s.now()
	job := models.Job{
		ID:        uuid.New(),
		Type:      jobType,
		Status:    models.JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.saveJob(ctx, job)
	return job
}

func (s *Service) markRunning(ctx context.Context, id uuid.UUID) {
	s.updateJob(ctx, id, func(j *models.Job) {
		now := s.now()
		j.Status = models.JobStatusRunning
		j.StartedAt = &now
	})
}

func (s *Service) completeJob(ctx context.Context, id uuid.UUID) {
	s.updateJob(ctx, id, func(j *models.Job) {
		now := s.now()
		j.Status = models.JobStatusCompleted
		j.CompletedAt = &now
	})
}

func (s *Service) failJob(ctx context.Context, id uuid.UUID, code, msg string) {
	s.updateJob(ctx, id, func(j *models.Job) {
		now := s.now()
		j.Status = models.JobStatusFailed
		j.ErrorCode = code
		j.ErrorMessage = &msg
		j.CompletedAt = &now
	})
}

func (s *Service) updateJob(ctx context.Context, id uuid.UUID, fn func(*models.Job)) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	fn(&job)
	job.UpdatedAt = s.now()
	s.saveJob(ctx, job)
}

func (s *Service) saveJob(ctx context.Context, job models.Job) {
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.pruneJobsLocked()
	s.mu.Unlock()

	if s.cache != nil {
		_ = s.cache.SetJob(ctx, job, jobTTL)
	}
}

// pruneJobsLocked drops finished jobs whose cache copy has expired.
func (s *Service) pruneJobsLocked() {
	cutoff := s.now().Add(-jobTTL)
	for id, job := range s.jobs {
		if job.Done() && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}
