package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/slabscan/internal/cache"
	"github.com/kiranshivaraju/slabscan/internal/i18n"
	"github.com/kiranshivaraju/slabscan/internal/narrative"
	"github.com/kiranshivaraju/slabscan/internal/narrative/mock"
	"github.com/kiranshivaraju/slabscan/internal/scan"
	"github.com/kiranshivaraju/slabscan/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trackingCamera hands out simulated streams and remembers their tracks.
type trackingCamera struct {
	mu     sync.Mutex
	denied bool
	tracks []*scan.SimulatedTrack
}

func (c *trackingCamera) Open(ctx context.Context, facing scan.Facing) (scan.Stream, error) {
	st, err := (&scan.SimulatedCamera{Denied: c.denied}).Open(ctx, facing)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tr := range st.Tracks() {
		c.tracks = append(c.tracks, tr.(*scan.SimulatedTrack))
	}
	return st, nil
}

func (c *trackingCamera) opened() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tracks)
}

func (c *trackingCamera) allStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tr := range c.tracks {
		if tr.Stops() != 1 {
			return false
		}
	}
	return true
}

type fixture struct {
	svc    *Service
	camera *trackingCamera
	cache  *cache.MemoryCache
	model  *mock.MockProvider
}

func newFixture(t *testing.T, provider *mock.MockProvider, scanDuration time.Duration) *fixture {
	t.Helper()
	ca := cache.NewMemoryCache()
	cam := &trackingCamera{}
	narratives := narrative.NewService(provider, ca, i18n.MustLoad(), time.Second)
	svc := NewService(
		NewSession(NewState(models.LanguageEN)),
		cam,
		scan.NewScanner(4, scanDuration, scan.NewSeededRand(7)),
		narratives,
		ca,
	)
	t.Cleanup(svc.Close)
	return &fixture{svc: svc, camera: cam, cache: ca, model: provider}
}

// seedScan puts a completed scan with fixed metrics into the session.
func seedScan(svc *Service, m models.AnalysisMetrics) *models.Scan {
	sc := sampleScan()
	svc.Session().Dispatch(ScanCompleted{Scan: sc, Metrics: m})
	return sc
}

func TestService_ScanCompletes(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)

	job, err := f.svc.StartScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.JobTypeScan, job.Type)
	assert.Equal(t, models.JobStatusPending, job.Status)

	f.svc.Wait()

	st := f.svc.Session().Snapshot()
	require.NotNil(t, st.Scan)
	require.NotNil(t, st.Metrics)
	assert.Len(t, st.Scan.Points, 16)
	assert.Equal(t, models.PageAnalysis, st.Page)
	assert.False(t, st.Scanning)
	assert.False(t, st.CameraActive)
	assert.GreaterOrEqual(t, st.Metrics.FlatnessScore, 0.0)
	assert.LessOrEqual(t, st.Metrics.FlatnessScore, 100.0)

	got, err := f.svc.Job(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.NotNil(t, got.StartedAt)
	assert.NotNil(t, got.CompletedAt)

	assert.Equal(t, 1, f.camera.opened())
	assert.True(t, f.camera.allStopped())
}

func TestService_ScanPermissionDenied(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)
	f.camera.denied = true

	_, err := f.svc.StartScan(context.Background())
	assert.ErrorIs(t, err, scan.ErrPermissionDenied)

	st := f.svc.Session().Snapshot()
	assert.False(t, st.Scanning)
	assert.Nil(t, st.Scan)

	// A refused camera does not wedge the workflow.
	f.camera.denied = false
	_, err = f.svc.StartScan(context.Background())
	require.NoError(t, err)
	f.svc.Wait()
}

func TestService_ScanInProgress(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 200*time.Millisecond)

	_, err := f.svc.StartScan(context.Background())
	require.NoError(t, err)
	assert.True(t, f.svc.Session().Snapshot().Scanning)

	_, err = f.svc.StartScan(context.Background())
	assert.ErrorIs(t, err, ErrScanInProgress)

	f.svc.Wait()
	assert.Equal(t, 1, f.camera.opened())
}

func TestService_ScanReusesPreviewStream(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)

	require.NoError(t, f.svc.StartCamera(context.Background()))
	require.NoError(t, f.svc.StartCamera(context.Background()))
	assert.True(t, f.svc.Session().Snapshot().CameraActive)

	_, err := f.svc.StartScan(context.Background())
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, 1, f.camera.opened())
	assert.True(t, f.camera.allStopped())
}

func TestService_StartCameraDuringScan(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 50*time.Millisecond)

	_, err := f.svc.StartScan(context.Background())
	require.NoError(t, err)

	err = f.svc.StartCamera(context.Background())
	assert.ErrorIs(t, err, ErrScanInProgress)

	f.svc.Wait()
	assert.Equal(t, 1, f.camera.opened())
	assert.True(t, f.camera.allStopped())
	assert.False(t, f.svc.Session().Snapshot().CameraActive)

	require.NoError(t, f.svc.StartCamera(context.Background()))
	assert.True(t, f.svc.Session().Snapshot().CameraActive)
	assert.Equal(t, 2, f.camera.opened())
}

func TestService_StartCameraDenied(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)
	f.camera.denied = true

	err := f.svc.StartCamera(context.Background())
	assert.ErrorIs(t, err, scan.ErrPermissionDenied)
	assert.False(t, f.svc.Session().Snapshot().CameraActive)
}

func TestService_NavigateAwayStopsCamera(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)
	require.NoError(t, f.svc.StartCamera(context.Background()))

	st, err := f.svc.Navigate(models.PageDashboard)
	require.NoError(t, err)

	assert.False(t, st.CameraActive)
	assert.True(t, f.camera.allStopped())
}

func TestService_NavigateInvalidPage(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)

	_, err := f.svc.Navigate("nowhere")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestService_AnalysisWithoutScan(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)

	_, err := f.svc.StartAnalysis(context.Background())
	assert.ErrorIs(t, err, ErrNoScan)
}

func TestService_AnalysisProducesReport(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)
	sc := seedScan(f.svc, models.AnalysisMetrics{AverageDeviation: 1.1, MaxDeviation: 3.0, MinDeviation: -2.0, FlatnessScore: 95})

	job, err := f.svc.StartAnalysis(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.JobTypeAnalysis, job.Type)
	f.svc.Wait()

	st := f.svc.Session().Snapshot()
	require.NotNil(t, st.Report)
	assert.Equal(t, sc.ID, st.Report.ScanID)
	assert.Equal(t, models.PageReport, st.Page)
	assert.False(t, st.Analyzing)
	assert.Len(t, st.Report.Recommendations, 3)
	assert.False(t, st.Report.Fallback)
	assert.Equal(t, "mock", st.Report.Provider)

	got, err := f.svc.Job(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
}

func TestService_AnalysisRemoteFailureFallsBack(t *testing.T) {
	f := newFixture(t, mock.NewFailingProvider(errors.New("connection refused")), 0)
	seedScan(f.svc, models.AnalysisMetrics{AverageDeviation: 3.2, MaxDeviation: 7.1, MinDeviation: -4.0, FlatnessScore: 84})

	_, err := f.svc.StartAnalysis(context.Background())
	require.NoError(t, err)
	f.svc.Wait()

	st := f.svc.Session().Snapshot()
	require.NotNil(t, st.Report)
	assert.Equal(t, "Error connecting to AI service.", st.Report.Analysis)
	assert.Equal(t, []string{"Retry analysis"}, st.Report.Recommendations)
	assert.True(t, st.Report.Fallback)
	assert.Equal(t, 84.0, st.Report.Metrics.FlatnessScore)
}

func TestService_AnalysisMissingCredentialsFallsBack(t *testing.T) {
	f := newFixture(t, mock.NewFailingProvider(models.ErrMissingCredentials), 0)
	seedScan(f.svc, models.AnalysisMetrics{AverageDeviation: 3.2, MaxDeviation: 7.1, MinDeviation: -4.0, FlatnessScore: 84})

	_, err := f.svc.StartAnalysis(context.Background())
	require.NoError(t, err)
	f.svc.Wait()

	st := f.svc.Session().Snapshot()
	require.NotNil(t, st.Report)
	assert.Equal(t, "API Key missing. Cannot generate AI analysis.", st.Report.Analysis)
	assert.Equal(t, []string{"Check configuration"}, st.Report.Recommendations)
}

func TestService_AnalysisInProgress(t *testing.T) {
	release := make(chan struct{})
	provider := mock.NewMockProvider()
	inner := provider.GenerateFunc
	provider.GenerateFunc = func(ctx context.Context, p models.Prompt) (string, error) {
		<-release
		return inner(ctx, p)
	}
	f := newFixture(t, provider, 0)
	seedScan(f.svc, models.AnalysisMetrics{FlatnessScore: 90})

	_, err := f.svc.StartAnalysis(context.Background())
	require.NoError(t, err)

	_, err = f.svc.StartAnalysis(context.Background())
	assert.ErrorIs(t, err, ErrAnalysisInProgress)

	close(release)
	f.svc.Wait()
	assert.Len(t, provider.Calls(), 1)
}

func TestService_AnalysisUsesSessionLanguage(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)
	require.NoError(t, f.svc.SetLanguage(models.LanguageZH))
	seedScan(f.svc, models.AnalysisMetrics{FlatnessScore: 90})

	_, err := f.svc.StartAnalysis(context.Background())
	require.NoError(t, err)
	f.svc.Wait()

	calls := f.model.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, models.LanguageZH, calls[0].Language)
	assert.Contains(t, calls[0].Text, "Respond in Chinese (Simplified).")

	st := f.svc.Session().Snapshot()
	require.NotNil(t, st.Report)
	assert.Equal(t, models.LanguageZH, st.Report.Language)
}

func TestService_SetLanguageInvalid(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)

	err := f.svc.SetLanguage("DE")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Equal(t, models.LanguageEN, f.svc.Session().Snapshot().Language)
}

func TestService_AddFile(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)

	file, err := f.svc.AddFile("plans/Level-3.IFC", 1572864)
	require.NoError(t, err)

	assert.Equal(t, "Level-3.IFC", file.Name)
	assert.Equal(t, models.DesignFileIFC, file.Type)
	assert.Equal(t, "1.50 MB", file.Size)
	assert.NotEqual(t, uuid.Nil, file.ID)

	files := f.svc.Session().Snapshot().Files
	require.Len(t, files, 1)
	assert.Equal(t, file.ID, files[0].ID)
}

func TestService_AddFileRejected(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)

	_, err := f.svc.AddFile("photo.jpg", 100)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.AddFile("model.rvt", -1)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	assert.Empty(t, f.svc.Session().Snapshot().Files)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0.00 MB", FormatSize(0))
	assert.Equal(t, "1.00 MB", FormatSize(1048576))
	assert.Equal(t, "2.50 MB", FormatSize(2621440))
}

func TestService_JobNotFound(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)

	_, err := f.svc.Job(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestService_JobFromSharedCache(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)
	job, err := f.svc.StartScan(context.Background())
	require.NoError(t, err)
	f.svc.Wait()

	other := NewService(NewSession(NewState(models.LanguageEN)), &trackingCamera{}, scan.NewScanner(4, 0, nil), nil, f.cache)

	got, err := other.Job(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
}

func TestService_FinishedJobsPruned(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	old, err := f.svc.StartScan(context.Background())
	require.NoError(t, err)
	f.svc.Wait()

	now = now.Add(jobTTL + time.Minute)
	recent, err := f.svc.StartScan(context.Background())
	require.NoError(t, err)
	f.svc.Wait()

	f.svc.mu.Lock()
	_, oldKept := f.svc.jobs[old.ID]
	_, recentKept := f.svc.jobs[recent.ID]
	f.svc.mu.Unlock()
	assert.False(t, oldKept)
	assert.True(t, recentKept)
}

func TestService_RunningJobsNotPruned(t *testing.T) {
	f := newFixture(t, mock.NewMockProvider(), 0)
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	stuck := f.svc.createJob(context.Background(), models.JobTypeAnalysis)
	now = now.Add(2 * jobTTL)
	f.svc.createJob(context.Background(), models.JobTypeScan)

	f.svc.mu.Lock()
	_, kept := f.svc.jobs[stuck.ID]
	f.svc.mu.Unlock()
	assert.True(t, kept)
}
