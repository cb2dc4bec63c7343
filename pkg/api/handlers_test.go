package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/whodis/pkg/identity"
	"github.com/carverauto/whodis/pkg/logger"
	"github.com/carverauto/whodis/pkg/models"
)

type fakeEngine struct {
	cells []models.HeatmapCell
	err   error

	gotStep  time.Duration
	gotCount int
}

func (f *fakeEngine) Snapshot(_ context.Context, _ time.Time, step time.Duration, count int) ([]models.HeatmapCell, error) {
	f.gotStep = step
	f.gotCount = count

	return f.cells, f.err
}

type fakeSnapshots struct {
	exportErr error
	importErr error
	exported  int
	imported  int
}

func (f *fakeSnapshots) Export(context.Context, string) error {
	f.exported++
	return f.exportErr
}

func (f *fakeSnapshots) Import(context.Context, string) error {
	f.imported++
	return f.importErr
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(context.Context) error { return f.err }

func newTestRegistry(t *testing.T) *identity.Registry {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() { _ = client.Close() })

	return identity.NewRegistry(client, logger.NewTestLogger())
}

func doRequest(s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	return rec
}

func TestGetHeatmapDefaults(t *testing.T) {
	engine := &fakeEngine{cells: []models.HeatmapCell{}}
	s := NewServer(":0", logger.NewTestLogger(), WithHeatmapEngine(engine))

	rec := doRequest(s, http.MethodGet, "/api/heatmap", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 24*time.Hour, engine.gotStep)
	assert.Equal(t, 1, engine.gotCount)
}

func TestGetHeatmapWithParameters(t *testing.T) {
	engine := &fakeEngine{cells: []models.HeatmapCell{
		{DeviceCount: 3, Intensity: models.IntensityGrad1, Color: "1f8a70"},
	}}
	s := NewServer(":0", logger.NewTestLogger(), WithHeatmapEngine(engine))

	rec := doRequest(s, http.MethodGet, "/api/heatmap?step=3600&count=24", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Hour, engine.gotStep)
	assert.Equal(t, 24, engine.gotCount)

	var cells []models.HeatmapCell
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cells))
	require.Len(t, cells, 1)
	assert.Equal(t, 3, cells[0].DeviceCount)
}

func TestGetHeatmapRejectsBadParameters(t *testing.T) {
	s := NewServer(":0", logger.NewTestLogger(), WithHeatmapEngine(&fakeEngine{}))

	for _, target := range []string{
		"/api/heatmap?step=0",
		"/api/heatmap?step=abc",
		"/api/heatmap?step=-5",
		"/api/heatmap?count=0",
		"/api/heatmap?count=notanumber",
		fmt.Sprintf("/api/heatmap?count=%d", maxWindowCount+1),
	} {
		rec := doRequest(s, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestGetHeatmapStoreUnavailable(t *testing.T) {
	engine := &fakeEngine{err: models.ErrStoreUnavailable}
	s := NewServer(":0", logger.NewTestLogger(), WithHeatmapEngine(engine))

	rec := doRequest(s, http.MethodGet, "/api/heatmap", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetDevices(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.AddKnown(ctx, "cc:dd", "aa:bb"))
	require.NoError(t, reg.SetAlias(ctx, "aa:bb", "laptop"))
	require.NoError(t, reg.AddIgnored(ctx, "cc:dd"))

	s := NewServer(":0", logger.NewTestLogger(), WithRegistry(reg))

	rec := doRequest(s, http.MethodGet, "/api/devices", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var devices []DeviceRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &devices))

	assert.Equal(t, []DeviceRecord{
		{MAC: "aa:bb", Alias: "laptop", Ignored: false},
		{MAC: "cc:dd", Alias: "", Ignored: true},
	}, devices)
}

func TestAliasEndpoints(t *testing.T) {
	reg := newTestRegistry(t)
	s := NewServer(":0", logger.NewTestLogger(), WithRegistry(reg))

	rec := doRequest(s, http.MethodPut, "/api/devices/AA:BB/alias", []byte(`{"name":"laptop"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	// The address folds before it hits the registry.
	name, err := reg.GetAlias(context.Background(), "aa:bb")
	require.NoError(t, err)
	assert.Equal(t, "laptop", name)

	rec = doRequest(s, http.MethodDelete, "/api/devices/aa:bb/alias", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	name, err = reg.GetAlias(context.Background(), "aa:bb")
	require.NoError(t, err)
	assert.Equal(t, "aa:bb", name)
}

func TestPutAliasRejectsBadInput(t *testing.T) {
	s := NewServer(":0", logger.NewTestLogger(), WithRegistry(newTestRegistry(t)))

	rec := doRequest(s, http.MethodPut, "/api/devices/zz:zz/alias", []byte(`{"name":"x"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodPut, "/api/devices/aa:bb/alias", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodPut, "/api/devices/aa:bb/alias", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIgnoreEndpoints(t *testing.T) {
	reg := newTestRegistry(t)
	s := NewServer(":0", logger.NewTestLogger(), WithRegistry(reg))

	rec := doRequest(s, http.MethodPut, "/api/devices/AA:BB/ignore", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	ignored, err := reg.ListIgnored(context.Background())
	require.NoError(t, err)
	assert.Contains(t, ignored, "aa:bb")

	rec = doRequest(s, http.MethodDelete, "/api/devices/aa:bb/ignore", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	ignored, err = reg.ListIgnored(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ignored)
}

func TestSnapshotEndpointsRequireConfiguration(t *testing.T) {
	s := NewServer(":0", logger.NewTestLogger())

	rec := doRequest(s, http.MethodPost, "/api/snapshot/export", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(s, http.MethodPost, "/api/snapshot/import", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSnapshotExport(t *testing.T) {
	snaps := &fakeSnapshots{}
	s := NewServer(":0", logger.NewTestLogger(), WithSnapshots(snaps, "/tmp/whodis.json"))

	rec := doRequest(s, http.MethodPost, "/api/snapshot/export", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, snaps.exported)

	snaps.exportErr = models.ErrSnapshotIO

	rec = doRequest(s, http.MethodPost, "/api/snapshot/export", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSnapshotImport(t *testing.T) {
	snaps := &fakeSnapshots{}
	s := NewServer(":0", logger.NewTestLogger(), WithSnapshots(snaps, "/tmp/whodis.json"))

	rec := doRequest(s, http.MethodPost, "/api/snapshot/import", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, snaps.imported)

	snaps.importErr = fmt.Errorf("%w: bad address", models.ErrSnapshotInvalid)

	rec = doRequest(s, http.MethodPost, "/api/snapshot/import", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	snaps.importErr = errors.New("disk exploded")

	rec = doRequest(s, http.MethodPost, "/api/snapshot/import", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := NewServer(":0", logger.NewTestLogger())

	rec := doRequest(s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s = NewServer(":0", logger.NewTestLogger(), WithPinger(&fakePinger{err: models.ErrStoreUnavailable}))

	rec = doRequest(s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := NewServer(":0", logger.NewTestLogger())

	rec := doRequest(s, http.MethodOptions, "/api/devices", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
