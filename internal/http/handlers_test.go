package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezforge/launchpad/backend/internal/collection"
	"github.com/rezforge/launchpad/backend/internal/logging"
	"github.com/rezforge/launchpad/backend/internal/rez"
	"github.com/rezforge/launchpad/backend/internal/stage"
	"github.com/rezforge/launchpad/backend/internal/storage"
	"github.com/rezforge/launchpad/backend/internal/types"
)

type fakeGenerator struct {
	blob []byte
	err  error
}

func (g *fakeGenerator) Generate(context.Context, []string) ([]byte, error) {
	return g.blob, g.err
}

type fakeLoader struct {
	err error
}

func (l *fakeLoader) Load(context.Context, types.Stage) error {
	return l.err
}

type fixture struct {
	router  *gin.Engine
	gateway *storage.Memory
	gen     *fakeGenerator
	loader  *fakeLoader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gw := storage.NewMemory()
	gen := &fakeGenerator{blob: []byte("resolved context")}
	ld := &fakeLoader{}
	logger := logging.NewNop()

	handlers := NewHandlers(
		stage.NewManager(gw, gen, ld, logger),
		collection.NewManager(gw, logger),
	)

	router := gin.New()
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.POST("/collections", handlers.SaveCollection)
	router.GET("/collections", handlers.ListCollections)
	router.GET("/collections/tools", handlers.CollectionTools)
	router.POST("/stages", handlers.SaveStage)
	router.GET("/stages", handlers.ListStages)
	router.GET("/stages/names", handlers.StageNames)
	router.GET("/stages/history", handlers.StageHistory)
	router.POST("/stages/:id/revert", handlers.RevertStage)
	router.POST("/stages/:id/load", handlers.LoadStage)

	return &fixture{router: router, gateway: gw, gen: gen, loader: ld}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (f *fixture) seedCollection(t *testing.T, version, uri string) {
	t.Helper()
	w := f.do(t, http.MethodPost, "/collections", types.SaveCollectionRequest{
		Version:  version,
		Packages: []string{"maya-2026", "arnold-7"},
		Tools:    []string{"maya"},
		URI:      uri,
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func (f *fixture) saveStage(t *testing.T, name, uri, fromVersion string) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/stages", types.SaveStageRequest{
		Name: name, URI: uri, FromVersion: fromVersion,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	st := body["stage"].(map[string]interface{})
	return st["id"].(string)
}

func TestRootEndpoint(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "online", body["status"])
	assert.NotEmpty(t, body["version"])
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["username"])
}

func TestSaveCollectionValidation(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/collections", map[string]interface{}{
		"version": "1.0",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCollectionsEmptyEnvelope(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/collections?uri=show/seq/shot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["message"], "show/seq/shot")
}

func TestCollectionRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.seedCollection(t, "1.0", "show/seq/shot")

	w := f.do(t, http.MethodGet, "/collections?uri=show/seq/shot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	records := body["collections"].([]interface{})
	require.Len(t, records, 1)
}

func TestCollectionToolsRequiresParams(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/collections/tools?version=1.0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCollectionToolsMissIsEmptyList(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/collections/tools?version=9.9&uri=show/seq/shot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	tools, ok := body["tools"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, tools)
}

func TestSaveStageUnknownVersionIs404(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/stages", types.SaveStageRequest{
		Name: "prod", URI: "show/seq/shot", FromVersion: "9.9",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveStageGenerationFailureIs502(t *testing.T) {
	f := newFixture(t)
	f.seedCollection(t, "1.0", "show/seq/shot")
	f.gen.err = &rez.GenerationError{Stderr: "package not found: maya-2026"}

	w := f.do(t, http.MethodPost, "/stages", types.SaveStageRequest{
		Name: "prod", URI: "show/seq/shot", FromVersion: "1.0",
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decode(t, w)
	assert.Contains(t, body["error"], "package not found")
}

func TestStageLifecycle(t *testing.T) {
	f := newFixture(t)
	f.seedCollection(t, "1.0", "show/seq/shot")
	f.seedCollection(t, "2.0", "show/seq/shot")

	first := f.saveStage(t, "prod", "show/seq/shot", "1.0")
	second := f.saveStage(t, "prod", "show/seq/shot", "2.0")

	// Only the latest save is active.
	w := f.do(t, http.MethodGet, "/stages?uri=show/seq/shot&active_only=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	active := decode(t, w)["stages"].([]interface{})
	require.Len(t, active, 1)
	assert.Equal(t, second, active[0].(map[string]interface{})["id"])

	// Revert back to the first version.
	w = f.do(t, http.MethodPost, "/stages/"+first+"/revert", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/stages?uri=show/seq/shot&active_only=true", nil)
	active = decode(t, w)["stages"].([]interface{})
	require.Len(t, active, 1)
	assert.Equal(t, first, active[0].(map[string]interface{})["id"])

	// Full history keeps both versions.
	w = f.do(t, http.MethodGet, "/stages/history?name=prod&uri=show/seq/shot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode(t, w)["stages"].([]interface{})
	assert.Len(t, history, 2)
}

func TestListStagesRequiresURI(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/stages", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStageHistoryRequiresParams(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/stages/history?name=prod", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStageNames(t *testing.T) {
	f := newFixture(t)
	f.seedCollection(t, "1.0", "show/seq/shot")
	f.saveStage(t, "prod", "show/seq/shot", "1.0")
	f.saveStage(t, "dev", "show/seq/shot", "1.0")
	f.saveStage(t, "prod", "show/seq/shot", "1.0")

	w := f.do(t, http.MethodGet, "/stages/names", nil)
	require.Equal(t, http.StatusOK, w.Code)
	names := decode(t, w)["names"].([]interface{})
	assert.ElementsMatch(t, []interface{}{"prod", "dev"}, names)
}

func TestRevertUnknownStageIs404(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/stages/no-such-id/revert", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoadStage(t *testing.T) {
	f := newFixture(t)
	f.seedCollection(t, "1.0", "show/seq/shot")
	id := f.saveStage(t, "prod", "show/seq/shot", "1.0")

	w := f.do(t, http.MethodPost, "/stages/"+id+"/load", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
}

func TestLoadEmptySnapshotIs409(t *testing.T) {
	f := newFixture(t)
	f.seedCollection(t, "1.0", "show/seq/shot")
	f.gen.blob = nil
	id := f.saveStage(t, "prod", "show/seq/shot", "1.0")
	f.loader.err = rez.ErrEmptySnapshot

	w := f.do(t, http.MethodPost, "/stages/"+id+"/load", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
