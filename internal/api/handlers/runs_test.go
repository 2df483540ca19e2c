package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"docmatch/internal/api"
	"docmatch/internal/db"
	"docmatch/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunStore struct {
	runs       []repository.MatchRun
	total      int64
	err        error
	lastLimit  int
	lastOffset int
}

func (f *fakeRunStore) ListRuns(ctx context.Context, limit, offset int) ([]repository.MatchRun, int64, error) {
	f.lastLimit = limit
	f.lastOffset = offset
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.runs, f.total, nil
}

func (f *fakeRunStore) GetRun(ctx context.Context, id uuid.UUID) (*repository.MatchRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.runs {
		if f.runs[i].ID == id {
			return &f.runs[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func setupRunRouter(store *fakeRunStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewRunHandler(store)
	router := gin.New()
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/:id", h.GetRun)
	return router
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestListRuns(t *testing.T) {
	run := *sampleRun()
	store := &fakeRunStore{runs: []repository.MatchRun{run}, total: 45}
	router := setupRunRouter(store)

	w := get(router, "/runs?page=2&limit=20")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, store.lastLimit)
	assert.Equal(t, 20, store.lastOffset)

	var resp struct {
		Data []MatchRunResponse `json:"data"`
		Meta api.Meta           `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, run.ID, resp.Data[0].ID)
	// Summaries leave results out.
	assert.Nil(t, resp.Data[0].Results)
	assert.Nil(t, resp.Data[0].Report)
	require.NotNil(t, resp.Meta.Pagination)
	assert.Equal(t, api.PaginationMeta{Page: 2, Limit: 20, Total: 45, Pages: 3}, *resp.Meta.Pagination)
}

func TestListRuns_Defaults(t *testing.T) {
	store := &fakeRunStore{}
	router := setupRunRouter(store)

	w := get(router, "/runs")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, store.lastLimit)
	assert.Equal(t, 0, store.lastOffset)
}

func TestListRuns_InvalidQuery(t *testing.T) {
	for _, target := range []string{"/runs?limit=500", "/runs?page=-1", "/runs?limit=abc"} {
		w := get(setupRunRouter(&fakeRunStore{}), target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestListRuns_StoreError(t *testing.T) {
	w := get(setupRunRouter(&fakeRunStore{err: errors.New("db down")}), "/runs")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestGetRun(t *testing.T) {
	run := *sampleRun()
	run.Report = ""
	router := setupRunRouter(&fakeRunStore{runs: []repository.MatchRun{run}})

	w := get(router, "/runs/"+run.ID.String())
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data MatchRunResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Results, 2)
	// Stored runs have no report text; it is rebuilt from the results.
	require.NotNil(t, resp.Data.Report)
	assert.Equal(t, "2023/a.pdf\n2024/a.pdf\n----------------\n2023/b.pdf\n2024/b2.pdf\n----------------", *resp.Data.Report)
}

func TestGetRun_Errors(t *testing.T) {
	router := setupRunRouter(&fakeRunStore{})

	w := get(router, "/runs/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(router, "/runs/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), api.ErrCodeNotFound)

	w = get(setupRunRouter(&fakeRunStore{err: errors.New("db down")}), "/runs/"+uuid.NewString())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
