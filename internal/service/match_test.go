package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"docmatch/internal/matching"
	"docmatch/internal/report"
	"docmatch/internal/repository"
	"docmatch/internal/source"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name        string
	collections map[string][]matching.Item
	contents    map[string]string
	listErr     error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) List(ctx context.Context, root string) ([]matching.Item, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	items, ok := f.collections[root]
	if !ok {
		return nil, source.ErrRootNotFound
	}
	return append([]matching.Item(nil), items...), nil
}

func (f *fakeSource) Extract(ctx context.Context, item matching.Item) string {
	return f.contents[item.Path]
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []*repository.MatchRun
	err  error
}

func (f *fakeRecorder) RecordRun(ctx context.Context, run *repository.MatchRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return f.err
}

func float64Ptr(v float64) *float64 {
	return &v
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		name: "fake",
		collections: map[string][]matching.Item{
			"old": {
				{Path: "old/invoice.pdf", Name: "invoice.pdf", Size: 1000},
				{Path: "old/contract.pdf", Name: "Contract.pdf", Size: 500},
				{Path: "old/unique.pdf", Name: "zzz.pdf", Size: 1},
			},
			"new": {
				{Path: "new/invoice.pdf", Name: "invoice.pdf", Size: 1000},
				{Path: "new/contract.pdf", Name: "contract.pdf", Size: 500},
				{Path: "new/other.pdf", Name: "other.pdf", Size: 9999},
			},
			"empty": {},
		},
		contents: map[string]string{
			"old/invoice.pdf":  "invoice 42 total 100",
			"new/invoice.pdf":  "invoice 42 total 100",
			"old/contract.pdf": "contract between parties",
			"new/contract.pdf": "contract between parties",
		},
	}
}

func newTestService(src *fakeSource, recorder RunRecorder) *MatchService {
	return NewMatchService(source.NewRegistry(src), recorder, MatchOptions{
		DefaultSource: "fake",
		Threshold:     matching.DefaultThreshold,
		MaxTextLen:    5000,
		Workers:       1,
		Concurrency:   2,
	})
}

func TestMatchServiceRun(t *testing.T) {
	recorder := &fakeRecorder{}
	svc := newTestService(newFakeSource(), recorder)

	run, err := svc.Run(context.Background(), MatchRequest{First: "old", Second: "new"})
	require.NoError(t, err)

	assert.Equal(t, "fake", run.Source)
	assert.Equal(t, matching.DefaultWeights, run.Weights)
	assert.Equal(t, matching.DefaultThreshold, run.Threshold)
	assert.Equal(t, 3, run.SourceCount)
	assert.Equal(t, 3, run.TargetCount)
	require.Len(t, run.Results, 2)
	assert.Equal(t, 2, run.MatchCount)

	assert.Equal(t, "old/invoice.pdf", run.Results[0].Source.Path)
	assert.Equal(t, "new/invoice.pdf", run.Results[0].Target.Path)
	assert.InDelta(t, 1.0, run.Results[0].Score, 1e-9)
	// Names compare case-insensitively.
	assert.Equal(t, "new/contract.pdf", run.Results[1].Target.Path)
	assert.InDelta(t, 1.0, run.Results[1].Score, 1e-9)

	assert.Equal(t, report.Format(run.Results), run.Report)
	assert.Equal(t,
		"old/invoice.pdf\nnew/invoice.pdf\n----------------\nold/contract.pdf\nnew/contract.pdf\n----------------",
		run.Report)

	require.Len(t, recorder.runs, 1)
	assert.Same(t, run, recorder.runs[0])
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.False(t, run.StartedAt.IsZero())
}

func TestMatchServiceRun_SkipContentUsesNameSizeWeights(t *testing.T) {
	svc := newTestService(newFakeSource(), nil)

	run, err := svc.Run(context.Background(), MatchRequest{First: "old", Second: "new", SkipContent: true})
	require.NoError(t, err)
	assert.Equal(t, matching.NameSizeWeights, run.Weights)
	for _, r := range run.Results {
		assert.Empty(t, r.Source.Content)
		assert.Empty(t, r.Target.Content)
	}
	assert.Len(t, run.Results, 2)
}

func TestMatchServiceRun_NoContentDegradesWeights(t *testing.T) {
	src := newFakeSource()
	src.contents = nil
	svc := newTestService(src, nil)

	run, err := svc.Run(context.Background(), MatchRequest{First: "old", Second: "new"})
	require.NoError(t, err)
	assert.Equal(t, matching.NameSizeWeights, run.Weights)
	// Identical name and size still reach a full score.
	require.NotEmpty(t, run.Results)
	assert.InDelta(t, 1.0, run.Results[0].Score, 1e-9)
}

func TestMatchServiceRun_ThresholdOverride(t *testing.T) {
	svc := newTestService(newFakeSource(), nil)

	run, err := svc.Run(context.Background(), MatchRequest{First: "old", Second: "new", Threshold: float64Ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, run.Threshold)
	// Every source item now has a best match.
	assert.Len(t, run.Results, 3)
}

func TestMatchServiceRun_ThresholdAboveOne(t *testing.T) {
	svc := newTestService(newFakeSource(), nil)

	run, err := svc.Run(context.Background(), MatchRequest{First: "old", Second: "new", Threshold: float64Ptr(1.01)})
	require.NoError(t, err)
	assert.Empty(t, run.Results)
	assert.Equal(t, "", run.Report)
}

func TestMatchServiceRun_NegativeThreshold(t *testing.T) {
	svc := newTestService(newFakeSource(), nil)

	run, err := svc.Run(context.Background(), MatchRequest{First: "old", Second: "new", Threshold: float64Ptr(-0.1)})
	require.NoError(t, err)
	assert.Len(t, run.Results, 3)
}

func TestMatchServiceRun_InvalidThreshold(t *testing.T) {
	svc := newTestService(newFakeSource(), nil)

	_, err := svc.Run(context.Background(), MatchRequest{First: "old", Second: "new", Threshold: float64Ptr(math.NaN())})
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestMatchServiceRun_UnknownSource(t *testing.T) {
	svc := newTestService(newFakeSource(), nil)

	_, err := svc.Run(context.Background(), MatchRequest{Source: "storage", First: "old", Second: "new"})
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestMatchServiceRun_EnumerationFailure(t *testing.T) {
	recorder := &fakeRecorder{}
	svc := newTestService(newFakeSource(), recorder)

	_, err := svc.Run(context.Background(), MatchRequest{First: "old", Second: "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrRootNotFound)
	assert.Empty(t, recorder.runs)
}

func TestMatchServiceRun_EmptyCollections(t *testing.T) {
	svc := newTestService(newFakeSource(), nil)

	run, err := svc.Run(context.Background(), MatchRequest{First: "empty", Second: "new"})
	require.NoError(t, err)
	assert.Empty(t, run.Results)
	assert.Equal(t, "", run.Report)

	run, err = svc.Run(context.Background(), MatchRequest{First: "old", Second: "empty"})
	require.NoError(t, err)
	assert.Empty(t, run.Results)
	assert.Equal(t, "", run.Report)
}

func TestMatchServiceRun_RecorderFailureIsNotFatal(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("db down")}
	svc := newTestService(newFakeSource(), recorder)

	run, err := svc.Run(context.Background(), MatchRequest{First: "old", Second: "new"})
	require.NoError(t, err)
	assert.NotNil(t, run)
	assert.Len(t, recorder.runs, 1)
}

func TestMatchServiceSources(t *testing.T) {
	svc := newTestService(newFakeSource(), nil)
	assert.Equal(t, []string{"fake"}, svc.Sources())
}
