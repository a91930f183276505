package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-linkedin-sweeper/internal/filter"
	"go-linkedin-sweeper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetDismissedJobIDs(ctx context.Context, jobIDs []string) (map[string]struct{}, error) {
	args := m.Called(ctx, jobIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockStore) BatchSaveDismissedJobs(ctx context.Context, records []*models.DismissedJob) (int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Error(1)
}

type MockDismisser struct {
	mock.Mock
}

func (m *MockDismisser) Dismiss(ctx context.Context, job models.JobListing, dismissURN string) (bool, error) {
	args := m.Called(ctx, job, dismissURN)
	return args.Bool(0), args.Error(1)
}

func set(ids ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func newTestProcessor(t *testing.T, store *MockStore, client *MockDismisser, keywords, companies []string) *Processor {
	p := New(store, client, filter.NewBlocklist(keywords, companies), zaptest.NewLogger(t))
	p.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return p
}

func assertInvariant(t *testing.T, s Stats) {
	t.Helper()
	assert.Equal(t, s.Processed, s.Dismissed+s.Skipped+s.Kept, "processed == dismissed + skipped + kept")
}

func TestProcess_EmptyPageReturnsZeros(t *testing.T) {
	store := &MockStore{}
	client := &MockDismisser{}
	p := newTestProcessor(t, store, client, nil, nil)

	stats, dismissed, err := p.Process(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, [9]int{}, stats.Tuple())
	assert.Empty(t, dismissed)
	store.AssertNotCalled(t, "GetDismissedJobIDs", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "BatchSaveDismissedJobs", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "Dismiss", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_SkipsAlreadyDismissed(t *testing.T) {
	store := &MockStore{}
	client := &MockDismisser{}
	store.On("GetDismissedJobIDs", mock.Anything, []string{"123"}).Return(set("123"), nil).Once()

	p := newTestProcessor(t, store, client, []string{"test"}, nil)
	stats, dismissed, err := p.Process(context.Background(), []models.JobListing{
		{JobID: "123", Title: "Test Job"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Dismissed)
	assert.Empty(t, dismissed)
	assertInvariant(t, stats)
	client.AssertNotCalled(t, "Dismiss", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "BatchSaveDismissedJobs", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestProcess_MatchesTitleBlocklist(t *testing.T) {
	store := &MockStore{}
	client := &MockDismisser{}
	job := models.JobListing{JobID: "456", Title: "Senior Engineer", Company: "Acme", Location: "Toronto, ON"}

	store.On("GetDismissedJobIDs", mock.Anything, []string{"456"}).Return(set(), nil).Once()
	client.On("Dismiss", mock.Anything, job,
		"urn:li:fsd_jobPostingRelevanceFeedback:urn:li:fsd_jobPosting:456").Return(true, nil).Once()
	store.On("BatchSaveDismissedJobs", mock.Anything, []*models.DismissedJob{{
		JobID:       "456",
		Title:       "Senior Engineer",
		Company:     "Acme",
		Location:    "Toronto, ON",
		Reason:      models.ReasonTitleMatch,
		DismissedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}).Return(1, nil).Once()

	p := newTestProcessor(t, store, client, []string{"SENIOR"}, nil)
	stats, dismissed, err := p.Process(context.Background(), []models.JobListing{job})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Dismissed)
	assert.Equal(t, 1, stats.DismissedByTitle)
	assert.Equal(t, 1, stats.Saved)
	assert.Equal(t, []models.JobListing{job}, dismissed)
	assertInvariant(t, stats)
	store.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestProcess_MixedPage(t *testing.T) {
	store := &MockStore{}
	client := &MockDismisser{}
	jobs := []models.JobListing{
		{JobID: "1", Title: "Senior Go Developer"},
		{JobID: "2", Title: "Go Developer", Company: "Jobot"},
		{JobID: "3", Title: "Junior Go Developer", Company: "Shopify"},
		{JobID: "4", Title: "Staff Engineer"},
		{Title: "no id"},
		{JobID: "5", Title: "Lead Engineer", DismissURN: "urn:li:custom:5"},
		{JobID: "6", Title: "Senior SRE"},
	}

	store.On("GetDismissedJobIDs", mock.Anything, []string{"1", "2", "3", "4", "5", "6"}).
		Return(set("4"), nil).Once()

	var calls []string
	record := func(args mock.Arguments) {
		calls = append(calls, args.Get(1).(models.JobListing).JobID+"|"+args.String(2))
	}
	byID := func(id string) interface{} {
		return mock.MatchedBy(func(job models.JobListing) bool { return job.JobID == id })
	}
	for _, id := range []string{"1", "2", "5"} {
		client.On("Dismiss", mock.Anything, byID(id), mock.Anything).Run(record).Return(true, nil).Once()
	}
	client.On("Dismiss", mock.Anything, byID("6"), mock.Anything).Run(record).
		Return(false, errors.New("429 too many requests")).Once()

	var saved []*models.DismissedJob
	store.On("BatchSaveDismissedJobs", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).([]*models.DismissedJob)
		}).
		Return(3, nil).Once()

	p := newTestProcessor(t, store, client, []string{"senior", "lead"}, []string{"https://www.linkedin.com/company/jobot/"})
	stats, dismissed, err := p.Process(context.Background(), jobs)

	require.NoError(t, err)
	assert.Equal(t, Stats{
		Processed:          6,
		Dismissed:          3,
		Skipped:            1,
		DismissedByTitle:   2,
		DismissedByCompany: 1,
		Kept:               2,
		Failed:             1,
		Malformed:          1,
		Saved:              3,
	}, stats)
	assertInvariant(t, stats)

	assert.Equal(t, []string{
		"1|urn:li:fsd_jobPostingRelevanceFeedback:urn:li:fsd_jobPosting:1",
		"2|urn:li:fsd_jobPostingRelevanceFeedback:urn:li:fsd_jobPosting:2",
		"5|urn:li:custom:5",
		"6|urn:li:fsd_jobPostingRelevanceFeedback:urn:li:fsd_jobPosting:6",
	}, calls)

	require.Len(t, dismissed, 3)
	assert.Equal(t, "1", dismissed[0].JobID)
	assert.Equal(t, "2", dismissed[1].JobID)
	assert.Equal(t, "5", dismissed[2].JobID)

	require.Len(t, saved, 3)
	assert.Equal(t, models.ReasonTitleMatch, saved[0].Reason)
	assert.Equal(t, models.ReasonCompanyMatch, saved[1].Reason)
	assert.Equal(t, "5", saved[2].JobID)
}

func TestProcess_FailedDismissIsNotSaved(t *testing.T) {
	store := &MockStore{}
	client := &MockDismisser{}
	store.On("GetDismissedJobIDs", mock.Anything, []string{"9"}).Return(set(), nil).Once()
	client.On("Dismiss", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()

	p := newTestProcessor(t, store, client, []string{"senior"}, nil)
	stats, dismissed, err := p.Process(context.Background(), []models.JobListing{{JobID: "9", Title: "Senior PM"}})

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Dismissed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Kept)
	assert.Empty(t, dismissed)
	assertInvariant(t, stats)
	store.AssertNotCalled(t, "BatchSaveDismissedJobs", mock.Anything, mock.Anything)
}

func TestProcess_OnlyMalformedSkipsStore(t *testing.T) {
	store := &MockStore{}
	client := &MockDismisser{}

	p := newTestProcessor(t, store, client, []string{"senior"}, nil)
	stats, dismissed, err := p.Process(context.Background(), []models.JobListing{{Title: "Senior"}, {JobID: "  "}})

	require.NoError(t, err)
	assert.Equal(t, Stats{Malformed: 2}, stats)
	assert.Empty(t, dismissed)
	store.AssertNotCalled(t, "GetDismissedJobIDs", mock.Anything, mock.Anything)
}

func TestProcess_LookupError(t *testing.T) {
	store := &MockStore{}
	client := &MockDismisser{}
	store.On("GetDismissedJobIDs", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	p := newTestProcessor(t, store, client, []string{"senior"}, nil)
	_, _, err := p.Process(context.Background(), []models.JobListing{{JobID: "1", Title: "Senior"}})

	assert.ErrorContains(t, err, "db down")
	client.AssertNotCalled(t, "Dismiss", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_SaveErrorKeepsStats(t *testing.T) {
	store := &MockStore{}
	client := &MockDismisser{}
	store.On("GetDismissedJobIDs", mock.Anything, mock.Anything).Return(set(), nil).Once()
	client.On("Dismiss", mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Once()
	store.On("BatchSaveDismissedJobs", mock.Anything, mock.Anything).Return(0, errors.New("write failed")).Once()

	p := newTestProcessor(t, store, client, []string{"senior"}, nil)
	stats, dismissed, err := p.Process(context.Background(), []models.JobListing{{JobID: "1", Title: "Senior"}})

	assert.ErrorContains(t, err, "write failed")
	assert.Equal(t, 1, stats.Dismissed)
	assert.Equal(t, 0, stats.Saved)
	assert.Len(t, dismissed, 1)
}

func TestStatsAdd(t *testing.T) {
	total := Stats{Processed: 1, Dismissed: 1}
	total.Add(Stats{Processed: 2, Skipped: 1, Kept: 1, Saved: 4})
	assert.Equal(t, [9]int{3, 1, 1, 0, 0, 1, 0, 0, 4}, total.Tuple())
}

func TestDismissURN(t *testing.T) {
	assert.Equal(t, "urn:li:fsd_jobPostingRelevanceFeedback:urn:li:fsd_jobPosting:4368153098",
		DismissURN(models.JobListing{JobID: "4368153098"}))
	assert.Equal(t, "urn:custom", DismissURN(models.JobListing{JobID: "1", DismissURN: "urn:custom"}))
}
