package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rpmontada/equinos/internal/config"
	"github.com/rpmontada/equinos/internal/domain/models"
	"github.com/rpmontada/equinos/pkg/metrics"
)

type stubDigest struct {
	message string
	ok      bool
	err     error
}

func (s stubDigest) Digest(ctx context.Context) (string, bool, error) {
	return s.message, s.ok, s.err
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyGroup(ctx context.Context, message string) error {
	return m.Called(ctx, message).Error(0)
}

type stubSnapshotter struct {
	snapshot models.WorkloadSnapshot
	err      error
}

func (s stubSnapshotter) Snapshot(ctx context.Context) (models.WorkloadSnapshot, error) {
	return s.snapshot, s.err
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveSnapshot(ctx context.Context, snapshot models.WorkloadSnapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}

var reporting = config.ReportingConfig{ReminderCron: "0 7 * * *", SnapshotCron: "0 1 1 * *"}

func TestRunReminderDigest(t *testing.T) {
	t.Run("sends when something is due", func(t *testing.T) {
		notifier := new(MockNotifier)
		notifier.On("NotifyGroup", mock.Anything, "Lembretes de hoje").Return(nil)
		s := NewScheduler(reporting, nil, Jobs{Reminders: stubDigest{message: "Lembretes de hoje", ok: true}, Notifier: notifier}, nil)

		before := testutil.ToFloat64(metrics.RemindersSent)
		require.NoError(t, s.runReminderDigest(context.Background()))
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.RemindersSent))
		notifier.AssertExpectations(t)
	})

	t.Run("stays quiet when nothing is due", func(t *testing.T) {
		notifier := new(MockNotifier)
		s := NewScheduler(reporting, nil, Jobs{Reminders: stubDigest{}, Notifier: notifier}, nil)

		require.NoError(t, s.runReminderDigest(context.Background()))
		notifier.AssertNotCalled(t, "NotifyGroup", mock.Anything, mock.Anything)
	})

	t.Run("propagates failures", func(t *testing.T) {
		s := NewScheduler(reporting, nil, Jobs{Reminders: stubDigest{err: errors.New("down")}, Notifier: new(MockNotifier)}, nil)
		assert.ErrorContains(t, s.runReminderDigest(context.Background()), "build digest")

		notifier := new(MockNotifier)
		notifier.On("NotifyGroup", mock.Anything, mock.Anything).Return(errors.New("401"))
		s = NewScheduler(reporting, nil, Jobs{Reminders: stubDigest{message: "x", ok: true}, Notifier: notifier}, nil)
		assert.ErrorContains(t, s.runReminderDigest(context.Background()), "notify group")
	})
}

func TestRunSnapshot(t *testing.T) {
	snapshot := models.WorkloadSnapshot{ID: "abc", Workload: models.MonthlyWorkload{Month: "2024-02", Total: 60}, Records: 3}

	store := new(MockStore)
	store.On("SaveSnapshot", mock.Anything, snapshot).Return(nil)
	s := NewScheduler(reporting, nil, Jobs{Workload: stubSnapshotter{snapshot: snapshot}, Store: store}, nil)
	require.NoError(t, s.runSnapshot(context.Background()))
	store.AssertExpectations(t)

	s = NewScheduler(reporting, nil, Jobs{Workload: stubSnapshotter{err: errors.New("down")}, Store: new(MockStore)}, nil)
	assert.ErrorContains(t, s.runSnapshot(context.Background()), "aggregate last month")
}

func TestStart(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	s := NewScheduler(reporting, loc, Jobs{
		Reminders: stubDigest{},
		Notifier:  new(MockNotifier),
		Workload:  stubSnapshotter{},
		Store:     new(MockStore),
	}, nil)
	require.NoError(t, s.Start())
	assert.Equal(t, 2, s.Entries())
	s.Stop()

	disabled := NewScheduler(reporting, nil, Jobs{}, nil)
	require.NoError(t, disabled.Start())
	assert.Equal(t, 0, disabled.Entries())
	disabled.Stop()

	bad := NewScheduler(config.ReportingConfig{ReminderCron: "todo dia"}, nil, Jobs{Reminders: stubDigest{}, Notifier: new(MockNotifier)}, nil)
	assert.Error(t, bad.Start())
}
