package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/lysyi3m/rss-desk/app/database"
	"github.com/lysyi3m/rss-desk/app/events"
	"github.com/lysyi3m/rss-desk/app/tasks/mocks"
)

type RunnerTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	feedStore *mocks.MockFeedStore
	ingester  *mocks.MockFeedIngester
	publisher *mocks.MockPublisher

	status *StatusCell
	runner *Runner
}

func (s *RunnerTestSuite) SetupTest() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.ctrl = gomock.NewController(s.T())
	s.feedStore = mocks.NewMockFeedStore(s.ctrl)
	s.ingester = mocks.NewMockFeedIngester(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	s.status = NewStatusCell()

	s.runner = NewRunner(s.feedStore, s.ingester, s.publisher, s.status)
}

func (s *RunnerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestRunnerTestSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}

func (s *RunnerTestSuite) TestRunOnce_AggregatesNewArticles() {
	ctx := context.Background()
	feeds := []database.Feed{{ID: 1, FeedURL: "https://a/rss"}, {ID: 2, FeedURL: "https://b/rss"}}

	s.feedStore.EXPECT().ListFeeds(ctx).Return(feeds, nil)
	gomock.InOrder(
		s.ingester.EXPECT().IngestFeed(ctx, feeds[0]).Return(2, nil),
		s.ingester.EXPECT().IngestFeed(ctx, feeds[1]).Return(3, nil),
	)

	var published Status
	s.publisher.EXPECT().Publish(events.FetchCompleted, gomock.Any()).Do(func(_ string, data any) {
		published = data.(Status)
	})

	status, err := s.runner.RunOnce(ctx)

	s.NoError(err)
	s.Equal(5, status.TotalNew)
	s.Nil(status.Error)
	s.NotNil(status.At)
	s.NotNil(status.DurationMs)
	s.Equal(status, published)
	s.Equal(status, s.runner.Status())
}

func (s *RunnerTestSuite) TestRunOnce_IsolatesFeedFailures() {
	ctx := context.Background()
	feeds := []database.Feed{{ID: 1}, {ID: 2}, {ID: 3}}

	s.feedStore.EXPECT().ListFeeds(ctx).Return(feeds, nil)
	gomock.InOrder(
		s.ingester.EXPECT().IngestFeed(ctx, feeds[0]).Return(0, context.DeadlineExceeded),
		s.ingester.EXPECT().IngestFeed(ctx, feeds[1]).Return(4, nil),
		s.ingester.EXPECT().IngestFeed(ctx, feeds[2]).Return(0, errors.New("failed to parse feed")),
	)
	s.publisher.EXPECT().Publish(events.FetchCompleted, gomock.Any())

	status, err := s.runner.RunOnce(ctx)

	s.NoError(err)
	s.Equal(4, status.TotalNew)
	s.Nil(status.Error, "feed-level failures must not populate the run error")
}

func (s *RunnerTestSuite) TestRunOnce_ListFeedsFailure() {
	ctx := context.Background()

	s.feedStore.EXPECT().ListFeeds(ctx).Return(nil, errors.New("database is locked"))

	var published Status
	s.publisher.EXPECT().Publish(events.FetchCompleted, gomock.Any()).Do(func(_ string, data any) {
		published = data.(Status)
	})

	status, err := s.runner.RunOnce(ctx)

	s.Error(err)
	s.Require().NotNil(status.Error)
	s.Contains(*status.Error, "database is locked")
	s.Equal(0, status.TotalNew)
	s.Equal(status, published)
	s.Equal(status, s.status.Load())
}

func (s *RunnerTestSuite) TestRunOnce_NoFeeds() {
	ctx := context.Background()

	s.feedStore.EXPECT().ListFeeds(ctx).Return([]database.Feed{}, nil)
	s.publisher.EXPECT().Publish(events.FetchCompleted, gomock.Any())

	status, err := s.runner.RunOnce(ctx)

	s.NoError(err)
	s.Equal(0, status.TotalNew)
	s.Nil(status.Error)
}

func (s *RunnerTestSuite) TestRunOnce_StopsWhenCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	feeds := []database.Feed{{ID: 1}, {ID: 2}}

	s.feedStore.EXPECT().ListFeeds(ctx).Return(feeds, nil)
	s.ingester.EXPECT().IngestFeed(ctx, feeds[0]).DoAndReturn(func(context.Context, database.Feed) (int, error) {
		cancel()
		return 1, nil
	})
	s.publisher.EXPECT().Publish(events.FetchCompleted, gomock.Any())

	status, err := s.runner.RunOnce(ctx)

	s.ErrorIs(err, context.Canceled)
	s.Equal(1, status.TotalNew)
	s.NotNil(status.Error)
}

func (s *RunnerTestSuite) TestStatusBeforeFirstRun() {
	status := s.runner.Status()

	s.Nil(status.At)
	s.Nil(status.DurationMs)
	s.Equal(0, status.TotalNew)
	s.Nil(status.Error)
}
