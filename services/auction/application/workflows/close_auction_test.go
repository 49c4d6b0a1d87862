package workflows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"

	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

type CloseAuctionWorkflowSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env *testsuite.TestWorkflowEnvironment
}

func (s *CloseAuctionWorkflowSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.env.RegisterActivity(&Activities{})
}

func (s *CloseAuctionWorkflowSuite) AfterTest(_, _ string) {
	s.env.AssertExpectations(s.T())
}

func TestCloseAuctionWorkflowSuite(t *testing.T) {
	suite.Run(t, new(CloseAuctionWorkflowSuite))
}

func (s *CloseAuctionWorkflowSuite) TestSleepsUntilDeadlineThenEnds() {
	var acts *Activities
	id := uuid.NewString()
	deadline := s.env.Now().Add(2 * time.Hour)

	s.env.OnActivity(acts.LoadDeadline, mock.Anything, id).
		Return(Snapshot{Status: "active", EndTime: deadline}, nil).Once()
	s.env.OnActivity(acts.LoadDeadline, mock.Anything, id).
		Return(Snapshot{Status: "active", EndTime: deadline}, nil).Once()
	s.env.OnActivity(acts.EndAuction, mock.Anything, id).
		Return(Snapshot{Status: "ended", EndTime: deadline, WinnerID: "alice"}, nil).Once()

	s.env.ExecuteWorkflow(CloseAuctionWorkflow, id)

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
	var result Snapshot
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal("ended", result.Status)
	s.Equal("alice", result.WinnerID)
	s.False(s.env.Now().Before(deadline), "workflow ended before the deadline")
}

func (s *CloseAuctionWorkflowSuite) TestRereadsDeadlineAfterExtension() {
	var acts *Activities
	id := uuid.NewString()
	first := s.env.Now().Add(time.Hour)
	extended := first.Add(5 * time.Minute)

	s.env.OnActivity(acts.LoadDeadline, mock.Anything, id).
		Return(Snapshot{Status: "active", EndTime: first}, nil).Once()
	s.env.OnActivity(acts.LoadDeadline, mock.Anything, id).
		Return(Snapshot{Status: "active", EndTime: extended}, nil).Once()
	s.env.OnActivity(acts.LoadDeadline, mock.Anything, id).
		Return(Snapshot{Status: "active", EndTime: extended}, nil).Once()
	s.env.OnActivity(acts.EndAuction, mock.Anything, id).
		Return(Snapshot{Status: "ended", EndTime: extended}, nil).Once()

	s.env.ExecuteWorkflow(CloseAuctionWorkflow, id)

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
	s.False(s.env.Now().Before(extended), "workflow ignored the extension")
}

func (s *CloseAuctionWorkflowSuite) TestStopsWhenAlreadyClosed() {
	var acts *Activities
	id := uuid.NewString()

	s.env.OnActivity(acts.LoadDeadline, mock.Anything, id).
		Return(Snapshot{Status: "cancelled"}, nil).Once()

	s.env.ExecuteWorkflow(CloseAuctionWorkflow, id)

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
	var result Snapshot
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal("cancelled", result.Status)
}

type fakeLifecycle struct {
	auction  *models.Auction
	loadErr  error
	closeErr error
	closed   bool
}

func (f *fakeLifecycle) Load(context.Context, uuid.UUID) (*models.Auction, error) {
	return f.auction, f.loadErr
}

func (f *fakeLifecycle) CloseIfDue(context.Context, uuid.UUID) (*models.Auction, bool, error) {
	if f.closeErr != nil {
		return nil, false, f.closeErr
	}
	return f.auction, f.closed, nil
}

func TestActivities_LoadDeadline(t *testing.T) {
	end := time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)
	acts := NewActivities(&fakeLifecycle{auction: &models.Auction{Status: models.StatusActive, EndTime: end}})

	snap, err := acts.LoadDeadline(context.Background(), uuid.NewString())
	require.NoError(t, err)
	require.Equal(t, "active", snap.Status)
	require.True(t, snap.EndTime.Equal(end))
}

func TestActivities_LoadDeadline_DeletedAuction(t *testing.T) {
	acts := NewActivities(&fakeLifecycle{loadErr: auctiondomain.ErrAuctionNotFound})

	snap, err := acts.LoadDeadline(context.Background(), uuid.NewString())
	require.NoError(t, err)
	require.True(t, snap.terminal())
}

func TestActivities_InvalidID(t *testing.T) {
	acts := NewActivities(&fakeLifecycle{})
	_, err := acts.LoadDeadline(context.Background(), "not-a-uuid")
	require.Error(t, err)
}

func TestActivities_EndAuction_AlreadyEndedElsewhere(t *testing.T) {
	f := &fakeLifecycle{
		auction:  &models.Auction{Status: models.StatusEnded, WinnerID: "bob"},
		closeErr: auctiondomain.ErrAuctionNotActive,
	}
	snap, err := NewActivities(f).EndAuction(context.Background(), uuid.NewString())
	require.NoError(t, err)
	require.Equal(t, "ended", snap.Status)
	require.Equal(t, "bob", snap.WinnerID)
}

func TestActivities_EndAuction_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("store down")
	_, err := NewActivities(&fakeLifecycle{closeErr: boom}).EndAuction(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, boom)
}

func TestWorkflowID(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	require.Equal(t, "auction-close-11111111-2222-3333-4444-555555555555", WorkflowID(id))
}
