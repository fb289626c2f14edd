//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"tidebook/internal/infra"
	"tidebook/internal/usecase/queries"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeViewRepo struct {
	view  *queries.BookingView
	err   error
	items []*queries.BookingListItem

	gotLimit  int32
	gotOffset int32
}

func (f *fakeViewRepo) FindByID(_ context.Context, _ uuid.UUID) (*queries.BookingView, error) {
	return f.view, f.err
}

func (f *fakeViewRepo) FindByUserID(_ context.Context, _ uuid.UUID, limit, offset int32) ([]*queries.BookingListItem, error) {
	f.gotLimit, f.gotOffset = limit, offset
	return f.items, nil
}

func (f *fakeViewRepo) FindBySchoolID(_ context.Context, _ uuid.UUID, _ *string, limit, offset int32) ([]*queries.BookingListItem, error) {
	f.gotLimit, f.gotOffset = limit, offset
	return f.items, nil
}

func (f *fakeViewRepo) FindSlotAvailability(_ context.Context, _ uuid.UUID) (*queries.SlotAvailabilityView, error) {
	return nil, f.err
}

func sampleView(userID, schoolID uuid.UUID) *queries.BookingView {
	return &queries.BookingView{
		ID:           uuid.New(),
		Code:         "TB-1A2B3C4D",
		UserID:       userID,
		SchoolID:     schoolID,
		Participants: 4,
		AmountRupees: 900,
		Status:       "held",
		CreatedAt:    time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestGetForUserReturnsOwnBooking(t *testing.T) {
	userID := uuid.New()
	view := sampleView(userID, uuid.New())
	q := queries.NewBookingQueries(&fakeViewRepo{view: view})

	got, err := q.GetForUser(context.Background(), userID, view.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(view, got); diff != "" {
		t.Errorf("view mismatch (-want +got):\n%s", diff)
	}
}

func TestGetForUserHidesForeignBooking(t *testing.T) {
	view := sampleView(uuid.New(), uuid.New())
	q := queries.NewBookingQueries(&fakeViewRepo{view: view})

	_, err := q.GetForUser(context.Background(), uuid.New(), view.ID)
	assert.ErrorIs(t, err, queries.ErrViewNotFound)
}

func TestGetForSchoolScopesBySchool(t *testing.T) {
	schoolID := uuid.New()
	view := sampleView(uuid.New(), schoolID)
	q := queries.NewBookingQueries(&fakeViewRepo{view: view})

	got, err := q.GetForSchool(context.Background(), schoolID, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, got.ID)

	_, err = q.GetForSchool(context.Background(), uuid.New(), view.ID)
	assert.ErrorIs(t, err, queries.ErrViewNotFound)
}

func TestGetForUserMapsRepoNotFound(t *testing.T) {
	repo := &fakeViewRepo{err: infra.NewRepoErr(infra.KindNotFound, "booking not found")}
	q := queries.NewBookingQueries(repo)

	_, err := q.GetForUser(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, queries.ErrViewNotFound)
}

func TestListByUserDefaultsLimit(t *testing.T) {
	repo := &fakeViewRepo{}
	q := queries.NewBookingQueries(repo)

	_, err := q.ListByUser(context.Background(), uuid.New(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(50), repo.gotLimit)
	assert.Equal(t, int32(10), repo.gotOffset)
}
