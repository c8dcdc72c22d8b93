package store

import (
	"testing"

	"tidywork/internal/booking/domain"

	"github.com/stretchr/testify/require"
)

func booking(id string, status domain.Status, version int64) *domain.Booking {
	return &domain.Booking{
		ID:           id,
		CustomerID:   "c1",
		Status:       status,
		WorkerPayout: 80,
		Version:      version,
	}
}

func ownedBooking(id, worker string, status domain.Status, version int64) *domain.Booking {
	b := booking(id, status, version)
	b.CleanerID = &worker
	return b
}

func TestMergeInsertsByPartition(t *testing.T) {
	st := NewStore("w1")

	require.Equal(t, MergeInserted, st.Merge(booking("b1", domain.StatusOffered, 1)))
	require.Equal(t, MergeInserted, st.Merge(ownedBooking("b2", "w1", domain.StatusAccepted, 1)))
	require.Equal(t, MergeInserted, st.Merge(ownedBooking("b3", "w1", domain.StatusCompleted, 1)))

	offered, active, history := st.Snapshot()
	require.Len(t, offered, 1)
	require.Len(t, active, 1)
	require.Len(t, history, 1)
}

func TestMergeVersionMonotonicity(t *testing.T) {
	st := NewStore("w1")
	st.Merge(booking("b1", domain.StatusOffered, 3))

	// событие со старой версией — no-op
	require.Equal(t, MergeIgnored, st.Merge(booking("b1", domain.StatusOffered, 2)))
	// с той же версией — no-op (незавершенная оптимистичная мутация не затирается)
	require.Equal(t, MergeIgnored, st.Merge(ownedBooking("b1", "w2", domain.StatusAccepted, 3)))
	// с более новой — перезапись и перенос между разделами
	require.Equal(t, MergeUpdated, st.Merge(ownedBooking("b1", "w1", domain.StatusAccepted, 4)))

	p, ok := st.PartitionOf("b1")
	require.True(t, ok)
	require.Equal(t, domain.PartitionActive, p)

	b, ok := st.Get("b1")
	require.True(t, ok)
	require.Equal(t, int64(4), b.Version)
}

// Применение событий вне порядка доставки с неубывающими версиями дает то же
// финальное состояние, что и по порядку.
func TestMergeOutOfOrderDelivery(t *testing.T) {
	events := []*domain.Booking{
		ownedBooking("b1", "w1", domain.StatusAccepted, 2),
		ownedBooking("b1", "w1", domain.StatusOnTheWay, 3),
		ownedBooking("b1", "w1", domain.StatusInProgress, 5),
	}

	inOrder := NewStore("w1")
	for _, e := range events {
		inOrder.Merge(e)
	}

	shuffled := NewStore("w1")
	shuffled.Merge(events[2])
	shuffled.Merge(events[0])
	shuffled.Merge(events[1])

	a, _ := inOrder.Get("b1")
	b, _ := shuffled.Get("b1")
	require.Equal(t, a, b)
	require.Equal(t, domain.StatusInProgress, b.Status)
}

func TestMergeMovesToHistoryWithoutRemoval(t *testing.T) {
	st := NewStore("w1")
	st.Merge(ownedBooking("b1", "w1", domain.StatusInProgress, 4))

	st.Merge(ownedBooking("b1", "w1", domain.StatusCompleted, 5))

	p, ok := st.PartitionOf("b1")
	require.True(t, ok, "reconciliation must not remove the booking")
	require.Equal(t, domain.PartitionHistory, p)
}

func TestApplyOptimisticAndRestore(t *testing.T) {
	st := NewStore("w1")
	snap := booking("b1", domain.StatusOffered, 1)
	st.Merge(snap)

	next := ownedBooking("b1", "w1", domain.StatusAccepted, 2)
	st.ApplyOptimistic(next, nil)

	p, _ := st.PartitionOf("b1")
	require.Equal(t, domain.PartitionActive, p)

	// откат: бронирование байт-в-байт равно снапшоту, включая раздел
	require.True(t, st.Restore(snap, next.Version, nil))
	restored, ok := st.Get("b1")
	require.True(t, ok)
	require.Equal(t, snap, restored)
	p, _ = st.PartitionOf("b1")
	require.Equal(t, domain.PartitionOffered, p)
}

func TestRestoreSkippedAfterReconciliation(t *testing.T) {
	st := NewStore("w1")
	snap := booking("b1", domain.StatusOffered, 1)
	st.Merge(snap)

	next := ownedBooking("b1", "w1", domain.StatusAccepted, 2)
	st.ApplyOptimistic(next, nil)

	// сервер успел прислать более новое состояние
	server := ownedBooking("b1", "w2", domain.StatusAccepted, 7)
	require.Equal(t, MergeUpdated, st.Merge(server))

	// откат не должен воскресить устаревший снапшот
	require.False(t, st.Restore(snap, next.Version, nil))
	cur, _ := st.Get("b1")
	require.Equal(t, int64(7), cur.Version)
}

func TestRestoreRevertsEarnings(t *testing.T) {
	st := NewStore("w1")
	snap := ownedBooking("b1", "w1", domain.StatusInProgress, 4)
	st.Merge(snap)

	next := ownedBooking("b1", "w1", domain.StatusCompleted, 5)
	delta := &EarningsDelta{Payout: 80, Completed: 1}
	st.ApplyOptimistic(next, delta)
	require.Equal(t, 80.0, st.Profile().TotalEarnings)
	require.Equal(t, 1, st.Profile().CompletedBookings)

	require.True(t, st.Restore(snap, next.Version, delta))
	require.Equal(t, 0.0, st.Profile().TotalEarnings)
	require.Equal(t, 0, st.Profile().CompletedBookings)
}

func TestRestoreKeepsEarningsWhenServerCompleted(t *testing.T) {
	st := NewStore("w1")
	snap := ownedBooking("b1", "w1", domain.StatusInProgress, 4)
	st.Merge(snap)

	next := ownedBooking("b1", "w1", domain.StatusCompleted, 5)
	delta := &EarningsDelta{Payout: 80, Completed: 1}
	st.ApplyOptimistic(next, delta)

	// сервер сам завершил бронирование, пока удаленный вызов был в полете
	st.Merge(ownedBooking("b1", "w1", domain.StatusCompleted, 9))

	// откат пропущен, и начисление завершенной работы остается
	require.False(t, st.Restore(snap, next.Version, delta))
	require.Equal(t, 80.0, st.Profile().TotalEarnings)
	require.Equal(t, 1, st.Profile().CompletedBookings)
}

func TestRestoreRevertsEarningsWhenServerDiverged(t *testing.T) {
	st := NewStore("w1")
	snap := ownedBooking("b1", "w1", domain.StatusInProgress, 4)
	st.Merge(snap)

	next := ownedBooking("b1", "w1", domain.StatusCompleted, 5)
	delta := &EarningsDelta{Payout: 80, Completed: 1}
	st.ApplyOptimistic(next, delta)

	// сервер отменил — оптимистичное завершение не состоялось
	st.Merge(ownedBooking("b1", "w1", domain.StatusCancelled, 9))

	require.False(t, st.Restore(snap, next.Version, delta))
	require.Equal(t, 0.0, st.Profile().TotalEarnings)
	require.Equal(t, 0, st.Profile().CompletedBookings)
}

func TestDropAndReinsertOffered(t *testing.T) {
	st := NewStore("w1")
	st.Merge(booking("b1", domain.StatusOffered, 1))

	snap, ok := st.DropOffered("b1")
	require.True(t, ok)
	_, found := st.Get("b1")
	require.False(t, found)

	require.True(t, st.ReinsertOffered(snap))
	p, _ := st.PartitionOf("b1")
	require.Equal(t, domain.PartitionOffered, p)
}

func TestReinsertOfferedSkippedAfterNewerServerState(t *testing.T) {
	st := NewStore("w1")
	st.Merge(booking("b1", domain.StatusOffered, 1))

	snap, _ := st.DropOffered("b1")
	st.Merge(ownedBooking("b1", "w2", domain.StatusAccepted, 3))

	require.False(t, st.ReinsertOffered(snap))
	cur, _ := st.Get("b1")
	require.Equal(t, domain.StatusAccepted, cur.Status)
}

func TestDiscard(t *testing.T) {
	st := NewStore("w1")
	st.Merge(booking("b1", domain.StatusOffered, 1))
	next := ownedBooking("b1", "w1", domain.StatusAccepted, 2)
	st.ApplyOptimistic(next, nil)

	require.True(t, st.Discard("b1", next.Version))
	_, found := st.Get("b1")
	require.False(t, found)
}

func TestMutationInFlightFlag(t *testing.T) {
	st := NewStore("w1")

	require.NoError(t, st.BeginMutation("b1"))
	require.ErrorIs(t, st.BeginMutation("b1"), domain.ErrMutationInFlight)
	// другой id независим
	require.NoError(t, st.BeginMutation("b2"))

	st.EndMutation("b1")
	require.NoError(t, st.BeginMutation("b1"))
}

func TestSetOnline(t *testing.T) {
	st := NewStore("w1")
	require.False(t, st.Profile().Online)
	st.SetOnline(true)
	require.True(t, st.Profile().Online)
}
