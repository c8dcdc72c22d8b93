package remoteapi

import (
	"context"
	"sync"
	"time"

	"tidywork/internal/booking/domain"

	"github.com/google/uuid"
)

// demoService — встроенная демо-реализация удаленного стора. Держит пару
// офферов в памяти и честно отыгрывает условную запись клейма, чтобы агент
// можно было прогнать без бэкенда.
type demoService struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking
	workerID string
}

func newDemoService(workerID string) *demoService {
	d := &demoService{
		bookings: make(map[string]*domain.Booking),
		workerID: workerID,
	}
	now := time.Now().UTC()
	for i, price := range []float64{80, 120} {
		b := &domain.Booking{
			ID:              uuid.New().String(),
			CustomerID:      uuid.New().String(),
			Status:          domain.StatusOffered,
			ScheduledAt:     now.Add(time.Duration(i+1) * time.Hour),
			DurationMinutes: 120,
			TotalPrice:      price,
			WorkerPayout:    price * 0.8,
			IsInstant:       i == 0,
			Version:         1,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		d.bookings[b.ID] = b
	}
	return d
}

func (d *demoService) ListOffered(ctx context.Context, workerID string) ([]domain.Booking, error) {
	return d.listByPartition(domain.PartitionOffered), nil
}

func (d *demoService) ListActive(ctx context.Context, workerID string) ([]domain.Booking, error) {
	return d.listByPartition(domain.PartitionActive), nil
}

func (d *demoService) ListHistory(ctx context.Context, workerID string) ([]domain.Booking, error) {
	return d.listByPartition(domain.PartitionHistory), nil
}

func (d *demoService) listByPartition(p domain.Partition) []domain.Booking {
	d.mu.Lock()
	defer d.mu.Unlock()
	var res []domain.Booking
	for _, b := range d.bookings {
		if b.Status.Partition() == p {
			res = append(res, *b.Clone())
		}
	}
	return res
}

func (d *demoService) GetJob(ctx context.Context, jobID string) (*domain.Booking, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.bookings[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b.Clone(), nil
}

func (d *demoService) AcceptJob(ctx context.Context, jobID, workerID string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.bookings[jobID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	// Условная запись: клейм успешен только пока никто не назначен.
	if b.CleanerID != nil {
		return 0, domain.ErrConflict
	}
	id := workerID
	b.CleanerID = &id
	b.Status = domain.StatusAccepted
	b.Version++
	b.UpdatedAt = time.Now().UTC()
	return b.Version, nil
}

func (d *demoService) DeclineJob(ctx context.Context, jobID, workerID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.bookings[jobID]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (d *demoService) AdvanceStatus(ctx context.Context, jobID, workerID string, target domain.Status) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.bookings[jobID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if !b.OwnedBy(workerID) {
		return 0, domain.ErrForbidden
	}
	if !domain.CanTransition(b.Status, target) {
		return 0, domain.ErrConflict
	}
	b.Status = target
	b.Version++
	b.UpdatedAt = time.Now().UTC()
	return b.Version, nil
}
