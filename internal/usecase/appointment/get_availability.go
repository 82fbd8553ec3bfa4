package appointment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/VitalisClinicas/clinic-scheduler/internal/cache"
	domain "github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
)

type GetAvailability struct {
	repo  domain.Repository
	cache *cache.AvailabilityCache
}

func NewGetAvailability(
	repo domain.Repository,
	cache *cache.AvailabilityCache,
) *GetAvailability {
	return &GetAvailability{repo: repo, cache: cache}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.SlotStatus, error) {

	day := in.Date.Format("2006-01-02")

	if raw, ok := uc.cache.Get(ctx, in.EmployeeID, day); ok {
		var cached []domain.SlotStatus
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	clinic, err := uc.repo.GetClinicByID(ctx, in.ClinicID)
	if err != nil {
		return nil, err
	}

	employee, err := uc.repo.GetEmployee(ctx, in.ClinicID, in.EmployeeID)
	if err != nil {
		return nil, notFoundOr(err, "employee", in.EmployeeID)
	}

	slots, err := domain.AvailableSlots(employee, clinic, in.Date)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(
		in.Date.Year(), in.Date.Month(), in.Date.Day(),
		0, 0, 0, 0,
		in.Date.Location(),
	)
	appointments, err := uc.repo.ListAppointmentsForDay(
		ctx,
		in.EmployeeID,
		dayStart,
		dayStart.Add(24*time.Hour),
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SlotStatus, 0, len(slots))
	for _, hour := range slots {
		report := domain.CheckConflict(in.EmployeeID, in.Date, hour, appointments)
		out = append(out, domain.SlotStatus{
			Hour:     hour,
			Occupied: report.Occupied,
		})
	}

	if raw, err := json.Marshal(out); err == nil {
		uc.cache.Set(ctx, in.EmployeeID, day, raw)
	}

	return out, nil
}
