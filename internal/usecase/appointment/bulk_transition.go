package appointment

import (
	"context"

	domain "github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
)

type BulkFailure struct {
	AppointmentID uint   `json:"appointment_id"`
	Reason        string `json:"reason"`

	Err error `json:"-"`
}

type BulkResult struct {
	Succeeded []uint        `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// BulkTransition aplica uma transição a um lote de agendamentos
// (fechamento do dia). Falha em um item não interrompe os demais; o
// chamador recebe o relatório completo.
type BulkTransition struct {
	transition *TransitionAppointment
}

func NewBulkTransition(transition *TransitionAppointment) *BulkTransition {
	return &BulkTransition{transition: transition}
}

func (uc *BulkTransition) ApplyToMany(
	ctx context.Context,
	clinicID uint,
	appointmentIDs []uint,
	newStatus domain.Status,
) BulkResult {

	result := BulkResult{
		Succeeded: make([]uint, 0, len(appointmentIDs)),
	}

	for _, id := range appointmentIDs {
		if _, err := uc.transition.Execute(ctx, clinicID, id, newStatus); err != nil {
			result.Failed = append(result.Failed, BulkFailure{
				AppointmentID: id,
				Reason:        err.Error(),
				Err:           err,
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	return result
}
