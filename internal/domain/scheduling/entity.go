package scheduling

import (
	"time"

	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

// NewFromReschedule monta o novo agendamento de um reagendamento,
// carregando cliente/serviço/profissional e o vínculo com o original.
// O agendamento original nunca é reaproveitado.
func NewFromReschedule(orig *models.Appointment, date time.Time, notes string) *models.Appointment {
	return &models.Appointment{
		ClinicID:              orig.ClinicID,
		EmployeeID:            orig.EmployeeID,
		ClientID:              orig.ClientID,
		ServiceID:             orig.ServiceID,
		Date:                  date,
		Status:                string(InitialStatus()),
		Notes:                 notes,
		ClientPackageID:       orig.ClientPackageID,
		PendingServiceID:      orig.PendingServiceID,
		DependentIndex:        orig.DependentIndex,
		OriginalAppointmentID: &orig.ID,
	}
}
