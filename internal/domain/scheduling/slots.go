package scheduling

import (
	"time"

	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

const (
	// Grade horária padrão quando o profissional não configura intervalo
	DefaultIntervalMin = 60

	// Janela operacional da clínica quando não configurada
	DefaultOpeningTime = "07:00"
	DefaultClosingTime = "20:00"
)

// AvailableSlots gera a sequência ordenada de horários agendáveis do
// profissional na data: candidatos da abertura ao fechamento da
// clínica, passo de AppointmentInterval minutos, filtrados pelo
// expediente. Função pura dos insumos; conflitos com agendamentos
// existentes são assunto de CheckConflict.
func AvailableSlots(
	employee *models.User,
	clinic *models.Clinic,
	date time.Time,
) ([]string, error) {

	interval := employee.AppointmentInterval
	if interval <= 0 {
		interval = DefaultIntervalMin
	}

	opening := clinic.OpeningTime
	if opening == "" {
		opening = DefaultOpeningTime
	}
	closing := clinic.ClosingTime
	if closing == "" {
		closing = DefaultClosingTime
	}

	wh, err := ParseWorkHours(employee.WorkHours)
	if err != nil {
		return nil, err
	}

	open := minuteOf(opening)
	close := minuteOf(closing)
	if open < 0 || close < 0 {
		open = minuteOf(DefaultOpeningTime)
		close = minuteOf(DefaultClosingTime)
	}

	var slots []string
	for cur := open; cur < close; cur += interval {
		hour := time.Date(
			date.Year(), date.Month(), date.Day(),
			cur/60, cur%60, 0, 0,
			date.Location(),
		).Format("15:04")

		if wh.Allows(date, hour) {
			slots = append(slots, hour)
		}
	}

	return slots, nil
}

// ConflictReport lista os agendamentos que já ocupam o slot. O motor
// reporta e não bloqueia: encaixe duplo é decisão do chamador, com
// confirmação explícita.
type ConflictReport struct {
	Occupied    bool
	Conflicting []models.Appointment
}

// CheckConflict: o slot está ocupado se existir agendamento não
// cancelado do profissional naquele dia e hora exatos. Granularidade
// de slot, de propósito: não é cálculo de sobreposição de intervalo.
func CheckConflict(
	employeeID uint,
	date time.Time,
	hour string,
	appointments []models.Appointment,
) ConflictReport {

	day := date.Format("2006-01-02")

	var report ConflictReport
	for _, ap := range appointments {
		if ap.EmployeeID != employeeID {
			continue
		}
		if ap.Status == string(StatusCancelled) {
			continue
		}
		if ap.Date.Format("2006-01-02") != day || ap.Date.Format("15:04") != hour {
			continue
		}
		report.Conflicting = append(report.Conflicting, ap)
	}

	report.Occupied = len(report.Conflicting) > 0
	return report
}
