package scheduling

import "time"

type AvailabilityInput struct {
	ClinicID   uint
	EmployeeID uint
	Date       time.Time
}

// SlotStatus é um horário agendável anotado com a ocupação atual.
// Slot ocupado continua na lista: a política é avisar, não bloquear.
type SlotStatus struct {
	Hour     string `json:"hour"`
	Occupied bool   `json:"occupied"`
}
