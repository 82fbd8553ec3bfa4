package ledger

import "time"

// Entry é uma linha do ledger de sessões de um pacote: existe no
// máximo uma por agendamento já vinculado ao pacote, e o status
// espelha sempre o status atual do agendamento. Só "completed"
// conta como sessão consumida.
type Entry struct {
	ServiceID     uint      `json:"service_id"`
	EmployeeID    uint      `json:"employee_id"`
	Date          time.Time `json:"date"`
	AppointmentID uint      `json:"appointment_id"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
}

// PackageService é um item serviço/quantidade de um pacote
type PackageService struct {
	ServiceID uint `json:"service_id"`
	Quantity  int  `json:"quantity"`
}

// Snapshot é a cópia imutável da lista de serviços do catálogo
// feita na venda
type Snapshot struct {
	Services []PackageService `json:"services"`
}
