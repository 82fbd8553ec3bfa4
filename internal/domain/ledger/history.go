package ledger

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/httperr"
)

// History mantém as entradas do ledger em ordem de inserção com um
// índice por appointment_id, o que torna a invariante "uma entrada
// por agendamento" verificável mecanicamente em vez de depender de
// varredura linear.
type History struct {
	entries       []Entry
	byAppointment map[uint]int
}

func ParseHistory(raw datatypes.JSON) (*History, error) {
	h := &History{byAppointment: make(map[uint]int)}

	if len(raw) == 0 {
		return h, nil
	}

	if err := json.Unmarshal(raw, &h.entries); err != nil {
		return nil, err
	}

	for i, e := range h.entries {
		if _, dup := h.byAppointment[e.AppointmentID]; dup && e.AppointmentID != 0 {
			return nil, httperr.ErrConsistency(
				fmt.Sprintf("duplicated history entry for appointment %d", e.AppointmentID),
			)
		}
		h.byAppointment[e.AppointmentID] = i
	}

	return h, nil
}

func (h *History) JSON() (datatypes.JSON, error) {
	if h.entries == nil {
		return datatypes.JSON([]byte("[]")), nil
	}

	b, err := json.Marshal(h.entries)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func (h *History) Len() int {
	return len(h.entries)
}

// Entries devolve a sequência ordenada, sem expor o armazenamento
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Get(appointmentID uint) (Entry, bool) {
	i, ok := h.byAppointment[appointmentID]
	if !ok {
		return Entry{}, false
	}
	return h.entries[i], true
}

func (h *History) Append(e Entry) error {
	if _, dup := h.byAppointment[e.AppointmentID]; dup {
		return httperr.ErrConsistency(
			fmt.Sprintf("history already has an entry for appointment %d", e.AppointmentID),
		)
	}

	h.entries = append(h.entries, e)
	h.byAppointment[e.AppointmentID] = len(h.entries) - 1
	return nil
}

// SetStatus atualiza in place o status da entrada do agendamento
func (h *History) SetStatus(appointmentID uint, status string) bool {
	i, ok := h.byAppointment[appointmentID]
	if !ok {
		return false
	}
	h.entries[i].Status = status
	return true
}

func (h *History) RemoveByAppointment(appointmentID uint) bool {
	i, ok := h.byAppointment[appointmentID]
	if !ok {
		return false
	}
	h.removeIndex(i)
	return true
}

// RemoveAt apaga a entrada na posição dada (correção administrativa)
func (h *History) RemoveAt(index int) error {
	if index < 0 || index >= len(h.entries) {
		return httperr.ErrConsistency(
			fmt.Sprintf("history index %d out of range (len %d)", index, len(h.entries)),
		)
	}
	h.removeIndex(index)
	return nil
}

func (h *History) removeIndex(i int) {
	h.entries = append(h.entries[:i], h.entries[i+1:]...)
	h.reindex()
}

func (h *History) reindex() {
	h.byAppointment = make(map[uint]int, len(h.entries))
	for i, e := range h.entries {
		h.byAppointment[e.AppointmentID] = i
	}
}

// CompletedCount conta as sessões consumidas de um serviço
func (h *History) CompletedCount(serviceID uint) int {
	n := 0
	for _, e := range h.entries {
		if e.ServiceID == serviceID && e.Status == string(scheduling.StatusCompleted) {
			n++
		}
	}
	return n
}

// CompletedTotal conta as sessões consumidas do pacote inteiro
func (h *History) CompletedTotal() int {
	n := 0
	for _, e := range h.entries {
		if e.Status == string(scheduling.StatusCompleted) {
			n++
		}
	}
	return n
}
