package scheduling

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

// Faixa de expediente em relógio de parede, "15:04"
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WorkHours mapeia dia da semana ("monday"...) para as faixas do
// expediente do profissional naquele dia
type WorkHours map[string][]TimeRange

func ParseWorkHours(raw datatypes.JSON) (WorkHours, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var wh WorkHours
	if err := json.Unmarshal(raw, &wh); err != nil {
		return nil, err
	}
	return wh, nil
}

func weekdayKey(date time.Time) string {
	return strings.ToLower(date.Weekday().String())
}

// minuteOf converte "15:04" em minutos desde meia-noite
func minuteOf(hm string) int {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return -1
	}
	return t.Hour()*60 + t.Minute()
}

// ValidHour verifica se o valor está no formato de hora "15:04"
func ValidHour(hm string) bool {
	return minuteOf(hm) >= 0
}

// Allows informa se hour cai em alguma faixa configurada para o dia.
// O início é inclusivo e o fim exclusivo: um expediente 08:00–12:00
// aceita 11:30 e rejeita 12:00.
//
// Sem work hours configurado o profissional é sempre disponível
// (default permissivo).
func (wh WorkHours) Allows(date time.Time, hour string) bool {
	if len(wh) == 0 {
		return true
	}

	h := minuteOf(hour)
	if h < 0 {
		return false
	}

	for _, r := range wh[weekdayKey(date)] {
		start := minuteOf(r.Start)
		end := minuteOf(r.End)
		if start < 0 || end < 0 {
			continue
		}
		if h >= start && h < end {
			return true
		}
	}
	return false
}

// IsWithinWorkingHours aplica a regra de expediente ao profissional
func IsWithinWorkingHours(employee *models.User, date time.Time, hour string) (bool, error) {
	wh, err := ParseWorkHours(employee.WorkHours)
	if err != nil {
		return false, err
	}
	return wh.Allows(date, hour), nil
}
