package clock

import "time"

// Clock é a fonte de hora do motor (checagens de conflito e
// expiração). Horários são relógio de parede local, sem conversão
// de fuso.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func System() Clock {
	return systemClock{}
}

// Fixed devolve um relógio congelado, útil em testes
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}
