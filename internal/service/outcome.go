package service

// Outcome - результат записи без ошибки наружу: сбой уже залогирован.
type Outcome int

const (
	Applied Outcome = iota
	// Missing - цели нет, ничего не сделано
	Missing
	// Failed - хранилище недоступно
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Missing:
		return "missing"
	default:
		return "failed"
	}
}
