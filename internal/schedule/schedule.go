// Package schedule решает, видна ли задача в заданный день, и строит ключи дат.
//
// Все вычисления идут в одной таймзоне календаря: и ключ даты, и день недели,
// и число месяца. Смешивать UTC-ключи с локальными днями недели нельзя:
// около полуночи задача "переезжает" на соседний день.
package schedule

import (
	"time"

	"taskFlow/internal/models/task"
)

const DateKeyLayout = "2006-01-02"

// DisplayLayout - короткая подпись дня для графиков ("Oct 19").
const DisplayLayout = "Jan 2"

type Calendar struct {
	loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// LoadCalendar принимает IANA-имя зоны; пустая строка - UTC.
func LoadCalendar(name string) (Calendar, error) {
	if name == "" {
		return NewCalendar(time.UTC), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Calendar{}, err
	}
	return NewCalendar(loc), nil
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

func (c Calendar) DateKey(t time.Time) string {
	return t.In(c.Location()).Format(DateKeyLayout)
}

// Today - полночь текущего дня в зоне календаря.
func (c Calendar) Today(now time.Time) time.Time {
	y, m, d := now.In(c.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location())
}

// Window возвращает дни [today-(days-1), today] от старых к новым.
func (c Calendar) Window(now time.Time, days int) []time.Time {
	if days <= 0 {
		return nil
	}
	today := c.Today(now)
	res := make([]time.Time, 0, days)
	for i := days - 1; i >= 0; i-- {
		res = append(res, today.AddDate(0, 0, -i))
	}
	return res
}

// IsVisibleOnDate - должна ли задача показываться в день date.
//
// Monthly без клампинга: monthDay=31 в 30-дневном месяце не срабатывает вовсе.
// Неизвестная частота видна всегда: из-за битых данных задача не пропадает молча.
func (c Calendar) IsVisibleOnDate(t *task.Task, date time.Time) bool {
	local := date.In(c.Location())

	switch t.Frequency {
	case task.FrequencyDaily:
		return true
	case task.FrequencyWeekly:
		return t.WeekDay != nil && int(local.Weekday()) == *t.WeekDay
	case task.FrequencyMonthly:
		return t.MonthDay != nil && local.Day() == *t.MonthDay
	case task.FrequencyOnce:
		return t.ScheduledDate != nil && *t.ScheduledDate == local.Format(DateKeyLayout)
	default:
		return true
	}
}

// ValidDateKey проверяет формат YYYY-MM-DD.
func ValidDateKey(key string) bool {
	_, err := time.Parse(DateKeyLayout, key)
	return err == nil
}
