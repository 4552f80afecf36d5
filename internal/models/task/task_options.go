package task

type TaskOption func(*Task)

// New собирает задачу из опций. ID, CreatedAt и CreatedBy проставляет сервис.
func New(title string, frequency Frequency, options ...TaskOption) *Task {
	t := &Task{
		Title:     title,
		Frequency: frequency,
	}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	t.Normalize()
	return t
}

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	if description == "" {
		return nil
	}
	return func(task *Task) {
		task.Description = description
	}
}

func WithScheduledDate(dateKey string) TaskOption {
	if dateKey == "" {
		return nil
	}
	return func(task *Task) {
		task.ScheduledDate = &dateKey
	}
}

func WithWeekDay(day *int) TaskOption {
	if day == nil {
		return nil
	}
	v := *day
	return func(task *Task) {
		task.WeekDay = &v
	}
}

func WithMonthDay(day *int) TaskOption {
	if day == nil {
		return nil
	}
	v := *day
	return func(task *Task) {
		task.MonthDay = &v
	}
}
