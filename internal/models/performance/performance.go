package performance

type DailyPerformance struct {
	Date           string `json:"date"`
	FormattedDate  string `json:"formatted_date"`
	CompletionRate int    `json:"completion_rate"`
	TotalTasks     int    `json:"total_tasks"`
	CompletedTasks int    `json:"completed_tasks"`
}

// SeriesPoint - то, что уходит в генератор инсайтов.
type SeriesPoint struct {
	Date string `json:"date"`
	Rate int    `json:"rate"`
}

func Series(history []DailyPerformance) []SeriesPoint {
	points := make([]SeriesPoint, len(history))
	for i, h := range history {
		points[i] = SeriesPoint{Date: h.Date, Rate: h.CompletionRate}
	}
	return points
}

// AverageRate - округлённое среднее, 0 для пустого ряда.
func AverageRate(points []SeriesPoint) int {
	if len(points) == 0 {
		return 0
	}
	sum := 0
	for _, p := range points {
		sum += p.Rate
	}
	return (2*sum + len(points)) / (2 * len(points))
}
