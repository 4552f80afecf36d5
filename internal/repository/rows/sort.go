package rows

import (
	"cmp"
	"slices"
)

func sortSubTasks(children []SubTaskRow) {
	slices.SortStableFunc(children, func(a, b SubTaskRow) int {
		return cmp.Compare(a.Position, b.Position)
	})
}

// SortActivityNewestFirst: сначала новые; при равном времени позже добавленная запись идёт раньше.
func SortActivityNewestFirst(entries []ActivityRow) {
	slices.Reverse(entries)
	slices.SortStableFunc(entries, func(a, b ActivityRow) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}
