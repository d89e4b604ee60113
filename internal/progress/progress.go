// Package progress derives goal completion from its subtask checklist.
package progress

import "tracker/internal/models"

// Percent returns round-half-up(100 * completed / total), or 0 for an empty list.
func Percent(subtasks []models.Subtask) int {
	total := len(subtasks)
	if total == 0 {
		return 0
	}
	done := 0
	for _, s := range subtasks {
		if s.Completed {
			done++
		}
	}
	// floor(100*done/total + 1/2) in integer arithmetic
	return (200*done + total) / (2 * total)
}

// JustCompleted reports the strict rise to 100%. Re-saving a goal that was
// already complete does not count.
func JustCompleted(before, after int) bool {
	return after == 100 && before < 100
}
