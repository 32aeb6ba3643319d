package tasks

import (
	"strconv"
	"strings"

	"github.com/benvon/focusdock/internal/models"
)

// Find resolves a user reference to a task. Tried in order: a task whose id
// contains the query, a 1-based position among open tasks, then a task whose
// title contains the query. Matching is case-insensitive on the query.
func Find(query string, tasks []models.Task) (models.Task, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return models.Task{}, false
	}

	for _, t := range tasks {
		if strings.Contains(t.ID, q) {
			return t, true
		}
	}

	if n, err := strconv.Atoi(q); err == nil && n > 0 {
		open := models.OpenTasks(tasks)
		if n <= len(open) {
			return open[n-1], true
		}
	}

	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), q) {
			return t, true
		}
	}

	return models.Task{}, false
}
