package lifecycle

import "dispatchBack/internal/models"

// Legal forward transitions of a request. Anything not listed here is
// rejected, including backward moves and status skips.
var transitions = map[string]map[string]struct{}{
	models.StatusPending: {
		models.StatusAccepted:  {},
		models.StatusCancelled: {},
	},
	models.StatusAccepted: {
		models.StatusInProgress: {},
	},
	models.StatusInProgress: {
		models.StatusCompleted: {},
	},
	models.StatusCompleted: {},
	models.StatusCancelled: {},
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to string) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(status string) bool {
	allowed, ok := transitions[status]
	return ok && len(allowed) == 0
}

// KnownStatus reports whether the value is one of the request statuses.
func KnownStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}
