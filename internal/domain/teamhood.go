package domain

// Teamhood models item dependencies as directed edges carrying one of
// four precedence relations. The strings below are the exact values
// the API accepts in blocking and waiting edge lists.
const (
	DependencyFinishToStart  = "FinishToStart"
	DependencyStartToStart   = "StartToStart"
	DependencyFinishToFinish = "FinishToFinish"
	DependencyStartToFinish  = "StartToFinish"
)

// DependencyTypes lists every accepted precedence relation, in the
// order they appear in tool schemas.
var DependencyTypes = []string{
	DependencyFinishToStart,
	DependencyStartToStart,
	DependencyFinishToFinish,
	DependencyStartToFinish,
}

// ValidDependencyType reports whether t names a known precedence relation.
func ValidDependencyType(t string) bool {
	for _, dt := range DependencyTypes {
		if t == dt {
			return true
		}
	}
	return false
}
