// Package billing holds subscription plan quotas and catalog data.
package billing

import "github.com/gperojohn83-art/Construction/internal/models"

type Resource string

const (
	ResourceProjects Resource = "projects"
	ResourceUsers    Resource = "users"
)

// Unlimited marks a quota without an upper bound.
const Unlimited = -1

const gib int64 = 1 << 30

type limits struct {
	projects int
	users    int
	storage  int64
}

func limitsFor(plan models.Plan) (limits, bool) {
	switch plan {
	case models.PlanFree:
		return limits{projects: 2, users: 3, storage: 1 * gib}, true
	case models.PlanPro:
		return limits{projects: 10, users: Unlimited, storage: 50 * gib}, true
	case models.PlanEnterprise:
		return limits{projects: Unlimited, users: Unlimited, storage: 500 * gib}, true
	}
	return limits{}, false
}

// Limit returns the maximum number of resources the plan allows, Unlimited
// when unbounded, and 0 for unknown plans or resources.
func Limit(plan models.Plan, resource Resource) int {
	l, ok := limitsFor(plan)
	if !ok {
		return 0
	}
	switch resource {
	case ResourceProjects:
		return l.projects
	case ResourceUsers:
		return l.users
	}
	return 0
}

// WithinLimit reports whether one more resource may be created when the
// organization already has current of them. Unknown plans deny.
func WithinLimit(plan models.Plan, resource Resource, current int) bool {
	max := Limit(plan, resource)
	if max == Unlimited {
		return true
	}
	return current < max
}

// StorageQuota returns the document storage allowance in bytes.
func StorageQuota(plan models.Plan) int64 {
	l, ok := limitsFor(plan)
	if !ok {
		return 0
	}
	return l.storage
}
