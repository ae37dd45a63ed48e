package billing

import "github.com/gperojohn83-art/Construction/internal/models"

type PlanInfo struct {
	Plan         models.Plan `json:"plan"`
	Name         string      `json:"name"`
	MaxProjects  int         `json:"maxProjects"`
	MaxUsers     int         `json:"maxUsers"`
	StorageBytes int64       `json:"storageBytes"`
	PriceMonthly int         `json:"priceMonthly"`
	PriceYearly  int         `json:"priceYearly"`
	Features     []string    `json:"features"`
}

// Describe returns the catalog entry of a plan. Prices are whole euros per month.
func Describe(plan models.Plan) (PlanInfo, bool) {
	info := PlanInfo{
		Plan:         plan,
		MaxProjects:  Limit(plan, ResourceProjects),
		MaxUsers:     Limit(plan, ResourceUsers),
		StorageBytes: StorageQuota(plan),
	}
	switch plan {
	case models.PlanFree:
		info.Name = "Free"
		info.Features = []string{"2 projects", "3 users", "Core tools", "1GB storage"}
	case models.PlanPro:
		info.Name = "Pro"
		info.PriceMonthly, info.PriceYearly = 49, 39
		info.Features = []string{"10 projects", "Unlimited users", "Gantt chart", "PDF export", "50GB storage", "Priority support"}
	case models.PlanEnterprise:
		info.Name = "Enterprise"
		info.PriceMonthly, info.PriceYearly = 149, 119
		info.Features = []string{"Unlimited projects", "Unlimited users", "All features", "500GB storage", "Dedicated support", "Custom integrations"}
	default:
		return PlanInfo{}, false
	}
	return info, true
}
