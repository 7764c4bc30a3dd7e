package domain

import "strings"

// Catalog is the read-only plan/promo lookup built once at startup and
// passed into the checkout service. Keeping it an explicit value rather
// than package state keeps the flow testable.
type Catalog struct {
	plans         map[string]Plan
	promos        map[string]string
	trialPlanCode string
}

func NewCatalog(plans []Plan, promos map[string]string, trialPlanCode string) *Catalog {
	byCode := make(map[string]Plan, len(plans))
	for _, plan := range plans {
		byCode[plan.Code] = plan
	}
	return &Catalog{
		plans:         byCode,
		promos:        promos,
		trialPlanCode: trialPlanCode,
	}
}

func (c *Catalog) Plan(code string) (Plan, bool) {
	plan, ok := c.plans[code]
	return plan, ok
}

// PromotionID resolves a user-supplied promo code to the processor's
// promotion identifier.
func (c *Catalog) PromotionID(code string) (string, bool) {
	id, ok := c.promos[strings.ToLower(code)]
	return id, ok
}

// TrialDays returns the trial period for a plan; only the designated trial
// plan carries one.
func (c *Catalog) TrialDays(plan Plan) int {
	if plan.Code != c.trialPlanCode {
		return 0
	}
	return plan.TrialDays
}
