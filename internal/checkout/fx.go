package checkout

import (
	"github.com/smallbiznis/trueup/internal/checkout/domain"
	"github.com/smallbiznis/trueup/internal/checkout/service"
	"github.com/smallbiznis/trueup/internal/config"
	"go.uber.org/fx"
)

// NewCatalog builds the plan/promo catalog from startup configuration.
func NewCatalog(cfg config.Config) *domain.Catalog {
	plans := make([]domain.Plan, 0, len(cfg.Plans))
	for _, p := range cfg.Plans {
		plans = append(plans, domain.Plan{
			Code:      p.Code,
			PriceID:   p.PriceID,
			ProductID: p.ProductID,
			TrialDays: p.TrialDays,
		})
	}
	return domain.NewCatalog(plans, cfg.PromoCodes, cfg.TrialPlanCode)
}

var Module = fx.Module("checkout.service",
	fx.Provide(NewCatalog),
	fx.Provide(service.NewService),
)
