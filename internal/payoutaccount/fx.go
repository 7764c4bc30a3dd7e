package payoutaccount

import (
	"github.com/smallbiznis/trueup/internal/payoutaccount/repository"
	"github.com/smallbiznis/trueup/internal/payoutaccount/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payoutaccount.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
