package migration

import (
	checkoutdomain "github.com/smallbiznis/trueup/internal/checkout/domain"
	"github.com/smallbiznis/trueup/internal/config"
	invoicedomain "github.com/smallbiznis/trueup/internal/invoice/domain"
	payoutdomain "github.com/smallbiznis/trueup/internal/payoutaccount/domain"
	subscriptiondomain "github.com/smallbiznis/trueup/internal/subscription/domain"
	workorderdomain "github.com/smallbiznis/trueup/internal/workorder/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		return conn.AutoMigrate(
			&subscriptiondomain.Subscription{},
			&payoutdomain.PayoutAccount{},
			&workorderdomain.WorkOrder{},
			&invoicedomain.Invoice{},
			&checkoutdomain.BillingIdentity{},
		)
	}),
)
