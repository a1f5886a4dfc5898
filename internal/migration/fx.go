package migration

import (
	batchdomain "github.com/smallbiznis/taxdoc/internal/batch/domain"
	"github.com/smallbiznis/taxdoc/internal/config"
	customerdomain "github.com/smallbiznis/taxdoc/internal/customer/domain"
	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
	orderdomain "github.com/smallbiznis/taxdoc/internal/order/domain"
	"github.com/smallbiznis/taxdoc/internal/seed"
	seqdomain "github.com/smallbiznis/taxdoc/internal/sequence/domain"
	tenantdomain "github.com/smallbiznis/taxdoc/internal/tenant/domain"
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
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres deployments (local sqlite, mysql) fall back to
			// the model-driven schema.
			if err := conn.AutoMigrate(
				&tenantdomain.Settings{},
				&customerdomain.Customer{},
				&orderdomain.Order{},
				&orderdomain.OrderItem{},
				&seqdomain.DocumentSequence{},
				&documentdomain.Document{},
				&batchdomain.Log{},
			); err != nil {
				return err
			}
		}

		if cfg.Environment == "development" {
			return seed.EnsureDefaultTenant(conn)
		}
		return nil
	}),
)
