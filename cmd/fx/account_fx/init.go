package account_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"rolepeek/internal/api/controllers"
	"rolepeek/internal/repositories"
	"rolepeek/internal/services"
)

var Module = fx.Provide(
	provideAccountRepo, provideAccountService, provideAccountController)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideAccountService(
	accountRepo repositories.AccountRepository,
	reconciler services.ReconcilerInterface,
	entitlement services.EntitlementServiceInterface,
) services.AccountServiceInterface {
	return services.NewAccountService(accountRepo, reconciler, entitlement)
}

func provideAccountController(accountService services.AccountServiceInterface) *controllers.AccountController {
	return controllers.NewAccountController(accountService)
}
