package billing_fx

import (
	"os"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"rolepeek/internal/api/controllers"
	"rolepeek/internal/repositories"
	"rolepeek/internal/services"
)

var Module = fx.Provide(
	provideSubscriptionRepo,
	provideUsageRepo,
	providePlanCatalog,
	provideProviderFetcher,
	provideReconciler,
	provideEntitlementService,
	provideUsageMeter,
	provideSubscriptionService,
	provideSubscriptionController,
	provideCommerceWebhookController,
	provideStripeWebhookController)

func provideSubscriptionRepo(db *gorm.DB) repositories.ISubscriptionRepository {
	return repositories.NewSubscriptionRepository(db)
}

func provideUsageRepo(db *gorm.DB) repositories.IUsageRepository {
	return repositories.NewUsageRepository(db)
}

func providePlanCatalog() services.PlanCatalogInterface {
	return services.NewPlanCatalog()
}

func provideProviderFetcher() services.ProviderSubscriptionFetcher {
	return services.NewStripeSubscriptionFetcher(os.Getenv("STRIPE_API_KEY"))
}

func provideReconciler(
	subscriptionRepo repositories.ISubscriptionRepository,
	accountRepo repositories.AccountRepository,
	catalog services.PlanCatalogInterface,
	fetcher services.ProviderSubscriptionFetcher,
) services.ReconcilerInterface {
	return services.NewReconciler(subscriptionRepo, accountRepo, catalog, fetcher)
}

func provideEntitlementService(
	subscriptionRepo repositories.ISubscriptionRepository,
	usageRepo repositories.IUsageRepository,
	accountRepo repositories.AccountRepository,
	catalog services.PlanCatalogInterface,
) services.EntitlementServiceInterface {
	return services.NewEntitlementService(subscriptionRepo, usageRepo, accountRepo, catalog)
}

func provideUsageMeter(usageRepo repositories.IUsageRepository) services.UsageMeterInterface {
	return services.NewUsageMeter(usageRepo)
}

func provideSubscriptionService(
	subscriptionRepo repositories.ISubscriptionRepository,
	usageRepo repositories.IUsageRepository,
	entitlement services.EntitlementServiceInterface,
	reconciler services.ReconcilerInterface,
) services.SubscriptionServiceInterface {
	return services.NewSubscriptionService(subscriptionRepo, usageRepo, entitlement, reconciler)
}

func provideSubscriptionController(subscriptionService services.SubscriptionServiceInterface) *controllers.SubscriptionController {
	return controllers.NewSubscriptionController(subscriptionService)
}

func provideCommerceWebhookController(reconciler services.ReconcilerInterface) *controllers.CommerceWebhookController {
	return controllers.NewCommerceWebhookController(reconciler)
}

func provideStripeWebhookController(reconciler services.ReconcilerInterface) *controllers.StripeWebhookController {
	return controllers.NewStripeWebhookController(reconciler)
}
