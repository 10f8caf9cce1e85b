package services

import (
	"context"

	"github.com/google/uuid"
	"rolepeek/internal/models/db_models"
	"rolepeek/internal/models/response_models"
	"rolepeek/internal/repositories"
	"rolepeek/pkg/utils"
)

type SubscriptionServiceInterface interface {
	GetStatus(ctx context.Context, accountID uuid.UUID) (*response_models.SubscriptionStatusResponse, error)
	SyncFromProvider(ctx context.Context, accountID uuid.UUID) (*response_models.SubscriptionStatusResponse, error)
	GetDebug(ctx context.Context, accountID uuid.UUID) (*response_models.SubscriptionDebugResponse, error)
}

type SubscriptionService struct {
	subscriptionRepo repositories.ISubscriptionRepository
	usageRepo        repositories.IUsageRepository
	entitlement      EntitlementServiceInterface
	reconciler       ReconcilerInterface
}

func NewSubscriptionService(
	subscriptionRepo repositories.ISubscriptionRepository,
	usageRepo repositories.IUsageRepository,
	entitlement EntitlementServiceInterface,
	reconciler ReconcilerInterface,
) SubscriptionServiceInterface {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		usageRepo:        usageRepo,
		entitlement:      entitlement,
		reconciler:       reconciler,
	}
}

func (s *SubscriptionService) GetStatus(ctx context.Context, accountID uuid.UUID) (*response_models.SubscriptionStatusResponse, error) {
	status := s.entitlement.GetStatus(ctx, accountID)
	return &response_models.SubscriptionStatusResponse{
		Subscription: toSubscriptionInfo(status.Subscription),
		Limits:       status.Limits,
	}, nil
}

// SyncFromProvider re-pulls the provider's view of the subscription and
// returns the refreshed status. This is the escape hatch for dropped
// webhooks; it is safe to call repeatedly.
func (s *SubscriptionService) SyncFromProvider(ctx context.Context, accountID uuid.UUID) (*response_models.SubscriptionStatusResponse, error) {
	if err := s.reconciler.SyncFromProvider(ctx, accountID); err != nil {
		return nil, err
	}
	return s.GetStatus(ctx, accountID)
}

func (s *SubscriptionService) GetDebug(ctx context.Context, accountID uuid.UUID) (*response_models.SubscriptionDebugResponse, error) {
	stored, err := s.subscriptionRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	usage, err := s.usageRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	status := s.entitlement.GetStatus(ctx, accountID)

	return &response_models.SubscriptionDebugResponse{
		Stored:   stored,
		Computed: status.Limits,
		Usage:    usage,
	}, nil
}

func toSubscriptionInfo(sub *db_models.Subscription) *response_models.SubscriptionInfo {
	if sub == nil {
		return nil
	}
	return &response_models.SubscriptionInfo{
		PlanID:             sub.PlanID,
		Status:             string(sub.Status),
		ProviderCustomerID: sub.ProviderCustomerID,
		ProviderSubID:      sub.ProviderSubID,
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}
}
