package services

import (
	"context"
	"errors"
	"log"

	"rolepeek/internal/models/db_models"
	"rolepeek/internal/models/request_models"
	"rolepeek/internal/models/response_models"
	"rolepeek/internal/repositories"
	"rolepeek/pkg/utils"
)

type AccountServiceInterface interface {
	Register(ctx context.Context, req request_models.SignUpRequest) (*response_models.AccountResponse, error)
	Login(ctx context.Context, req request_models.LoginRequest) (*response_models.AccountLoginResponse, error)
	GetProfile(ctx context.Context, accountID string) (*response_models.AccountResponse, error)
}

type AccountService struct {
	repo        repositories.AccountRepository
	reconciler  ReconcilerInterface
	entitlement EntitlementServiceInterface
}

func NewAccountService(
	repo repositories.AccountRepository,
	reconciler ReconcilerInterface,
	entitlement EntitlementServiceInterface,
) AccountServiceInterface {
	return &AccountService{
		repo:        repo,
		reconciler:  reconciler,
		entitlement: entitlement,
	}
}

func (s *AccountService) Register(ctx context.Context, req request_models.SignUpRequest) (*response_models.AccountResponse, error) {
	existing, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if existing != nil {
		return nil, utils.ErrEmailAlreadyExists
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	account := db_models.Account{
		Name:         req.DisplayName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         "user",
	}

	if err := s.repo.Insert(ctx, &account); err != nil {
		return nil, utils.ErrDatabaseError
	}

	// Every account gets a free subscription row immediately so the
	// entitlement path never depends on a webhook having arrived.
	if err := s.reconciler.SeedFreeSubscription(ctx, account.ID); err != nil {
		log.Printf("seeding free subscription for %s failed: %v", account.ID, err)
	}

	return toAccountResponse(&account), nil
}

func (s *AccountService) Login(ctx context.Context, req request_models.LoginRequest) (*response_models.AccountLoginResponse, error) {
	account, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(account.PasswordHash, req.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	token, err := utils.CreateToken(account.ID, account.Role)
	if err != nil {
		return nil, errors.New("failed to create token")
	}

	status := s.entitlement.GetStatus(ctx, account.ID)

	return &response_models.AccountLoginResponse{
		Token:             token,
		IsUserHavePremium: !status.IsFreePlan,
	}, nil
}

func (s *AccountService) GetProfile(ctx context.Context, accountID string) (*response_models.AccountResponse, error) {
	account, err := s.repo.FindById(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}
	return toAccountResponse(account), nil
}

func toAccountResponse(account *db_models.Account) *response_models.AccountResponse {
	return &response_models.AccountResponse{
		ID:    account.ID.String(),
		Name:  account.Name,
		Email: account.Email,
		Role:  account.Role,
	}
}
