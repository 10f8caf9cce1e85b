package interview_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"rolepeek/internal/api/controllers"
	"rolepeek/internal/repositories"
	"rolepeek/internal/services"
	"rolepeek/pkg/utils"
)

var Module = fx.Provide(
	provideInterviewRepo, provideInterviewService, provideInterviewController)

func provideInterviewRepo(db *gorm.DB) repositories.IInterviewRepository {
	return repositories.NewInterviewRepository(db)
}

func provideInterviewService(
	repo repositories.IInterviewRepository,
	dayInRoleRepo repositories.IDayInRoleRepository,
	generator utils.TextGeneratorInterface,
) services.InterviewServiceInterface {
	return services.NewInterviewService(repo, dayInRoleRepo, generator)
}

func provideInterviewController(interviewService services.InterviewServiceInterface) *controllers.InterviewController {
	return controllers.NewInterviewController(interviewService)
}
