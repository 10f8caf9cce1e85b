package dayinrole_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"rolepeek/internal/api/controllers"
	"rolepeek/internal/repositories"
	"rolepeek/internal/services"
	"rolepeek/pkg/utils"
)

var Module = fx.Provide(
	provideDayInRoleRepo, provideSampleRepo, provideDayInRoleService, provideDayInRoleController)

func provideDayInRoleRepo(db *gorm.DB) repositories.IDayInRoleRepository {
	return repositories.NewDayInRoleRepository(db)
}

func provideSampleRepo(db *gorm.DB) repositories.ISampleRepository {
	return repositories.NewSampleRepository(db)
}

func provideDayInRoleService(
	repo repositories.IDayInRoleRepository,
	sampleRepo repositories.ISampleRepository,
	generator utils.TextGeneratorInterface,
	embedder utils.EmbeddingClientInterface,
	fetcher utils.JobPostingFetcherInterface,
) services.DayInRoleServiceInterface {
	return services.NewDayInRoleService(repo, sampleRepo, generator, embedder, fetcher)
}

func provideDayInRoleController(dayInRoleService services.DayInRoleServiceInterface) *controllers.DayInRoleController {
	return controllers.NewDayInRoleController(dayInRoleService)
}
