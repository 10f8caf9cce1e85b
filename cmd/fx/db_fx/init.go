package db_fx

import (
	"log"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"rolepeek/internal/infra"
)

var Module = fx.Provide(
	provideDB)

func provideDB() *gorm.DB {
	db := infra.InitPostgresql()
	if err := infra.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	return db
}
