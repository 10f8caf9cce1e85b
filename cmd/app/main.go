package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"rolepeek/cmd/fx/account_fx"
	"rolepeek/cmd/fx/ai_fx"
	"rolepeek/cmd/fx/billing_fx"
	"rolepeek/cmd/fx/dayinrole_fx"
	"rolepeek/cmd/fx/db_fx"
	"rolepeek/cmd/fx/interview_fx"
	"rolepeek/internal/api/controllers"
	"rolepeek/internal/infra"
	"rolepeek/internal/services"
	"rolepeek/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	app := fx.New(
		db_fx.Module,
		ai_fx.Module,
		billing_fx.Module,
		account_fx.Module,
		dayinrole_fx.Module,
		interview_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, db *gorm.DB) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				log.Printf("Starting HTTP server at :%s", port)
				if err := engine.Run(":" + port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			infra.ClosePostgresql(db)
			return nil
		},
	})
}

func ProvideRouter(
	accountController *controllers.AccountController,
	dayInRoleController *controllers.DayInRoleController,
	interviewController *controllers.InterviewController,
	subscriptionController *controllers.SubscriptionController,
	commerceWebhookController *controllers.CommerceWebhookController,
	stripeWebhookController *controllers.StripeWebhookController,
	entitlement services.EntitlementServiceInterface,
	meter services.UsageMeterInterface,
) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r,
		accountController,
		dayInRoleController,
		interviewController,
		subscriptionController,
		commerceWebhookController,
		stripeWebhookController,
		entitlement,
		meter)

	return r
}

func RegisterRoutes(r *gin.Engine,
	accountController *controllers.AccountController,
	dayInRoleController *controllers.DayInRoleController,
	interviewController *controllers.InterviewController,
	subscriptionController *controllers.SubscriptionController,
	commerceWebhookController *controllers.CommerceWebhookController,
	stripeWebhookController *controllers.StripeWebhookController,
	entitlement services.EntitlementServiceInterface,
	meter services.UsageMeterInterface) {

	accountGroup := r.Group("/accounts")
	accountGroup.POST("/register", accountController.Register)
	accountGroup.POST("/login", accountController.Login)
	accountGroup.GET("/me", middleware.JWTAuthMiddleware(), accountController.Me)

	dayInRoleGroup := r.Group("/dayinrole")
	dayInRoleGroup.GET("/samples", dayInRoleController.Samples)
	dayInRoleGroup.Use(middleware.JWTAuthMiddleware())
	dayInRoleGroup.POST("/generate",
		middleware.GenerationGate(entitlement, meter, services.ActionDayInRole),
		dayInRoleController.Generate)
	dayInRoleGroup.GET("", dayInRoleController.List)
	dayInRoleGroup.GET("/:id", dayInRoleController.GetById)

	interviewGroup := r.Group("/interview")
	interviewGroup.Use(middleware.JWTAuthMiddleware())
	interviewGroup.POST("/generate",
		middleware.GenerationGate(entitlement, meter, services.ActionInterview),
		interviewController.Generate)
	interviewGroup.GET("/:id", interviewController.GetQuestions)
	interviewGroup.POST("/:id/feedback", interviewController.SubmitFeedback)

	subscriptionGroup := r.Group("/subscription")
	subscriptionGroup.Use(middleware.JWTAuthMiddleware())
	subscriptionGroup.GET("/status", subscriptionController.Status)
	subscriptionGroup.POST("/sync", subscriptionController.Sync)
	subscriptionGroup.GET("/debug/:id", middleware.RoleMiddleware("admin"), subscriptionController.Debug)

	webhookGroup := r.Group("/webhooks")
	webhookGroup.POST("/commerce", commerceWebhookController.Handle)
	webhookGroup.POST("/stripe", stripeWebhookController.Handle)
}
