package routes

import (
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	"outreachly/classifier"
	"outreachly/config"
	controller "outreachly/controllers"
	"outreachly/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	analyticsController := controller.NewAnalyticsController(db, log.New(os.Stdout, "ANALYTICS: ", log.LstdFlags))

	var redisClient *redis.Client
	if config.AppConfig.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.Redis.Address,
			Password: config.AppConfig.Redis.Password,
			DB:       config.AppConfig.Redis.DB,
		})
	}

	var replyClassifier classifier.ReplyClassifier
	if config.AppConfig.OpenAI.APIKey != "" {
		replyClassifier = classifier.NewOpenAIClassifier(
			config.AppConfig.OpenAI.APIKey,
			config.AppConfig.OpenAI.Model,
			time.Duration(config.AppConfig.OpenAI.TimeoutSeconds)*time.Second,
		)
	}

	pipeline := classifier.NewPipeline(db, replyClassifier, redisClient)
	classificationController := controller.NewClassificationController(db, pipeline, log.New(os.Stdout, "CLASSIFY: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Account-wide analytics
	api.Get("/analytics", analyticsController.GetAnalytics)

	// Workspace analytics
	api.Get("/workspaces/:id/analytics", analyticsController.GetWorkspaceAnalytics)

	// Campaign analytics and reply classification
	api.Get("/campaigns/:id/analytics", analyticsController.GetCampaignAnalytics)
	api.Post("/campaigns/:id/classify-replies", classificationController.ClassifyReplies)
}
