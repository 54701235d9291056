package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"outreachly/classifier"
	"outreachly/models"
	"outreachly/utils"
)

type ClassificationController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Pipeline *classifier.Pipeline
}

func NewClassificationController(db *gorm.DB, pipeline *classifier.Pipeline, logger *log.Logger) *ClassificationController {
	return &ClassificationController{
		DB:       db,
		Logger:   logger,
		Pipeline: pipeline,
	}
}

// ClassifyReplies runs the classification pipeline over every pending
// reply in a campaign and returns the per-lead results
func (cc *ClassificationController) ClassifyReplies(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := utils.ParseUint(c.Params("id"))

	var campaign models.Campaign
	if err := cc.DB.Where("id = ? AND user_id = ?", campaignID, user.ID).First(&campaign).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Campaign not found",
		})
	}

	result, err := cc.Pipeline.ClassifyPendingReplies(c.UserContext(), campaignID)
	if err != nil {
		if errors.Is(err, classifier.ErrRunInProgress) {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Classification already in progress", err)
		}
		cc.Logger.Printf("Classification run failed for campaign %d: %v", campaignID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to classify replies", err)
	}

	return c.JSON(utils.SuccessResponse(result))
}
