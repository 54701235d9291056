package controller

import (
	"context"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"outreachly/analytics"
	"outreachly/models"
	"outreachly/utils"
)

type AnalyticsController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Store  *analytics.EventStore
}

func NewAnalyticsController(db *gorm.DB, logger *log.Logger) *AnalyticsController {
	return &AnalyticsController{
		DB:     db,
		Logger: logger,
		Store:  analytics.NewEventStore(db),
	}
}

type analyticsQuery struct {
	Range              string `validate:"omitempty,oneof=last_7_days month_to_date last_4_weeks last_3_months last_6_months last_12_months"`
	IncludeAutoReplies bool
}

func parseAnalyticsQuery(c *fiber.Ctx) (analyticsQuery, error) {
	q := analyticsQuery{
		Range:              c.Query("range", analytics.RangeLast7Days),
		IncludeAutoReplies: c.QueryBool("include_auto_replies", true),
	}
	if err := utils.ValidateStruct(q); err != nil {
		return q, err
	}
	return q, nil
}

// GetAnalytics returns the account-wide metric bundle for the
// authenticated user
func (ac *AnalyticsController) GetAnalytics(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	query, err := parseAnalyticsQuery(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", err)
	}

	bundle, _, err := ac.buildBundle(c.UserContext(), analytics.ScopeUser(user.ID), query)
	if err != nil {
		return ac.storeFailure(c, err)
	}

	return c.JSON(utils.SuccessResponse(bundle))
}

// GetWorkspaceAnalytics returns the metric bundle for one workspace the
// user belongs to
func (ac *AnalyticsController) GetWorkspaceAnalytics(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	workspaceID := utils.ParseUint(c.Params("id"))

	var membership models.WorkspaceMember
	if err := ac.DB.Where("workspace_id = ? AND user_id = ?", workspaceID, user.ID).First(&membership).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Workspace not found",
		})
	}

	query, err := parseAnalyticsQuery(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", err)
	}

	bundle, _, err := ac.buildBundle(c.UserContext(), analytics.ScopeWorkspace(workspaceID), query)
	if err != nil {
		return ac.storeFailure(c, err)
	}

	return c.JSON(utils.SuccessResponse(bundle))
}

type campaignAnalyticsResponse struct {
	analytics.MetricBundle
	StepAnalytics []analytics.StepStat `json:"step_analytics"`
	Completion    int                  `json:"completion"`
}

// GetCampaignAnalytics returns the metric bundle for a single campaign,
// extended with per-step/variant breakdowns and sequence completion
func (ac *AnalyticsController) GetCampaignAnalytics(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := utils.ParseUint(c.Params("id"))

	var campaign models.Campaign
	if err := ac.DB.Preload("SequenceSteps").
		Where("id = ? AND user_id = ?", campaignID, user.ID).
		First(&campaign).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Campaign not found",
		})
	}

	query, err := parseAnalyticsQuery(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", err)
	}

	bundle, input, err := ac.buildBundle(c.UserContext(), analytics.ScopeCampaign(campaignID), query)
	if err != nil {
		return ac.storeFailure(c, err)
	}

	resp := campaignAnalyticsResponse{
		MetricBundle:  bundle,
		StepAnalytics: analytics.BuildStepAnalytics(input.Events),
		Completion:    analytics.CampaignCompletion(bundle.Sent, len(input.Leads), len(campaign.SequenceSteps)),
	}
	return c.JSON(utils.SuccessResponse(resp))
}

// buildBundle assembles the aggregation input for a scope and runs the
// pure aggregator over it. An event store outage is the only error it
// surfaces; entity lookups degrade to defaults instead.
func (ac *AnalyticsController) buildBundle(ctx context.Context, scope analytics.Scope, query analyticsQuery) (analytics.MetricBundle, analytics.AggregateInput, error) {
	now := time.Now()
	start, end := analytics.ResolveTimeRange(query.Range, now)

	events, err := ac.Store.QueryEvents(ctx, scope, start, end)
	if err != nil {
		return analytics.MetricBundle{}, analytics.AggregateInput{}, err
	}
	leads, err := ac.Store.LeadsInScope(ctx, scope)
	if err != nil {
		return analytics.MetricBundle{}, analytics.AggregateInput{}, err
	}

	// Campaign records only feed the tracking flags; a failed lookup keeps
	// rates numeric rather than mislabeling them Disabled.
	campaigns, err := ac.Store.CampaignsInScope(ctx, scope)
	if err != nil {
		ac.Logger.Printf("Campaign lookup failed, degrading to defaults: %v", err)
		campaigns = nil
	}

	input := analytics.AggregateInput{
		Events:             events,
		Leads:              leads,
		Campaigns:          campaigns,
		OpportunityValue:   ac.Store.OpportunityValueForScope(ctx, scope),
		IncludeAutoReplies: query.IncludeAutoReplies,
		Start:              start,
		End:                end,
	}
	return analytics.Aggregate(input), input, nil
}

func (ac *AnalyticsController) storeFailure(c *fiber.Ctx, err error) error {
	ac.Logger.Printf("Event store query failed: %v", err)
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", "analytics")
		sentry.CaptureException(err)
	})
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute analytics", err)
}
