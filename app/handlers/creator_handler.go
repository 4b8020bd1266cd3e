// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/amirphl/ugc-creator-finder/app/dto"
	businessflow "github.com/amirphl/ugc-creator-finder/business_flow"
	"github.com/amirphl/ugc-creator-finder/utils"
)

// searchTimeout is long because a live search fans out to scrapers
const searchTimeout = 120 * time.Second

// CreatorHandlerInterface defines the contract for creator handlers
type CreatorHandlerInterface interface {
	SearchCreators(c fiber.Ctx) error
	GetDatabase(c fiber.Ctx) error
	GetCreator(c fiber.Ctx) error
	ResetSeen(c fiber.Ctx) error
}

// CreatorHandler handles creator search and listing HTTP requests
type CreatorHandler struct {
	searchFlow  businessflow.SearchFlow
	creatorFlow businessflow.CreatorFlow
	validator   *validator.Validate
}

func (h *CreatorHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CreatorHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewCreatorHandler creates a new creator handler
func NewCreatorHandler(searchFlow businessflow.SearchFlow, creatorFlow businessflow.CreatorFlow) *CreatorHandler {
	return &CreatorHandler{
		searchFlow:  searchFlow,
		creatorFlow: creatorFlow,
		validator:   validator.New(),
	}
}

// SearchCreators runs a live creator search across the configured sources
func (h *CreatorHandler) SearchCreators(c fiber.Ctx) error {
	req := dto.SearchCreatorsRequest{
		Platform:      c.Query("platform", "instagram"),
		Niche:         c.Query("niche", ""),
		MinFollowers:  queryInt(c, "min_followers", 1000),
		MaxFollowers:  queryInt(c, "max_followers", 0),
		MinEngagement: queryFloat(c, "min_engagement", 0),
		Gender:        c.Query("gender", "female"),
		AgeMin:        queryInt(c, "age_min", 40),
		AgeMax:        queryInt(c, "age_max", 60),
		Country:       c.Query("country", ""),
		StrictDemo:    queryBool(c, "strict_demo", false),
		SortBy:        c.Query("sort_by", "overall_score"),
		Page:          queryInt(c, "page", 0),
		PageSize:      queryInt(c, "page_size", 20),
		ExcludeSeen:   queryBool(c, "exclude_seen", false),
		DeepSearch:    queryBool(c, "deep_search", false),
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.searchFlow.SearchCreators(h.createRequestContextWithTimeout(c, "/api/v1/creators/search", searchTimeout), &req, metadata)
	if err != nil {
		if businessflow.IsUnsupportedPlatform(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unsupported platform", "UNSUPPORTED_PLATFORM", nil)
		}
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", "INVALID_PAGINATION", nil)
		}

		log.Println("Creator search failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Creator search failed", "SEARCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Search completed", result)
}

// GetDatabase pages through the persisted creator store
func (h *CreatorHandler) GetDatabase(c fiber.Ctx) error {
	req := dto.DatabaseListingRequest{
		Gender:   c.Query("gender", ""),
		AgeMin:   queryInt(c, "age_min", 0),
		AgeMax:   queryInt(c, "age_max", 0),
		SortBy:   c.Query("sort_by", "overall_score"),
		Page:     queryInt(c, "page", 0),
		PageSize: queryInt(c, "page_size", 100),
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.creatorFlow.GetDatabase(h.createRequestContext(c, "/api/v1/creators/database"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", "INVALID_PAGINATION", nil)
		}

		log.Println("Database listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Database listing failed", "DATABASE_LISTING_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Listing completed", result)
}

// GetCreator returns one stored creator by id
func (h *CreatorHandler) GetCreator(c fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid creator id", "INVALID_CREATOR_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	creator, err := h.creatorFlow.GetCreator(h.createRequestContext(c, "/api/v1/creators/:id"), uint(id), metadata)
	if err != nil {
		if businessflow.IsCreatorNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Creator not found", "CREATOR_NOT_FOUND", nil)
		}

		log.Println("Creator lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Creator lookup failed", "CREATOR_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Creator found", creator)
}

// ResetSeen clears the exclude_seen dedup ledger
func (h *CreatorHandler) ResetSeen(c fiber.Ctx) error {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.creatorFlow.ResetSeen(h.createRequestContext(c, "/api/v1/creators/seen/reset"), metadata)
	if err != nil {
		log.Println("Seen reset failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Seen reset failed", "SEEN_RESET_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Seen creators cleared", result)
}

func (h *CreatorHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *CreatorHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	// Add request-scoped values for observability
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel) // Store cancel function for cleanup

	return ctx
}

func queryInt(c fiber.Ctx, name string, def int) int {
	raw := c.Query(name, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func queryFloat(c fiber.Ctx, name string, def float64) float64 {
	raw := c.Query(name, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func queryBool(c fiber.Ctx, name string, def bool) bool {
	raw := c.Query(name, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
