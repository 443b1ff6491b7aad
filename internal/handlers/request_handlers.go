package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"rentora/internal/common"
	"rentora/internal/models"
	"rentora/internal/services"
)

// RequestHandlers handles HTTP requests for the rental request lifecycle
type RequestHandlers struct {
	requestService services.RequestService
}

// NewRequestHandlers creates a new request handlers instance
func NewRequestHandlers(requestService services.RequestService) *RequestHandlers {
	return &RequestHandlers{
		requestService: requestService,
	}
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// CreateRequest handles POST /v1/requests
func (h *RequestHandlers) CreateRequest(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	var req struct {
		PropertyID string  `json:"property_id"`
		RoomID     *string `json:"room_id"`
	}

	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	propertyID, err := common.ValidateUUID(req.PropertyID, "property_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var roomID *uuid.UUID
	if req.RoomID != nil && common.SafeString(req.RoomID) != "" {
		id, err := common.ValidateUUID(common.SafeString(req.RoomID), "room_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		roomID = &id
	}

	request, err := h.requestService.Create(ctx, tenantID, propertyID, roomID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, request)
}

// ListMyRequests handles GET /v1/requests
func (h *RequestHandlers) ListMyRequests(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	status := c.QueryParam("status")

	requests, err := h.requestService.ListByTenant(ctx, tenantID, status, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

// ListInterested handles GET /v1/requests/interested
func (h *RequestHandlers) ListInterested(c echo.Context) error {
	ctx := c.Request().Context()

	landlordID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	var propertyID *uuid.UUID
	if raw := c.QueryParam("property_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "property_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		propertyID = &id
	}

	entries, err := h.requestService.InterestedTenants(ctx, landlordID, propertyID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"interested": entries,
		"count":      len(entries),
	})
}

// AcceptRequest handles POST /v1/requests/:id/accept
func (h *RequestHandlers) AcceptRequest(c echo.Context) error {
	ctx := c.Request().Context()

	landlordID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	requestID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		AgreedPrice  *float64 `json:"agreed_price"`
		Deposit      *float64 `json:"deposit"`
		SpecialTerms *string  `json:"special_terms"`
		StartDate    string   `json:"start_date"`
		EndDate      string   `json:"end_date"`
	}

	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return common.SendValidationError(c, "start_date", "Invalid date format")
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return common.SendValidationError(c, "end_date", "Invalid date format")
	}
	if err := common.ValidateDateRange(startDate, endDate); err != nil {
		return common.SendValidationError(c, "end_date", err.Error())
	}

	if req.AgreedPrice != nil {
		if err := common.ValidatePositiveFloat(*req.AgreedPrice, "agreed_price", 1000000.0); err != nil {
			return common.SendValidationError(c, "agreed_price", err.Error())
		}
	}

	terms := &models.AcceptTerms{
		AgreedPrice:  req.AgreedPrice,
		Deposit:      req.Deposit,
		SpecialTerms: req.SpecialTerms,
		StartDate:    startDate,
		EndDate:      endDate,
	}

	rentalID, err := h.requestService.Accept(ctx, landlordID, requestID, terms)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"request_id": requestID,
		"rental_id":  rentalID,
		"status":     models.RequestStatusAccepted,
	})
}

// RejectRequest handles POST /v1/requests/:id/reject
func (h *RequestHandlers) RejectRequest(c echo.Context) error {
	ctx := c.Request().Context()

	landlordID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	requestID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.requestService.Reject(ctx, landlordID, requestID); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"request_id": requestID,
		"status":     models.RequestStatusRejected,
	})
}
