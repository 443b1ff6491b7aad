package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"rentora/internal/common"
	"rentora/internal/models"
	"rentora/internal/services"
)

// PropertyHandlers handles HTTP requests for property listings
type PropertyHandlers struct {
	propertyService services.PropertyService
}

// NewPropertyHandlers creates a new property handlers instance
func NewPropertyHandlers(propertyService services.PropertyService) *PropertyHandlers {
	return &PropertyHandlers{
		propertyService: propertyService,
	}
}

// CreateProperty handles POST /v1/properties
func (h *PropertyHandlers) CreateProperty(c echo.Context) error {
	ctx := c.Request().Context()

	landlordID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}
	role, ok := common.GetUserRoleFromContext(ctx)
	if !ok || (role != models.RoleLandlord && role != models.RoleAdmin) {
		return echo.NewHTTPError(http.StatusForbidden, "Landlord role required")
	}

	var req struct {
		Title        string  `json:"title"`
		Address      string  `json:"address"`
		MonthlyPrice float64 `json:"monthly_price"`
	}

	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	property, err := h.propertyService.Create(ctx, landlordID, req.Title, req.Address, req.MonthlyPrice)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, property)
}

// GetProperty handles GET /v1/properties/:id
func (h *PropertyHandlers) GetProperty(c echo.Context) error {
	ctx := c.Request().Context()

	propertyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	property, err := h.propertyService.Get(ctx, propertyID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, property)
}

// ListProperties handles GET /v1/properties
func (h *PropertyHandlers) ListProperties(c echo.Context) error {
	ctx := c.Request().Context()

	filter := &models.PropertySearchFilter{
		Query:         c.QueryParam("q"),
		OnlyAvailable: c.QueryParam("available") == "true",
	}
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filter.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	if raw := c.QueryParam("max_price"); raw != "" {
		maxPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return common.SendValidationError(c, "max_price", "Invalid number")
		}
		filter.MaxPrice = &maxPrice
	}

	properties, err := h.propertyService.List(ctx, filter)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"properties": properties,
		"count":      len(properties),
	})
}

// SetAvailability handles PUT /v1/properties/:id/availability
func (h *PropertyHandlers) SetAvailability(c echo.Context) error {
	ctx := c.Request().Context()

	landlordID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	propertyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Available bool `json:"available"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.propertyService.SetAvailability(ctx, landlordID, propertyID, req.Available); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"property_id": propertyID,
		"available":   req.Available,
	})
}
