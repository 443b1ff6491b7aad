package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"rentora/internal/common"
	"rentora/internal/services"
)

// 20 MB is plenty for a contract document.
const maxContractSize = 20 << 20

// RentalHandlers handles HTTP requests for rentals and their contracts
type RentalHandlers struct {
	rentalService services.RentalService
}

// NewRentalHandlers creates a new rental handlers instance
func NewRentalHandlers(rentalService services.RentalService) *RentalHandlers {
	return &RentalHandlers{
		rentalService: rentalService,
	}
}

// GetRental handles GET /v1/rentals/:id
func (h *RentalHandlers) GetRental(c echo.Context) error {
	ctx := c.Request().Context()

	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	rentalID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	rental, err := h.rentalService.Get(ctx, callerID, rentalID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, rental)
}

// ListMyRentals handles GET /v1/rentals
func (h *RentalHandlers) ListMyRentals(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	rentals, err := h.rentalService.ListByTenant(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"rentals": rentals,
		"count":   len(rentals),
	})
}

// UploadContract handles POST /v1/rentals/:id/contract
func (h *RentalHandlers) UploadContract(c echo.Context) error {
	ctx := c.Request().Context()

	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	rentalID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	fileHeader, err := c.FormFile("contract")
	if err != nil {
		return common.SendValidationError(c, "contract", "Contract file is required")
	}
	if fileHeader.Size > maxContractSize {
		return common.SendValidationError(c, "contract", "Contract file is too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Could not read uploaded file")
	}
	defer file.Close()

	url, err := h.rentalService.UploadContract(ctx, callerID, rentalID, fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"rental_id":    rentalID,
		"contract_url": url,
	})
}

// GetContract handles GET /v1/rentals/:id/contract
func (h *RentalHandlers) GetContract(c echo.Context) error {
	ctx := c.Request().Context()

	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	rentalID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	url, err := h.rentalService.ContractURL(ctx, callerID, rentalID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"rental_id":    rentalID,
		"contract_url": url,
	})
}
