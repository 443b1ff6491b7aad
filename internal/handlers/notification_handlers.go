package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rentora/internal/common"
	"rentora/internal/models"
	"rentora/internal/services"
)

// NotificationHandlers handles HTTP requests for notifications
type NotificationHandlers struct {
	notificationService services.NotificationService
}

// NewNotificationHandlers creates a new notification handlers instance
func NewNotificationHandlers(notificationService services.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{
		notificationService: notificationService,
	}
}

// GetUnread handles GET /v1/notifications/unread
func (h *NotificationHandlers) GetUnread(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}
	role, ok := common.GetUserRoleFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Role not found")
	}

	notifications, err := h.notificationService.GetUnread(ctx, userID, role)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	views := make([]models.NotificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, n.View())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": views,
		"count":         len(views),
	})
}

// MarkAsRead handles PUT /v1/notifications/:id/read
func (h *NotificationHandlers) MarkAsRead(c echo.Context) error {
	ctx := c.Request().Context()

	if _, ok := common.GetUserIDFromContext(ctx); !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	notificationID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.notificationService.MarkAsRead(ctx, notificationID); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notification_id": notificationID,
		"read":            true,
	})
}

// Send handles POST /v1/notifications/send. Direct sends are an operator
// surface; lifecycle notifications are fanned out by the request service.
func (h *NotificationHandlers) Send(c echo.Context) error {
	ctx := c.Request().Context()

	senderID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}
	role, ok := common.GetUserRoleFromContext(ctx)
	if !ok || role != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Admin role required")
	}

	var req struct {
		RecipientID string  `json:"recipient_id"`
		Type        string  `json:"type"`
		Title       string  `json:"title"`
		Message     string  `json:"message"`
		PropertyID  string  `json:"property_id"`
		RoomID      *string `json:"room_id"`
	}

	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	recipientID, err := common.ValidateUUID(req.RecipientID, "recipient_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	if !models.ValidNotificationType(req.Type) {
		return common.SendValidationError(c, "type", "Unknown notification type")
	}
	if err := common.ValidateRequiredString(req.Title, "title"); err != nil {
		return common.SendValidationError(c, "title", err.Error())
	}

	var payload *models.NotificationPayload
	if req.PropertyID != "" {
		propertyID, err := common.ValidateUUID(req.PropertyID, "property_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		payload = &models.NotificationPayload{PropertyID: propertyID, CounterpartID: senderID}
		if req.RoomID != nil && common.SafeString(req.RoomID) != "" {
			roomID, err := common.ValidateUUID(common.SafeString(req.RoomID), "room_id")
			if err != nil {
				return common.SendClientError(c, err.Error())
			}
			payload.RoomID = &roomID
		}
	}

	notification, err := h.notificationService.Send(ctx, recipientID, senderID, models.NotificationType(req.Type), req.Title, req.Message, payload)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, notification)
}
