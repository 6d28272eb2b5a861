package handler

import (
	"net/http"
	"time"

	"session-auth/internal/audit"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const maxAuditPageSize = 500

type AuditHandler struct {
	events AuditQuerier
}

func NewAuditHandler(events AuditQuerier) *AuditHandler {
	return &AuditHandler{events: events}
}

type AuditEventView struct {
	ID         int64     `json:"id"`
	Event      string    `json:"event"`
	Identifier string    `json:"identifier,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Status     string    `json:"status"`
	SessionID  string    `json:"session_id,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// List returns audit events newest first. Query parameters: user_id, event,
// status, since and until (RFC 3339), limit, offset.
func (h *AuditHandler) List(c echo.Context) error {
	filter, err := auditFilter(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidQuery)
	}

	events, err := h.events.Query(c.Request().Context(), filter)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	out := make([]AuditEventView, 0, len(events))
	for _, ev := range events {
		v := AuditEventView{
			ID:         ev.ID,
			Event:      ev.Event,
			Identifier: ev.Identifier,
			Status:     string(ev.Status),
			SessionID:  ev.SessionID,
			IPAddress:  ev.IPAddress,
			UserAgent:  ev.UserAgent,
			RequestID:  ev.RequestID,
			CreatedAt:  ev.CreatedAt,
		}
		if ev.UserID != nil {
			v.UserID = ev.UserID.String()
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, map[string][]AuditEventView{"events": out})
}

func auditFilter(c echo.Context) (audit.QueryFilter, error) {
	var (
		filter       audit.QueryFilter
		userID       string
		status       string
		since, until time.Time
	)
	err := echo.QueryParamsBinder(c).
		String("user_id", &userID).
		String("event", &filter.Event).
		String("status", &status).
		Time("since", &since, time.RFC3339).
		Time("until", &until, time.RFC3339).
		Int("limit", &filter.Limit).
		Int("offset", &filter.Offset).
		BindError()
	if err != nil {
		return filter, err
	}

	if userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			return filter, err
		}
		filter.UserID = &id
	}
	switch audit.Status(status) {
	case "", audit.StatusSuccess, audit.StatusFailure:
		filter.Status = audit.Status(status)
	default:
		return filter, echo.NewHTTPError(http.StatusBadRequest)
	}
	if !since.IsZero() {
		filter.StartTime = &since
	}
	if !until.IsZero() {
		filter.EndTime = &until
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return filter, echo.NewHTTPError(http.StatusBadRequest)
	}
	if filter.Limit > maxAuditPageSize {
		filter.Limit = maxAuditPageSize
	}
	return filter, nil
}
