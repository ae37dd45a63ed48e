package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gperojohn83-art/Construction/internal/middleware"
	"github.com/gperojohn83-art/Construction/internal/repository"
	"github.com/gperojohn83-art/Construction/internal/service"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

var notFound = []error{
	repository.ErrUserNotFound,
	repository.ErrProjectNotFound,
	repository.ErrDocumentNotFound,
	repository.ErrNotificationNotFound,
	repository.ErrMembershipNotFound,
	repository.ErrInvitationNotFound,
	repository.ErrSessionNotFound,
	repository.ErrOrganizationNotFound,
}

var statusByError = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{service.ErrEmailNotVerified, http.StatusUnauthorized, "email_not_verified"},
	{service.ErrPlanLimitReached, http.StatusPaymentRequired, "plan_limit_reached"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{service.ErrNoOrganization, http.StatusForbidden, "no_organization"},
	{service.ErrStaleSession, http.StatusConflict, "stale_session"},
	{service.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{service.ErrAlreadyInOrganization, http.StatusConflict, "already_in_organization"},
	{repository.ErrAlreadyMember, http.StatusConflict, "already_member"},
	{service.ErrInvitationInvalid, http.StatusGone, "invitation_invalid"},
	{service.ErrCannotRevokeCurrent, http.StatusBadRequest, "cannot_revoke_current_device"},
	{service.ErrFederatedDisabled, http.StatusNotFound, "federated_disabled"},
}

// respondError maps a service error to a status. Anything unrecognised is
// logged and answered with a bare 500.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "validation_failed", Message: verr.Message, Field: verr.Field})
		return
	}

	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			c.AbortWithStatusJSON(m.status, errorResponse{Error: m.code, Message: m.err.Error()})
			return
		}
	}

	for _, nf := range notFound {
		if errors.Is(err, nf) {
			c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: "not_found", Message: nf.Error()})
			return
		}
	}

	_ = c.Error(err)
	h.Log.Error().
		Err(err).
		Str("path", c.FullPath()).
		Str("request_id", middleware.RequestIDFrom(c)).
		Msg("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal_server_error"})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}
