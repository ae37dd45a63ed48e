package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/service"
)

type registerRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Locale     string `json:"locale"`
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
}

type authResponse struct {
	AccessToken     string              `json:"accessToken"`
	AccessExpiresAt time.Time           `json:"accessExpiresAt"`
	RefreshToken    string              `json:"refreshToken"`
	DeviceID        string              `json:"deviceId"`
	User            userResponse        `json:"user"`
	Organization    *membershipResponse `json:"organization"`
}

type userResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Locale string `json:"locale,omitempty"`
}

type membershipResponse struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Slug string      `json:"slug"`
	Role models.Role `json:"role"`
	Plan models.Plan `json:"plan"`
}

func toUser(identity models.Identity) userResponse {
	return userResponse{ID: identity.ID, Email: identity.Email, Name: identity.Name, Locale: string(identity.Locale)}
}

func toMembership(m *models.ActiveMembership) *membershipResponse {
	if m == nil {
		return nil
	}
	return &membershipResponse{ID: m.OrganizationID, Name: m.OrgName, Slug: m.OrgSlug, Role: m.Role, Plan: m.Plan}
}

func deviceInfo(c *gin.Context, deviceID, deviceName string) service.DeviceInfo {
	return service.DeviceInfo{
		DeviceID:   deviceID,
		DeviceName: deviceName,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
	}
}

func sendAuthResponse(c *gin.Context, status int, result service.AuthResult) {
	c.JSON(status, authResponse{
		AccessToken:     result.AccessToken,
		AccessExpiresAt: result.AccessExpiresAt,
		RefreshToken:    result.RefreshToken,
		DeviceID:        result.DeviceID,
		User:            toUser(result.Identity),
		Organization:    toMembership(result.Session.Membership),
	})
}

func (h HandlerSet) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	result, err := h.Auth.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Locale:   models.Locale(req.Locale),
		Device:   deviceInfo(c, req.DeviceID, req.DeviceName),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	sendAuthResponse(c, http.StatusCreated, result)
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Device:   deviceInfo(c, req.DeviceID, req.DeviceName),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	sendAuthResponse(c, http.StatusOK, result)
}

type refreshRequest struct {
	UserID       string `json:"userId" binding:"required"`
	DeviceID     string `json:"deviceId" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h HandlerSet) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "userId, deviceId and refreshToken are required")
		return
	}

	result, err := h.Auth.Refresh(c.Request.Context(), service.RefreshInput{
		UserID:       req.UserID,
		DeviceID:     req.DeviceID,
		RefreshToken: req.RefreshToken,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.GetHeader("User-Agent"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	sendAuthResponse(c, http.StatusOK, result)
}

type logoutRequest struct {
	UserID       string `json:"userId" binding:"required"`
	DeviceID     string `json:"deviceId" binding:"required"`
	RefreshToken string `json:"refreshToken"`
}

func (h HandlerSet) Logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "userId and deviceId are required")
		return
	}

	if err := h.Auth.Logout(c.Request.Context(), req.UserID, req.DeviceID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type meResponse struct {
	User         userResponse        `json:"user"`
	Organization *membershipResponse `json:"organization"`
	// Stale tells the client its token lags behind storage and a refresh
	// would change the organization context.
	Stale bool `json:"stale"`
}

func (h HandlerSet) Me(c *gin.Context) {
	profile, err := h.Auth.Profile(c.Request.Context(), currentSession(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, meResponse{
		User:         toUser(profile.Identity),
		Organization: toMembership(profile.Membership),
		Stale:        profile.Stale,
	})
}

type sessionResponse struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"deviceId"`
	DeviceName string    `json:"deviceName"`
	IPAddress  string    `json:"ipAddress"`
	UserAgent  string    `json:"userAgent"`
	LastSeenAt time.Time `json:"lastSeenAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Current    bool      `json:"current"`
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	session := currentSession(c)
	sessions, err := h.Auth.ListSessions(c.Request.Context(), session.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, sessionResponse{
			ID:         s.ID,
			DeviceID:   s.DeviceID,
			DeviceName: s.DeviceName,
			IPAddress:  s.IPAddress,
			UserAgent:  s.UserAgent,
			LastSeenAt: s.LastSeenAt,
			ExpiresAt:  s.ExpiresAt,
			Current:    s.ID == session.SessionID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"sessions": resp})
}

func (h HandlerSet) RevokeSession(c *gin.Context) {
	if err := h.Auth.RevokeSession(c.Request.Context(), currentSession(c), c.Param("deviceId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) GoogleStart(c *gin.Context) {
	if h.Federated == nil || !h.Federated.Enabled() {
		h.respondError(c, service.ErrFederatedDisabled)
		return
	}

	url, err := h.Federated.Start(c.Request.Context(), deviceInfo(c, c.Query("deviceId"), c.Query("deviceName")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h HandlerSet) GoogleCallback(c *gin.Context) {
	if h.Federated == nil || !h.Federated.Enabled() {
		h.respondError(c, service.ErrFederatedDisabled)
		return
	}
	if c.Query("error") != "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "provider_denied", Message: c.Query("error")})
		return
	}

	result, err := h.Federated.Callback(c.Request.Context(), c.Query("state"), c.Query("code"), deviceInfo(c, "", ""))
	if err != nil {
		h.respondError(c, err)
		return
	}
	sendAuthResponse(c, http.StatusOK, result)
}
