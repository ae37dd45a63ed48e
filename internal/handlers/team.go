package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gperojohn83-art/Construction/internal/models"
)

type memberResponse struct {
	UserID   string      `json:"userId"`
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
	JoinedAt time.Time   `json:"joinedAt"`
}

func (h HandlerSet) ListTeam(c *gin.Context) {
	members, err := h.Team.ListMembers(c.Request.Context(), currentSession(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]memberResponse, 0, len(members))
	for _, m := range members {
		items = append(items, memberResponse{
			UserID:   m.UserID,
			Email:    m.Email,
			Name:     m.Name,
			Role:     m.Role,
			JoinedAt: m.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"members": items})
}

type inviteRequest struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type invitationResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func (h HandlerSet) InviteMember(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	inv, err := h.Team.Invite(c.Request.Context(), currentSession(c), req.Email, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invitation": invitationResponse{
		ID:        inv.ID,
		Email:     inv.Email,
		Role:      inv.Role,
		Token:     inv.Token,
		ExpiresAt: inv.ExpiresAt,
	}})
}

func (h HandlerSet) AcceptInvitation(c *gin.Context) {
	membership, err := h.Team.Accept(c.Request.Context(), currentSession(c), c.Param("token"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"organizationId":  membership.OrganizationID,
		"role":            membership.Role,
		"refreshRequired": true,
	})
}

type updateRoleRequest struct {
	Role models.Role `json:"role"`
}

func (h HandlerSet) UpdateMemberRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	if err := h.Team.UpdateRole(c.Request.Context(), currentSession(c), c.Param("userId"), req.Role); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
