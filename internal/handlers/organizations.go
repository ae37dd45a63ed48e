package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gperojohn83-art/Construction/internal/billing"
	"github.com/gperojohn83-art/Construction/internal/models"
)

type createOrganizationRequest struct {
	Name string `json:"name"`
}

type organizationResponse struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Slug     string           `json:"slug"`
	Plan     models.Plan      `json:"plan"`
	PlanInfo billing.PlanInfo `json:"planInfo"`
	// RefreshRequired is always true: the caller's token predates the
	// membership and must be refreshed to carry it.
	RefreshRequired bool `json:"refreshRequired"`
}

func (h HandlerSet) CreateOrganization(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	org, err := h.Organizations.CreateOrganization(c.Request.Context(), currentSession(c), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}

	info, _ := billing.Describe(org.Plan)
	c.JSON(http.StatusCreated, organizationResponse{
		ID:              org.ID,
		Name:            org.Name,
		Slug:            org.Slug,
		Plan:            org.Plan,
		PlanInfo:        info,
		RefreshRequired: true,
	})
}
