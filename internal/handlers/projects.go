package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/gperojohn83-art/Construction/internal/format"
	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/service"
)

type projectResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description *string              `json:"description"`
	Client      *string              `json:"client"`
	Address     *string              `json:"address"`
	Status      models.ProjectStatus `json:"status"`
	StatusLabel string               `json:"statusLabel"`
	StatusTone  format.Tone          `json:"statusTone"`
	StartDate   *time.Time           `json:"startDate"`
	EndDate     *time.Time           `json:"endDate"`
	Budget      *decimal.Decimal     `json:"budget"`
	BudgetLabel string               `json:"budgetLabel,omitempty"`
	Color       string               `json:"color"`
	CreatedAt   time.Time            `json:"createdAt"`
}

func (h HandlerSet) toProject(p models.Project, locale models.Locale) projectResponse {
	label, tone := format.ProjectStatus(p.Status, locale)
	resp := projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Client:      p.Client,
		Address:     p.Address,
		Status:      p.Status,
		StatusLabel: label,
		StatusTone:  tone,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Color:       p.Color,
		CreatedAt:   p.CreatedAt,
	}
	if p.Budget.Valid {
		budget := p.Budget.Decimal
		resp.Budget = &budget
		resp.BudgetLabel = format.Currency(budget, locale, h.Currency)
	}
	return resp
}

func (h HandlerSet) toProjects(projects []models.Project, locale models.Locale) []projectResponse {
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, h.toProject(p, locale))
	}
	return out
}

func (h HandlerSet) ListProjects(c *gin.Context) {
	projects, err := h.Projects.List(c.Request.Context(), currentSession(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": h.toProjects(projects, h.requestLocale(c))})
}

func (h HandlerSet) CreateProject(c *gin.Context) {
	var input service.CreateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	project, err := h.Projects.Create(c.Request.Context(), currentSession(c), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": h.toProject(project, h.requestLocale(c))})
}
