package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gperojohn83-art/Construction/internal/models"
)

func TestCreateOrganization(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.orgs.add(models.Organization{ID: "o-taken", Name: "Taken", Slug: "demo-company", Plan: models.PlanFree})
	w.orgs.add(models.Organization{ID: "o-taken-2", Name: "Taken", Slug: "demo-company-2", Plan: models.PlanFree})

	founder := w.users.add(models.Identity{ID: "u-founder", Email: "founder@example.com"})
	org, err := w.orgSvc.CreateOrganization(ctx, w.sessionFor(t, founder), "Demo Company")
	require.NoError(t, err)

	assert.Equal(t, "demo-company-3", org.Slug)
	assert.Equal(t, models.PlanFree, org.Plan)

	membership, err := w.resolver.ResolveMembership(ctx, founder.ID)
	require.NoError(t, err)
	require.NotNil(t, membership)
	assert.Equal(t, models.RoleAdmin, membership.Role)
	assert.Equal(t, org.ID, membership.OrganizationID)

	_, err = w.orgSvc.CreateOrganization(ctx, w.sessionFor(t, founder), "Second")
	assert.ErrorIs(t, err, ErrAlreadyInOrganization)
}

func TestCreateOrganization_ConcurrentSubmitsCreateOne(t *testing.T) {
	w := newWorld(t)
	founder := w.users.add(models.Identity{ID: "u-founder", Email: "founder@example.com"})
	session := w.sessionFor(t, founder)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = w.orgSvc.CreateOrganization(context.Background(), session, "Demo Company")
		}()
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyInOrganization)
	}
	assert.Equal(t, 1, created)

	assert.Len(t, w.orgs.byID, 1)
	owned := 0
	for _, row := range w.memberships.rows {
		if row.UserID == founder.ID {
			owned++
		}
	}
	assert.Equal(t, 1, owned)
}

func TestCreateOrganization_Validation(t *testing.T) {
	w := newWorld(t)
	founder := w.users.add(models.Identity{ID: "u-founder", Email: "founder@example.com"})

	_, err := w.orgSvc.CreateOrganization(context.Background(), w.sessionFor(t, founder), "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestCreateOrganization_UnsluggableName(t *testing.T) {
	w := newWorld(t)
	founder := w.users.add(models.Identity{ID: "u-founder", Email: "founder@example.com"})

	org, err := w.orgSvc.CreateOrganization(context.Background(), w.sessionFor(t, founder), "!!!")
	require.NoError(t, err)
	assert.Equal(t, "organization", org.Slug)
}

func TestSlugCandidate(t *testing.T) {
	assert.Equal(t, "acme", slugCandidate("acme", 1))
	assert.Equal(t, "acme-2", slugCandidate("acme", 2))
	assert.Equal(t, "acme-10", slugCandidate("acme", 10))
}
