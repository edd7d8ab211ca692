package tenancy

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Erixon159/autemix-app/shared/events"
	"github.com/Erixon159/autemix-app/shared/models"
	"github.com/Erixon159/autemix-app/shared/repository"
)

// Service manages the tenant lifecycle and provides explicit-scope helpers.
// Resolution failures are reported two different ways on purpose: the
// resolver middleware silently maps them to 404, while WithTenant returns
// ErrTenantNotFound/ErrTenantInactive for callers that must handle them.
type Service struct {
	tenants repository.TenantRepository
	events  *events.Publisher
}

// NewService creates a tenant lifecycle service. The publisher may be nil;
// lifecycle events are then dropped.
func NewService(tenants repository.TenantRepository, publisher *events.Publisher) *Service {
	return &Service{tenants: tenants, events: publisher}
}

// Create validates and persists a new tenant. Validation failures never
// surface as an error: the returned record carries them in Errors and the
// caller inspects it. The error return is reserved for infrastructure
// failures.
func (s *Service) Create(ctx context.Context, name, subdomain string) (*models.Tenant, error) {
	tenant := &models.Tenant{Name: name, Subdomain: subdomain, Active: true}
	tenant.Normalize()

	tenant.Errors = tenant.Validate()
	if !tenant.Errors.Any() {
		taken, err := s.tenants.ExistsBySubdomain(ctx, tenant.Subdomain)
		if err != nil {
			return nil, err
		}
		if taken {
			tenant.Errors.Add("subdomain", "has already been taken")
		}
	}
	if tenant.Errors.Any() {
		return tenant, nil
	}

	if err := s.tenants.Create(ctx, tenant); err != nil {
		if err == repository.ErrDuplicate {
			// Lost a race with a concurrent create of the same subdomain.
			tenant.Errors = models.FieldErrors{}
			tenant.Errors.Add("subdomain", "has already been taken")
			return tenant, nil
		}
		return nil, err
	}

	s.setupTenantData(ctx, tenant)
	s.publish(events.EventTenantCreated, tenant)
	return tenant, nil
}

// setupTenantData runs the post-create hook inside the new tenant's scope
func (s *Service) setupTenantData(ctx context.Context, tenant *models.Tenant) {
	_ = RunWithTenant(ctx, tenant, func(context.Context) error {
		logrus.Infof("Setting up initial data for tenant: %s (%s)", tenant.Name, tenant.Subdomain)
		return nil
	})
}

// Activate flips the tenant to active. Returns false when the reference
// cannot be resolved or the update fails; there is no richer signal on this
// path by contract.
func (s *Service) Activate(ctx context.Context, ref TenantRef) bool {
	return s.setActive(ctx, ref, true)
}

// Deactivate flips the tenant to inactive. Same boolean-only contract as
// Activate.
func (s *Service) Deactivate(ctx context.Context, ref TenantRef) bool {
	return s.setActive(ctx, ref, false)
}

func (s *Service) setActive(ctx context.Context, ref TenantRef, active bool) bool {
	tenant, err := ref.Resolve(ctx, s.tenants)
	if err != nil {
		if err != ErrTenantNotFound {
			logrus.Warnf("Tenant lookup failed: %v", err)
		}
		return false
	}

	if err := s.tenants.SetActive(ctx, tenant.ID, active); err != nil {
		logrus.Warnf("Failed to update tenant %s: %v", tenant.Subdomain, err)
		return false
	}
	tenant.Active = active

	if active {
		logrus.Infof("Activated tenant: %s (%s)", tenant.Name, tenant.Subdomain)
		s.publish(events.EventTenantActivated, tenant)
	} else {
		logrus.Infof("Deactivated tenant: %s (%s)", tenant.Name, tenant.Subdomain)
		s.publish(events.EventTenantDeactivated, tenant)
	}
	return true
}

// WithTenant resolves the reference and runs fn inside that tenant's scope.
// Unlike the resolver middleware it fails loudly: ErrTenantNotFound when the
// reference does not resolve, ErrTenantInactive when the tenant exists but
// is deactivated. Both are returned before fn runs.
func (s *Service) WithTenant(ctx context.Context, ref TenantRef, fn func(ctx context.Context) error) error {
	tenant, err := ref.Resolve(ctx, s.tenants)
	if err != nil {
		return err
	}
	if !tenant.Active {
		return ErrTenantInactive
	}
	return RunWithTenant(ctx, tenant, fn)
}

// RunWithTenantID is the background-task variant of WithTenant: it resolves
// by ID and only enters scopes for active tenants.
func (s *Service) RunWithTenantID(ctx context.Context, id uuid.UUID, fn func(ctx context.Context) error) error {
	tenant, err := s.tenants.FindByID(ctx, id)
	if err == repository.ErrNotFound {
		return ErrTenantNotFound
	}
	if err != nil {
		return err
	}
	if !tenant.Active {
		return ErrTenantInactive
	}
	return RunWithTenant(ctx, tenant, fn)
}

// Current returns the ambient tenant for the calling scope
func (s *Service) Current(ctx context.Context) (*models.Tenant, error) {
	return FromContext(ctx)
}

// AvailableSubdomain reports whether a subdomain can still be claimed
func (s *Service) AvailableSubdomain(ctx context.Context, subdomain string) (bool, error) {
	if models.SubdomainReserved(subdomain) {
		return false, nil
	}
	taken, err := s.tenants.ExistsBySubdomain(ctx, subdomain)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (s *Service) publish(eventType string, tenant *models.Tenant) {
	if s.events == nil {
		return
	}
	s.events.PublishTenantEvent(events.TenantEvent{
		Type:      eventType,
		TenantID:  tenant.ID.String(),
		Subdomain: tenant.Subdomain,
		Name:      tenant.Name,
	})
}
