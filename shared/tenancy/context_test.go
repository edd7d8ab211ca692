package tenancy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Erixon159/autemix-app/shared/models"
)

func TestFromContextMissing(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrContextMissing)
	assert.False(t, InTenantContext(context.Background()))
	assert.Equal(t, "", CurrentSubdomain(context.Background()))
}

func TestRunWithTenant(t *testing.T) {
	tenant := &models.Tenant{ID: uuid.New(), Subdomain: "acme", Active: true}

	err := RunWithTenant(context.Background(), tenant, func(ctx context.Context) error {
		got, err := FromContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, got.ID)
		assert.Equal(t, "acme", CurrentSubdomain(ctx))
		return nil
	})
	require.NoError(t, err)
}

func TestRunWithTenantNestingShadowsAndRestores(t *testing.T) {
	tenantA := &models.Tenant{ID: uuid.New(), Subdomain: "aaa", Active: true}
	tenantB := &models.Tenant{ID: uuid.New(), Subdomain: "bbb", Active: true}

	err := RunWithTenant(context.Background(), tenantA, func(outer context.Context) error {
		inner := RunWithTenant(outer, tenantB, func(ctx context.Context) error {
			assert.Equal(t, "bbb", CurrentSubdomain(ctx))
			return errors.New("inner failure")
		})
		assert.Error(t, inner)

		// The outer scope still sees tenant A, even after the inner error.
		assert.Equal(t, "aaa", CurrentSubdomain(outer))
		return nil
	})
	require.NoError(t, err)
}

func TestAmbientTenantIsolationAcrossGoroutines(t *testing.T) {
	// Concurrent tasks must never observe each other's ambient tenant.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := fmt.Sprintf("tenant-%d", i)
			tenant := &models.Tenant{ID: uuid.New(), Subdomain: sub, Active: true}
			_ = RunWithTenant(context.Background(), tenant, func(ctx context.Context) error {
				for j := 0; j < 100; j++ {
					got, err := FromContext(ctx)
					if err != nil || got.Subdomain != sub {
						t.Errorf("goroutine %d observed %v (err %v)", i, got, err)
						return nil
					}
				}
				return nil
			})
		}(i)
	}
	wg.Wait()
}
