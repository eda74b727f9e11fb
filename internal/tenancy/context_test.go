package tenancy

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompanyFromContext(t *testing.T) {
	ctx := context.Background()

	_, ok := CompanyFromContext(ctx)
	assert.False(t, ok, "empty context must carry no company")

	ctx = WithCompany(ctx, 7)
	id, ok := CompanyFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)
}

func TestActiveCompanyPrecedence(t *testing.T) {
	base := WithCompany(context.Background(), 7)

	id, ok := ActiveCompany(base)
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)

	forced := WithForcedCompany(base, 9)
	id, ok = ActiveCompany(forced)
	assert.True(t, ok)
	assert.Equal(t, uint(9), id, "forced company must win over the ambient one")

	bypassed := WithBypass(base)
	_, ok = ActiveCompany(bypassed)
	assert.False(t, ok, "bypassed context must have no scope")
	assert.True(t, Bypassed(bypassed))
}

func TestRequireCompany(t *testing.T) {
	_, err := RequireCompany(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveTenant)

	id, err := RequireCompany(WithCompany(context.Background(), 7))
	assert.NoError(t, err)
	assert.Equal(t, uint(7), id)
}

func TestBypassDoesNotLeakIntoParent(t *testing.T) {
	base := WithCompany(context.Background(), 7)
	_ = WithBypass(base)

	id, ok := ActiveCompany(base)
	assert.True(t, ok)
	assert.Equal(t, uint(7), id, "deriving a bypass context must not mutate the parent")
}

func TestConcurrentRequestsSeeOwnCompany(t *testing.T) {
	// Two "requests" resolving different tenants at the same time must
	// never observe each other's value.
	var wg sync.WaitGroup
	for i := uint(1); i <= 50; i++ {
		wg.Add(1)
		go func(companyID uint) {
			defer wg.Done()
			ctx := WithCompany(context.Background(), companyID)
			for j := 0; j < 100; j++ {
				got, ok := ActiveCompany(ctx)
				if !ok || got != companyID {
					t.Errorf("context for company %d observed %d", companyID, got)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
