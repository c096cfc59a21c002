package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlphaDigitAll/xQuantum-API/pkg/tenant"
)

func TestContext(t *testing.T) {
	t.Parallel()

	identity := tenant.Identity{
		OrgID:    "11111111-1111-1111-1111-111111111111",
		UserID:   "22222222-2222-2222-2222-222222222222",
		Username: "jane",
	}

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithIdentity(context.Background(), identity)

		got, ok := tenant.FromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, identity, got)

		orgID, ok := tenant.OrgIDFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, identity.OrgID, orgID)
	})

	t.Run("absent identity", func(t *testing.T) {
		t.Parallel()

		_, ok := tenant.FromContext(context.Background())
		assert.False(t, ok)

		_, ok = tenant.OrgIDFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("MustFromContext panics without identity", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			tenant.MustFromContext(context.Background())
		})
	})

	t.Run("MustFromContext returns identity", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithIdentity(context.Background(), identity)
		assert.Equal(t, identity, tenant.MustFromContext(ctx))
	})

	t.Run("logger extractor", func(t *testing.T) {
		t.Parallel()

		extract := tenant.LoggerExtractor()

		attr, ok := extract(tenant.WithIdentity(context.Background(), identity))
		require.True(t, ok)
		assert.Equal(t, "org_id", attr.Key)
		assert.Equal(t, identity.OrgID, attr.Value.String())

		_, ok = extract(context.Background())
		assert.False(t, ok)
	})
}
