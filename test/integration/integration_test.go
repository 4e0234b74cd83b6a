package integration

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okklaus/storage3-in-go/pkg/policy"
)

func TestPolicyWorkflow(t *testing.T) {
	// Skip if not running integration tests
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration tests. Set INTEGRATION_TEST=1 to run.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tc, err := NewTestContext(ctx)
	require.NoError(t, err, "failed to create test context")
	defer tc.Close(ctx)

	applier := policy.NewApplier(tc.DB)

	// Fresh schema: both policies created.
	results, err := applier.Apply(ctx)
	require.NoError(t, err)
	require.Len(t, results, len(policy.Templates()))
	for _, result := range results {
		assert.Equal(t, policy.StatusCreated, result.Status)
	}

	// The policies really landed in pg_policies.
	applied, err := applier.Applied(ctx)
	require.NoError(t, err)
	for _, tmpl := range policy.Templates() {
		assert.True(t, applied[tmpl.Name], "policy %q not present", tmpl.Name)
	}

	// Re-applying is a no-op.
	results, err = applier.Apply(ctx)
	require.NoError(t, err)
	for _, result := range results {
		assert.Equal(t, policy.StatusExists, result.Status)
	}

	// Removal drops them, and a second removal reports them absent.
	results, err = applier.Remove(ctx)
	require.NoError(t, err)
	for _, result := range results {
		assert.Equal(t, policy.StatusRemoved, result.Status)
	}

	applied, err = applier.Applied(ctx)
	require.NoError(t, err)
	for _, tmpl := range policy.Templates() {
		assert.False(t, applied[tmpl.Name])
	}

	results, err = applier.Remove(ctx)
	require.NoError(t, err)
	for _, result := range results {
		assert.Equal(t, policy.StatusAbsent, result.Status)
	}
}

func TestMigrationsRollback(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration tests. Set INTEGRATION_TEST=1 to run.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tc, err := NewTestContext(ctx)
	require.NoError(t, err, "failed to create test context")
	defer tc.Close(ctx)

	var exists bool
	err = tc.DB.Raw(
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'storage' AND table_name = 'objects')`,
	).Scan(&exists).Error
	require.NoError(t, err)
	assert.True(t, exists, "storage.objects missing after migrate up")

	require.NoError(t, tc.MigrateDown())

	err = tc.DB.Raw(
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'storage' AND table_name = 'objects')`,
	).Scan(&exists).Error
	require.NoError(t, err)
	assert.False(t, exists, "storage.objects still present after migrate down")
}
