package itf

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/logging"
)

// TestContext provides a fluent API for building test contexts.
type TestContext struct {
	ctx      context.Context
	tenantID uuid.UUID
	logger   *logrus.Logger
	stores   *MemoryStores
}

// NewTestContext creates a new TestContext builder.
func NewTestContext() *TestContext {
	return &TestContext{
		ctx:      context.Background(),
		tenantID: uuid.New(),
	}
}

// WithTenantID overrides the generated tenant id.
func (tc *TestContext) WithTenantID(id uuid.UUID) *TestContext {
	tc.tenantID = id
	return tc
}

// WithLogger overrides the default warn-level console logger.
func (tc *TestContext) WithLogger(logger *logrus.Logger) *TestContext {
	tc.logger = logger
	return tc
}

// WithStores injects pre-populated stores.
func (tc *TestContext) WithStores(stores *MemoryStores) *TestContext {
	tc.stores = stores
	return tc
}

// Build creates the test environment with all dependencies.
func (tc *TestContext) Build(tb testing.TB) *TestEnvironment {
	tb.Helper()

	if tc.logger == nil {
		tc.logger = logging.ConsoleLogger(logrus.WarnLevel)
	}
	if tc.stores == nil {
		tc.stores = NewMemoryStores()
	}

	ctx := composables.WithTenantID(tc.ctx, tc.tenantID)
	ctx = composables.WithLogger(ctx, logrus.NewEntry(tc.logger))
	// Transaction helpers reuse the context transaction, so services under
	// test never reach for a real pool.
	ctx = composables.WithTx(ctx, nopTx{})

	return &TestEnvironment{
		Ctx:      ctx,
		TenantID: tc.tenantID,
		Logger:   tc.logger,
		Stores:   tc.stores,
	}
}

// Setup builds a default test environment.
func Setup(tb testing.TB) *TestEnvironment {
	tb.Helper()
	return NewTestContext().Build(tb)
}

// TestEnvironment contains all test dependencies.
type TestEnvironment struct {
	Ctx      context.Context
	TenantID uuid.UUID
	Logger   *logrus.Logger
	Stores   *MemoryStores
}

// Entry returns a logger entry for constructing engine components.
func (te *TestEnvironment) Entry() *logrus.Entry {
	return logrus.NewEntry(te.Logger)
}
