package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/angelmondragon/tienda-backend/pkg/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := fs.Glob(migrate.Migrations(), "*_"+suffix+".sql")
	require.NoError(t, err)
	require.Len(t, matches, 1, "expected one %s migration", suffix)
	data, err := fs.ReadFile(migrate.Migrations(), matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestOrderLedgerMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_order_ledger")

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CHECK (quantity > 0)",
		"CHECK ((product_id IS NULL) <> (variant_id IS NULL))",
		"CREATE TABLE IF NOT EXISTS order_status_history",
		"CREATE TABLE IF NOT EXISTS shipment_status_history",
		"CREATE TABLE IF NOT EXISTS shipment_events",
		"BEFORE UPDATE OR DELETE ON order_status_history",
		"DROP TABLE IF EXISTS orders",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestBadgeAwardsAreUniquePerUser(t *testing.T) {
	content := readMigration(t, "create_cart_and_badges")
	assert.Contains(t, content, "CONSTRAINT idx_badge_awards_user_badge UNIQUE (user_id, badge_id)")
	for _, key := range []string{"first_purchase", "featured_units_5", "first_share", "bulk_units_10", "streak_3_months", "all_categories"} {
		assert.Contains(t, content, "'"+key+"'")
	}
}

func TestPaymentMethodsAreSeeded(t *testing.T) {
	content := readMigration(t, "create_catalog_and_users")
	for _, row := range []string{
		"(1, 'Tarjeta de crédito', 'immediate', true)",
		"(2, 'Tarjeta de débito', 'immediate', true)",
		"(3, 'Efectivo contra entrega', 'cash_on_delivery', true)",
		"(4, 'MercadoPago', 'gateway', true)",
	} {
		assert.Contains(t, content, row)
	}
	assert.Contains(t, content, "pg_get_serial_sequence('payment_methods', 'id')", "sequence must skip the seeded ids")
}

func TestValidateAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, migrate.Validate(migrate.Migrations()))
	require.NoError(t, migrate.Validate(os.DirFS("migrations")))
}

func TestValidateRejectsMissingDownMarker(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_broken.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644))
	err := migrate.Validate(os.DirFS(dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "+goose Down")
}

func TestCreateSQLMigrationKeepsVersionsMonotonic(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first, err := migrate.CreateSQLMigration(dir, "Add Refund Column", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260301090000_add_refund_column.sql"), first)

	second, err := migrate.CreateSQLMigration(dir, "add refund column", now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "20260301090001_add_refund_column.sql"), second)
	require.NoError(t, migrate.Validate(os.DirFS(dir)))
}
