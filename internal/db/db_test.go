package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"parkkean-backend/config"
	"parkkean-backend/internal/model"
)

func memoryConfig(t *testing.T) *config.DatabaseConfig {
	return &config.DatabaseConfig{
		DSN:                    fmt.Sprintf("sqlite:file:%s?mode=memory&cache=shared", t.Name()),
		MaxOpenConns:           4,
		MaxIdleConns:           2,
		ConnMaxLifetimeMinutes: 30,
	}
}

func openMemory(t *testing.T) *gorm.DB {
	db, err := Init(memoryConfig(t))
	require.NoError(t, err)
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestInit_SQLiteMigratesSchema(t *testing.T) {
	db := openMemory(t)

	for _, table := range []string{"lots", "users", "reports", "push_subscriptions", "subscription_lot_mapping"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
	assert.True(t, db.Migrator().HasIndex("reports", "idx_reports_lot_id_created_at"))
}

func TestInit_SQLiteCreatesDataDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	cfg := memoryConfig(t)
	cfg.DSN = "sqlite:" + filepath.Join(dir, "parkkean.db")

	db, err := Init(cfg)
	require.NoError(t, err)
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	assert.DirExists(t, dir)
}

func TestDialectorFor(t *testing.T) {
	testCases := []struct {
		dsn     string
		name    string
		wantErr bool
	}{
		{dsn: "postgres://parking@localhost:5432/parkkean?sslmode=disable", name: "postgres"},
		{dsn: "host=localhost user=parking dbname=parkkean", name: "postgres"},
		{dsn: "sqlite::memory:", name: "sqlite"},
		{dsn: "sqlite:", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.dsn, func(t *testing.T) {
			d, err := dialectorFor(tc.dsn)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.name, d.Name())
		})
	}
}

func TestSeed(t *testing.T) {
	db := openMemory(t)
	now := time.Date(2024, time.September, 3, 12, 0, 0, 0, time.UTC)

	require.NoError(t, Seed(context.Background(), db, now))
	// A second run must not duplicate anything.
	require.NoError(t, Seed(context.Background(), db, now))

	var lots []model.Lot
	require.NoError(t, db.Order("id").Find(&lots).Error)
	require.Len(t, lots, 13)

	first := lots[0]
	assert.Equal(t, "VAUGHN_EAMES", first.Code)
	assert.Equal(t, 140, first.Capacity)
	assert.Equal(t, 110, first.Occupancy)
	assert.Equal(t, model.StatusLimited, first.Status)
	require.NotNil(t, first.FullBy)
	assert.Equal(t, "08:30", *first.FullBy)
	assert.Equal(t, now.Add(-(2*time.Hour + 15*time.Minute)).UnixMilli(), first.LastUpdated)

	for _, lot := range lots {
		assert.True(t, model.ValidStatus(lot.Status), lot.Code)
		assert.LessOrEqual(t, lot.Occupancy, lot.Capacity, lot.Code)
	}

	var users []model.User
	require.NoError(t, db.Order("points DESC").Find(&users).Error)
	require.Len(t, users, 3)
	assert.Equal(t, "michael", users[0].Username)
	assert.Equal(t, 45, users[0].Points)
	assert.Equal(t, 9, users[0].Reports)

	var reports []model.Report
	require.NoError(t, db.Find(&reports).Error)
	require.Len(t, reports, 1)
	assert.Equal(t, model.StatusFull, reports[0].ReportedStatus)
	assert.Equal(t, users[0].ID, reports[0].UserID)
}
