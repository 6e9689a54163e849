package database

import (
	"context"
	"testing"
	"testing/fstest"

	"agora/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=1"), GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePool_Defaults(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, configurePool(db, &config.Config{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "agora"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=agora sslmode=disable TimeZone=UTC", DSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mode    string
		wantSQL bool
		wantAut bool
		wantErr bool
	}{
		{"hybrid dev", "development", "", true, true, false},
		{"hybrid prod", "production", "hybrid", true, false, false},
		{"sql", "development", "sql", true, false, false},
		{"auto dev", "development", "auto", false, true, false},
		{"auto prod refused", "production", "auto", false, false, true},
		{"unknown mode", "development", "yolo", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&config.Config{Env: tt.env, DBSchemaMode: tt.mode})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAut, runAuto)
		})
	}
}

func TestEmbeddedMigrationsLoad(t *testing.T) {
	set, err := GetMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, set)
	assert.Equal(t, 1, set[0].Version)
	assert.Equal(t, "000001_init", set[0].String())
	assert.Contains(t, set[0].UpScript, "chk_followers_no_self")
	assert.Contains(t, set[0].DownScript, "DROP TABLE IF EXISTS post_likes")
}

func TestLoadMigrations_RejectsMissingDown(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000001_a.up.sql": {Data: []byte("SELECT 1")},
	}
	_, err := LoadMigrations(fsys, "m")
	assert.Error(t, err)
}

func TestLoadMigrations_SortsByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_b.up.sql":   {Data: []byte("b-up")},
		"m/000002_b.down.sql": {Data: []byte("b-down")},
		"m/000001_a.up.sql":   {Data: []byte("a-up")},
		"m/000001_a.down.sql": {Data: []byte("a-down")},
		"m/README.md":         {Data: []byte("ignored")},
	}
	set, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, "a", set[0].Name)
	assert.Equal(t, "b-down", set[1].DownScript)
}

func TestMigrator_UpAndDown(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	m := newMigrator(db, []Migration{
		{Version: 1, Name: "widgets", UpScript: "CREATE TABLE widgets (id INTEGER PRIMARY KEY)", DownScript: "DROP TABLE widgets"},
		{Version: 2, Name: "gadgets", UpScript: "CREATE TABLE gadgets (id INTEGER PRIMARY KEY)", DownScript: "DROP TABLE gadgets"},
	})

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, m.Up(ctx))
	assert.True(t, db.Migrator().HasTable("widgets"))
	assert.True(t, db.Migrator().HasTable("gadgets"))

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)

	// Second run is a no-op.
	require.NoError(t, m.Up(ctx))

	require.NoError(t, m.Down(ctx, 2))
	assert.False(t, db.Migrator().HasTable("gadgets"))
	assert.Error(t, m.Down(ctx, 2))
	assert.Error(t, m.Down(ctx, 9))
}

func TestMigrator_RejectsUnknownAppliedVersions(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	require.NoError(t, db.Create(&MigrationLog{Version: 42, Name: "ghost"}).Error)

	err := newMigrator(db, []Migration{{Version: 1, Name: "a", UpScript: "SELECT 1", DownScript: "SELECT 1"}}).Up(ctx)
	assert.ErrorIs(t, err, errUnknownVersions)
}

func TestAutoMigrate_CreatesSchema(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"users", "followers", "posts", "comments", "post_likes"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.False(t, db.Migrator().HasColumn("posts", "likes_count"))
	assert.True(t, db.Migrator().HasConstraint("followers", "chk_followers_no_self"))
}
