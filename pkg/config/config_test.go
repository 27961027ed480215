package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.True(t, cfg.Timetable.Enabled)
	assert.Equal(t, 2*time.Hour, cfg.Timetable.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.Timetable.SnapshotCacheTTL)
	assert.Equal(t, 2, cfg.Timetable.JobWorkers)
	assert.False(t, cfg.Timetable.CheckClassroom)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", EnvProduction)
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://pnf.example.edu, ,http://localhost:5173")
	t.Setenv("TIMETABLE_SESSION_TTL", "45m")
	t.Setenv("TIMETABLE_SNAPSHOT_CACHE_TTL", "not-a-duration")
	t.Setenv("TIMETABLE_CHECK_CLASSROOM", "true")
	t.Setenv("ENABLE_REDIS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://pnf.example.edu", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 45*time.Minute, cfg.Timetable.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.Timetable.SnapshotCacheTTL)
	assert.True(t, cfg.Timetable.CheckClassroom)
	assert.False(t, cfg.Redis.Enabled)
}
