package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signs-study-service/internal/app"
	"signs-study-service/internal/config"
)

func TestSampleMockTestIsWellFormed(t *testing.T) {
	c := sampleCatalog()
	require.Len(t, c.MockTests, 1)
	qs := c.MockTests[0].Questions
	require.Len(t, qs, 40)

	slots := map[int]int{}
	for _, q := range qs {
		seen := map[string]bool{}
		for _, o := range q.Options {
			assert.False(t, seen[o], "duplicate option %q in %q", o, q.Prompt)
			seen[o] = true
		}
		slots[q.CorrectOption]++
	}
	assert.Equal(t, map[int]int{0: 10, 1: 10, 2: 10, 3: 10}, slots)
}

func TestStudyConfigDefaults(t *testing.T) {
	var cfg config.Config
	cfg.Study.PracticeLimit = 10
	got := studyConfig(cfg)
	assert.Equal(t, 10, got.PracticeLimit)
	assert.Equal(t, app.DefaultStudyConfig().MockPassCorrect, got.MockPassCorrect)
	assert.Equal(t, app.DefaultStudyConfig().PassPercent, got.PassPercent)
	assert.Equal(t, app.DefaultStudyConfig().Distractors, got.Distractors)

	zero := 0
	cfg.Study.Distractors = &zero
	assert.Equal(t, 0, studyConfig(cfg).Distractors, "explicit zero is kept")
}

func TestBuildPersistenceSQLite(t *testing.T) {
	var cfg config.Config
	cfg.Storage.Driver = config.DriverSQLite
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "study.db")

	p, b, err := buildPersistence(context.Background(), cfg)
	require.NoError(t, err)
	defer b.Close()

	study := newStudyService(p, cfg)
	_, err = study.RecordAnswer(context.Background(), "u1", 1, true)
	require.NoError(t, err)

	overview := study.Overview(context.Background(), "u1")
	assert.Equal(t, 1, overview.Global.Learning)
}

func TestStatsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: memory\n"), 0o600))

	cmd := NewStatsCmd(&path)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--user", "u1"})
	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Signs for u1: 0% mastered (0 of 10)"), text)
	assert.Contains(t, text, "Getting Started")
	assert.Contains(t, text, "0/3 lessons, ~24 min, not started")
}

func TestInvalidateCatalogCache(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("catalog:v1", `{"signs":[]}`))

	var cfg config.Config
	cleared, err := invalidateCatalogCache(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, cleared, "nothing to clear without redis")
	assert.True(t, mr.Exists("catalog:v1"))

	cfg.Redis.Addr = mr.Addr()
	cleared, err = invalidateCatalogCache(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.False(t, mr.Exists("catalog:v1"), "running services reload the catalog after an import")
}
