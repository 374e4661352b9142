package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestApplyEnv(t *testing.T) {
	t.Cleanup(Reset)

	testCases := []struct {
		env      string
		enabled  []Category
		disabled []Category
	}{
		{"all", []Category{APP, FS, FS_ENTRY, WATCH}, nil},
		{"none", nil, []Category{APP, FS, TREE}},
		{"fs, tree", []Category{FS, TREE}, []Category{APP, STORE, FS_ENTRY}},
	}

	for _, tc := range testCases {
		Reset()
		ApplyEnv(tc.env)
		for _, cat := range tc.enabled {
			assert.True(t, IsEnabled(cat), "env %q: %s should be enabled", tc.env, cat)
		}
		for _, cat := range tc.disabled {
			assert.False(t, IsEnabled(cat), "env %q: %s should be disabled", tc.env, cat)
		}
	}
}

func TestLogRespectsCategory(t *testing.T) {
	t.Cleanup(Reset)
	t.Cleanup(func() { SetLogger(nil) })

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))

	Reset()
	Disable(FS_ENTRY)
	Log(FS_ENTRY, "skipped")
	Log(TREE, "expanded", zap.String("path", "/tmp"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "expanded", entries[0].Message)
	assert.Equal(t, "TREE", entries[0].ContextMap()["cat"])
	assert.Equal(t, "/tmp", entries[0].ContextMap()["path"])
}

func TestListEnabledSorted(t *testing.T) {
	t.Cleanup(Reset)
	Reset()
	ApplyEnv("TREE,APP")
	assert.Equal(t, []Category{APP, TREE}, ListEnabled())
}
