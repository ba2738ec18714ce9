package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dronefly-project/dronefly/parser"
)

const sampleConfig = `
[inat]
www_base_url = "https://inaturalist.ca"

[log]
verbosity = 2

[parser.macros.yard]
from = "my yard"

[parser.macros.birdsrg]
of = "birds"
opt = ["quality_grade=research"]

[parser.macros.rg]
opt = "quality_grade=research,needs_id"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ProjectConfigName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// isolate points HOME and the working directory at empty temp dirs so no
// real config files are merged.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	wd, err := os.Getwd()
	require.NoError(t, err)
	work := t.TempDir()
	require.NoError(t, os.Chdir(work))
	t.Cleanup(func() {
		os.Chdir(wd)
		Reset()
	})
	Reset()
	return work
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultWWWBaseURL, cfg.INat.WWWBaseURL)
	assert.Equal(t, PreferDatesFromPast, cfg.Parser.PreferDatesFrom)
	assert.Equal(t, DefaultPluginName, cfg.Plugin.Name)
	assert.Equal(t, DefaultHostVersion, cfg.Plugin.HostVersion)
	assert.Equal(t, float64(DefaultRefinesPerMinute), cfg.Plugin.RefinesPerMinute)
	assert.True(t, cfg.Plugin.WatchConfig)
	assert.Empty(t, cfg.Parser.Macros)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, cfg, Default())
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://inaturalist.ca", cfg.GetWWWBaseURL())
	assert.Equal(t, 2, cfg.Log.Verbosity)
	assert.Equal(t, DefaultPluginName, cfg.Plugin.Name, "unset keys keep their defaults")

	assert.Equal(t, parser.Macro{From: "my yard"}, cfg.Parser.Macros["yard"])
	assert.Equal(t, parser.Macro{Of: "birds", Opt: []string{"quality_grade=research"}}, cfg.Parser.Macros["birdsrg"])
	assert.Equal(t, []string{"quality_grade=research,needs_id"}, cfg.Parser.Macros["rg"].Opt)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoad_ProjectConfigAndEnv(t *testing.T) {
	work := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(work, ProjectConfigName), []byte(sampleConfig), 0644))
	t.Setenv("DRONEFLY_LOG_JSON", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://inaturalist.ca", cfg.INat.WWWBaseURL)
	assert.True(t, cfg.Log.JSON)
	assert.Contains(t, cfg.Parser.Macros, "yard")

	again, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, again, "Load caches until Reset")

	settings := Introspect()
	bySetting := make(map[string]SettingInfo, len(settings))
	for _, s := range settings {
		bySetting[s.Key] = s
	}
	assert.Equal(t, SourceProject, bySetting["inat.www_base_url"].Source)
	assert.Equal(t, SourceDefault, bySetting["plugin.name"].Source)
	assert.Equal(t, SourceEnvironment, bySetting["log.json"].Source)
	assert.Equal(t, "DRONEFLY_LOG_JSON", bySetting["log.json"].SourcePath)
}

func TestLoad_UserConfig(t *testing.T) {
	isolate(t)
	userPath := UserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), DefaultDirPermissions))
	require.NoError(t, os.WriteFile(userPath, []byte("[plugin]\nname = \"inat-test\"\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "inat-test", cfg.Plugin.Name)
	assert.Equal(t, userPath, ActiveConfigPath())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty prefer_dates_from is valid", func(c *Config) { c.Parser.PreferDatesFrom = "" }, false},
		{"future dates unsupported", func(c *Config) { c.Parser.PreferDatesFrom = "future" }, true},
		{"macro expanding to nothing", func(c *Config) { c.Parser.Macros = map[string]parser.Macro{"noop": {}} }, true},
		{"macro with a value", func(c *Config) { c.Parser.Macros = map[string]parser.Macro{"yard": {From: "my yard"}} }, false},
		{"negative verbosity", func(c *Config) { c.Log.Verbosity = -1 }, true},
		{"bad host version", func(c *Config) { c.Plugin.HostVersion = "three" }, true},
		{"zero refine rate is unlimited", func(c *Config) { c.Plugin.RefinesPerMinute = 0 }, false},
		{"negative refine rate", func(c *Config) { c.Plugin.RefinesPerMinute = -1 }, true},
		{"negative burst", func(c *Config) { c.Plugin.RefineBurst = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "am.toml")

	cfg := Default()
	cfg.Parser.Macros = map[string]parser.Macro{"yard": {From: "my yard"}}
	require.NoError(t, Save(cfg, path))

	_, err := os.Stat(path + ".back1")
	assert.True(t, os.IsNotExist(err), "first save has nothing to back up")

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	cfg.Log.Verbosity = 1
	require.NoError(t, Save(cfg, path))

	backup, err := os.ReadFile(path + ".back1")
	require.NoError(t, err)
	assert.Equal(t, first, backup)

	loaded, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Log.Verbosity)
}

func TestSave_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	cfg := Default()
	cfg.Log.Verbosity = -3
	assert.Error(t, Save(cfg, path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestConfigWatcher_Reload(t *testing.T) {
	path := writeConfig(t, "[log]\nverbosity = 1\n")

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	cw.debouncePeriod = 20 * time.Millisecond
	defer cw.Stop()

	reloaded := make(chan *Config, 4)
	cw.OnReload(func(cfg *Config) error {
		reloaded <- cfg
		return nil
	})
	cw.Start()

	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 2, cfg.Log.Verbosity)
		assert.Contains(t, cfg.Parser.Macros, "yard")
	case <-time.After(5 * time.Second):
		t.Fatal("config reload callback was not called")
	}
}

func TestConfigWatcher_InvalidReloadSkipsCallbacks(t *testing.T) {
	path := writeConfig(t, "[log]\nverbosity = 1\n")

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer cw.Stop()

	called := false
	cw.OnReload(func(*Config) error {
		called = true
		return nil
	})

	require.NoError(t, os.WriteFile(path, []byte("[parser]\nprefer_dates_from = \"future\"\n"), 0644))
	assert.Error(t, cw.reload())
	assert.False(t, called)
}

func TestConfigWatcher_OwnWrite(t *testing.T) {
	path := writeConfig(t, "")
	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer cw.Stop()

	SetGlobalWatcher(cw)
	defer SetGlobalWatcher(nil)
	assert.Same(t, cw, GetGlobalWatcher())

	require.NoError(t, Save(Default(), path))
	assert.True(t, cw.checkOwnWrite(), "Save marks its own write")
	assert.False(t, cw.checkOwnWrite(), "the mark is cleared once seen")
}

func TestIsBackupFile(t *testing.T) {
	assert.True(t, isBackupFile("/home/u/.dronefly/am.toml.back1"))
	assert.False(t, isBackupFile("/home/u/.dronefly/am.toml"))
}
