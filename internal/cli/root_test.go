package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keepline/internal/ir"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "keepline", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"init", "list", "import", "apply", "show", "export", "delete", "replay", "validate", "test", "watch"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, defaultDatabase, dbFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
}

func newTestViper() *viper.Viper {
	return viper.New()
}

func TestConfig_FilePrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "keepline.yaml", "db: "+filepath.Join(dir, "from-config.db")+"\nformat: json\nlog_level: debug\n")

	opts := &RootOptions{}
	v := newTestViper()
	cfg, err := loadConfig(v, cfgPath)
	require.NoError(t, err)
	cfg.apply(opts)

	assert.Equal(t, filepath.Join(dir, "from-config.db"), opts.Database)
	assert.Equal(t, "json", opts.Format)
	assert.Equal(t, "debug", opts.LogLevel)
}

func TestConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "keepline.yaml", "format: json\n")
	t.Setenv("KEEPLINE_FORMAT", "text")
	t.Setenv("KEEPLINE_DB", "env.db")

	cfg, err := loadConfig(newTestViper(), cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "env.db", cfg.DB)
}

func TestConfig_Defaults(t *testing.T) {
	// Run from an empty directory so no .keepline.yaml is picked up.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig(newTestViper(), "")
	require.NoError(t, err)
	assert.Equal(t, Config{DB: defaultDatabase, Format: "text", LogLevel: "warn"}, cfg)
}

func TestConfig_MissingExplicitFile(t *testing.T) {
	_, err := loadConfig(newTestViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestRoot_FlagBeatsConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "keepline.yaml", "format: json\ndb: "+filepath.Join(dir, "cfg.db")+"\n")
	flagDB := filepath.Join(dir, "flag.db")

	root := NewRootCommand()
	out, err := execute(t, root, "--config", cfgPath, "--db", flagDB, "list")
	require.NoError(t, err)

	// JSON from the config file, database from the flag.
	assert.Contains(t, out, `"status": "ok"`)
	_, statErr := os.Stat(flagDB)
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(dir, "cfg.db"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRoot_InvalidFormat(t *testing.T) {
	root := NewRootCommand()
	_, err := execute(t, root, "--db", filepath.Join(t.TempDir(), "x.db"), "--format", "xml", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	root := NewRootCommand()
	_, err := execute(t, root, "--db", filepath.Join(t.TempDir(), "x.db"), "--log-level", "loud", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
}

func TestRoot_Version(t *testing.T) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "keepline version "+ir.EngineVersion+"\n", out.String())
}
