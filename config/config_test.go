package config

import (
	"testing"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlagsAndDecode(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, BindFlags(fs))
	require.NoError(t, fs.Parse([]string{
		"--root-path=/srv/export",
		"--umask=0027",
		"--uid=100",
		"--gid=200",
		"--capabilities.link-support=true",
	}))

	cfg, err := Decode()
	require.NoError(t, err)

	assert.Equal(t, "/srv/export", cfg.RootPath)
	assert.Equal(t, Octal(0027), cfg.Umask)
	assert.Equal(t, 100, cfg.UID)
	assert.Equal(t, 200, cfg.GID)
	assert.True(t, cfg.Capabilities.LinkSupport)
	assert.True(t, cfg.Capabilities.SymlinkSupport)
	assert.True(t, cfg.Capabilities.ChownRestricted)
}

func TestDecodeDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, BindFlags(fs))
	require.NoError(t, fs.Parse(nil))

	cfg, err := Decode()
	require.NoError(t, err)

	assert.Equal(t, Octal(0022), cfg.Umask)
	assert.False(t, cfg.Capabilities.LinkSupport)
}

func TestOctalStringRendersFourDigits(t *testing.T) {
	assert.Equal(t, "0022", Octal(0022).String())
	assert.Equal(t, "0755", Octal(0755).String())
}

func TestConfigYAMLRoundTripsThroughViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, BindFlags(fs))
	require.NoError(t, fs.Parse([]string{"--root-path=/srv/export", "--umask=0027"}))

	cfg, err := Decode()
	require.NoError(t, err)

	rendered, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, rendered, "root-path: /srv/export")
	assert.Contains(t, rendered, "umask: 23")
}
