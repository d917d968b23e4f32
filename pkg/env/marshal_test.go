package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Path    string        `env:"SAMPLE_PATH,required"`
	Retries int           `env:"SAMPLE_RETRIES"`
	Timeout time.Duration `env:"SAMPLE_TIMEOUT"`
	Debug   bool          `env:"SAMPLE_DEBUG"`
	Name    string        `env:"SAMPLE_NAME"`
	Skipped string
}

type otherConfig struct {
	Model string `env:"OTHER_MODEL"`
}

func TestMarshalEnv(t *testing.T) {
	out, err := MarshalEnv(
		&sampleConfig{
			Path:    "/tmp/glimpse",
			Retries: 2,
			Timeout: 90 * time.Second,
			Name:    "Glimpse Agent",
			Skipped: "ignored",
		},
		&otherConfig{Model: "gpt-4o-mini"},
	)
	require.NoError(t, err)

	assert.Equal(t, "SAMPLE_PATH=/tmp/glimpse\n"+
		"SAMPLE_RETRIES=2\n"+
		"SAMPLE_TIMEOUT=1m30s\n"+
		"SAMPLE_NAME=\"Glimpse Agent\"\n"+
		"OTHER_MODEL=gpt-4o-mini\n", out)
}

func TestMarshalEnv_Empty(t *testing.T) {
	out, err := MarshalEnv(&sampleConfig{})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestMarshalEnv_RejectsNonPointer(t *testing.T) {
	_, err := MarshalEnv(sampleConfig{})
	assert.Error(t, err)
}
