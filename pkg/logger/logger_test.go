package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gelp-api/pkg/logger"
)

func TestNew_JSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "debug", Output: &buf})

	log.Component("sales").Debug().Str("sale_id", "s-1").Msg("venta registrada")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "sales", line["component"])
	assert.Equal(t, "s-1", line["sale_id"])
	assert.Equal(t, "debug", line["level"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	log.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("sí")
	assert.NotZero(t, buf.Len())
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "verbose", Output: &buf})

	log.Debug().Msg("descartado")
	assert.Zero(t, buf.Len())
	log.Info().Msg("visible")
	assert.NotZero(t, buf.Len())
}
