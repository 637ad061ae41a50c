package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_TOMLOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hudscan.toml")
	body := "threshold = 0.45\ntemplate_dir = \"icons\"\nscan_keys = [\"3\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.45, cfg.Threshold)
	assert.Equal(t, "icons", cfg.TemplateDir)
	assert.Equal(t, []string{"3"}, cfg.ScanKeys)
	assert.Equal(t, 15, cfg.ScaleSteps)
	assert.Equal(t, 0.7, cfg.IntensityWeight)
}

func TestSaveLoad_JSONRoundTripKeepsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hudscan.json")
	cfg := DefaultConfig()
	cfg.Tolerance = 20
	cfg.ChannelOrder = "bgr"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_BadJSONReturnsDefaultsAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	cfg, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, DefaultConfig().Threshold, cfg.Threshold)
}

func TestValidate_ClampsOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tolerance = 400
	cfg.ScaleSteps = 0
	cfg.MaxScale = 0.05
	cfg.CannyLow, cfg.CannyHigh = 200, 100
	cfg.ScaleWorkers = -3
	cfg.ChannelOrder = " BGR "
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 15, cfg.Tolerance)
	assert.Equal(t, 2, cfg.ScaleSteps)
	assert.Equal(t, cfg.MinScale, cfg.MaxScale)
	assert.Equal(t, 100.0, cfg.CannyLow)
	assert.Equal(t, 200.0, cfg.CannyHigh)
	assert.Equal(t, 1, cfg.ScaleWorkers)
	assert.Equal(t, "bgr", cfg.ChannelOrder)
}

func TestValidate_RejectsBadColor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetColor = "yellow"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ChannelOrder = "rbg"
	assert.Error(t, cfg.Validate())
}

func TestTargetRGB_ChannelOrder(t *testing.T) {
	cfg := DefaultConfig()
	r, g, b, err := cfg.TargetRGB()
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{234, 255, 5}, [3]uint8{r, g, b})

	cfg.ChannelOrder = "bgr"
	r, g, b, err = cfg.TargetRGB()
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{5, 255, 234}, [3]uint8{r, g, b})
}
