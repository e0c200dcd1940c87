// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLCConfigIsValid(t *testing.T) {
	cfg := DefaultLCConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ws://127.0.0.1:8765/ctrl", cfg.MultiCtrl.RCAddr)
}

func TestLoadLCConfigMergesOnlyNamedKeys(t *testing.T) {
	src := `
multi_ctrl {
  domain_id = 3
  rc_addr   = "ws://10.0.0.1:8765/ctrl"
}
te {
  opti_method = "CSPFRecomp"
}
`
	cfg, err := LoadLCConfig([]byte(src), "test.hcl")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MultiCtrl.DomainID)
	assert.Equal(t, "ws://10.0.0.1:8765/ctrl", cfg.MultiCtrl.RCAddr)
	assert.Equal(t, "CSPFRecomp", cfg.TE.OptiMethod)

	def := DefaultLCConfig()
	assert.Equal(t, def.MultiCtrl.StartCom, cfg.MultiCtrl.StartCom, "an omitted key should keep its default")
	assert.Equal(t, def.Stats.Interval, cfg.Stats.Interval, "an omitted group's keys should keep their defaults")
	assert.Equal(t, def.TE.UtilisationThreshold, cfg.TE.UtilisationThreshold, "an omitted te key should keep its default while opti_method was overridden")
}

func TestLoadLCConfigRejectsOutOfRangeValues(t *testing.T) {
	cases := []string{
		`te { utilisation_threshold = 1.5 }`,
		`te { consolidate_time = 0.01 }`,
	}
	for _, src := range cases {
		_, err := LoadLCConfig([]byte(src), "test.hcl")
		assert.Errorf(t, err, "expected an error for config %q", src)
	}
}

func TestLoadLCConfigRejectsMalformedHCL(t *testing.T) {
	_, err := LoadLCConfig([]byte("not valid hcl {{{"), "test.hcl")
	assert.Error(t, err)
}
