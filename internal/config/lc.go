// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config loads the configuration surface for both daemons: an HCL
// file of grouped keys for the Local Controller, and a flag set for the
// Root Coordinator.
package config

import (
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/wandsdn/helix/internal/errors"
)

// StatsConfig is the "stats" group: whether and how often the controller
// polls switches for counters.
type StatsConfig struct {
	Collect     bool
	CollectPort bool
	Interval    float64
	OutPort     bool
}

// MultiCtrlConfig is the "multi_ctrl" group: this domain's identity within
// the hierarchy and whether it talks to the Root Coordinator at all.
type MultiCtrlConfig struct {
	StartCom bool
	DomainID int
	InstID   int

	// RCAddr is the Root Coordinator's control-channel websocket address
	// this domain dials when StartCom is set. Not present in the
	// original's registered options (its message-bus endpoint came from
	// separate broker config); added here since this module's transport
	// is a direct websocket dial rather than a broker URL looked up
	// elsewhere.
	RCAddr string
}

// ApplicationConfig is the "application" group: switch-program behaviour
// that isn't specific to stats or TE.
type ApplicationConfig struct {
	StaticPortDesc     string
	OptimiseProtection bool
}

// TEConfig is the "te" group: congestion threshold and the optimizer's
// method and sort-order knobs.
type TEConfig struct {
	UtilisationThreshold float64
	ConsolidateTime      float64
	OptiMethod           string
	CandidateSortRev     bool
	PotPathSortRev       bool
}

// LCConfig is the Local Controller's full grouped configuration.
type LCConfig struct {
	Stats       StatsConfig
	MultiCtrl   MultiCtrlConfig
	Application ApplicationConfig
	TE          TEConfig
}

// DefaultLCConfig mirrors the defaults the original controller registers
// for each group.
func DefaultLCConfig() LCConfig {
	return LCConfig{
		Stats: StatsConfig{
			Collect:     true,
			CollectPort: true,
			Interval:    10.0,
			OutPort:     false,
		},
		MultiCtrl: MultiCtrlConfig{
			StartCom: true,
			DomainID: 0,
			InstID:   -1,
			RCAddr:   "ws://127.0.0.1:8765/ctrl",
		},
		Application: ApplicationConfig{
			StaticPortDesc:     "",
			OptimiseProtection: false,
		},
		TE: TEConfig{
			UtilisationThreshold: 0.90,
			ConsolidateTime:      1.0,
			OptiMethod:           "FirstSol",
			CandidateSortRev:     true,
			PotPathSortRev:       false,
		},
	}
}

// rawStatsGroup, rawMultiCtrlGroup, rawApplicationGroup, and rawTEGroup hold
// one key per group field as a pointer, so decoding can tell "key present in
// the file" apart from "key omitted, keep the default" instead of silently
// overwriting a default with a zero value.
type rawStatsGroup struct {
	Collect     *bool    `hcl:"collect,optional"`
	CollectPort *bool    `hcl:"collect_port,optional"`
	Interval    *float64 `hcl:"interval,optional"`
	OutPort     *bool    `hcl:"out_port,optional"`
}

type rawMultiCtrlGroup struct {
	StartCom *bool   `hcl:"start_com,optional"`
	DomainID *int    `hcl:"domain_id,optional"`
	InstID   *int    `hcl:"inst_id,optional"`
	RCAddr   *string `hcl:"rc_addr,optional"`
}

type rawApplicationGroup struct {
	StaticPortDesc     *string `hcl:"static_port_desc,optional"`
	OptimiseProtection *bool   `hcl:"optimise_protection,optional"`
}

type rawTEGroup struct {
	UtilisationThreshold *float64 `hcl:"utilisation_threshold,optional"`
	ConsolidateTime      *float64 `hcl:"consolidate_time,optional"`
	OptiMethod           *string  `hcl:"opti_method,optional"`
	CandidateSortRev     *bool    `hcl:"candidate_sort_rev,optional"`
	PotPathSortRev       *bool    `hcl:"pot_path_sort_rev,optional"`
}

// rawLCConfig is what gohcl decodes into: every group and every key within
// it is optional, so a file naming only the groups and keys it wants to
// override decodes cleanly. LoadLCConfig merges whatever is present onto
// DefaultLCConfig.
type rawLCConfig struct {
	Stats       *rawStatsGroup       `hcl:"stats,block"`
	MultiCtrl   *rawMultiCtrlGroup   `hcl:"multi_ctrl,block"`
	Application *rawApplicationGroup `hcl:"application,block"`
	TE          *rawTEGroup          `hcl:"te,block"`
}

// LoadLCConfig parses HCL bytes into an LCConfig, starting from
// DefaultLCConfig so any group or key the file omits keeps its default.
func LoadLCConfig(data []byte, filename string) (*LCConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, errors.KindValidation, "config: parse %s", filename)
	}

	var raw rawLCConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, errors.KindValidation, "config: decode %s", filename)
	}

	cfg := DefaultLCConfig()
	cfg.mergeRaw(&raw)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadLCConfigFile reads and parses an HCL file from disk.
func LoadLCConfigFile(path string) (*LCConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindValidation, "config: read %s", path)
	}
	return LoadLCConfig(data, path)
}

func (c *LCConfig) mergeRaw(raw *rawLCConfig) {
	if g := raw.Stats; g != nil {
		if g.Collect != nil {
			c.Stats.Collect = *g.Collect
		}
		if g.CollectPort != nil {
			c.Stats.CollectPort = *g.CollectPort
		}
		if g.Interval != nil {
			c.Stats.Interval = *g.Interval
		}
		if g.OutPort != nil {
			c.Stats.OutPort = *g.OutPort
		}
	}
	if g := raw.MultiCtrl; g != nil {
		if g.StartCom != nil {
			c.MultiCtrl.StartCom = *g.StartCom
		}
		if g.DomainID != nil {
			c.MultiCtrl.DomainID = *g.DomainID
		}
		if g.InstID != nil {
			c.MultiCtrl.InstID = *g.InstID
		}
		if g.RCAddr != nil {
			c.MultiCtrl.RCAddr = *g.RCAddr
		}
	}
	if g := raw.Application; g != nil {
		if g.StaticPortDesc != nil {
			c.Application.StaticPortDesc = *g.StaticPortDesc
		}
		if g.OptimiseProtection != nil {
			c.Application.OptimiseProtection = *g.OptimiseProtection
		}
	}
	if g := raw.TE; g != nil {
		if g.UtilisationThreshold != nil {
			c.TE.UtilisationThreshold = *g.UtilisationThreshold
		}
		if g.ConsolidateTime != nil {
			c.TE.ConsolidateTime = *g.ConsolidateTime
		}
		if g.OptiMethod != nil {
			c.TE.OptiMethod = *g.OptiMethod
		}
		if g.CandidateSortRev != nil {
			c.TE.CandidateSortRev = *g.CandidateSortRev
		}
		if g.PotPathSortRev != nil {
			c.TE.PotPathSortRev = *g.PotPathSortRev
		}
	}
}

// Validate rejects a configuration whose values fall outside the ranges
// the original controller enforced when it registered these options.
func (c *LCConfig) Validate() error {
	if c.Stats.Interval < 0.5 || c.Stats.Interval > 600.0 {
		return errors.Errorf(errors.KindValidation, "config: stats.interval %v out of range [0.5, 600.0]", c.Stats.Interval)
	}
	if c.TE.UtilisationThreshold < 0.0 || c.TE.UtilisationThreshold > 1.0 {
		return errors.Errorf(errors.KindValidation, "config: te.utilisation_threshold %v out of range [0.0, 1.0]", c.TE.UtilisationThreshold)
	}
	if c.TE.ConsolidateTime < 0.1 {
		return errors.Errorf(errors.KindValidation, "config: te.consolidate_time %v below minimum 0.1", c.TE.ConsolidateTime)
	}
	switch c.TE.OptiMethod {
	case "FirstSol", "BestSolUsage", "BestSolPLen", "CSPFRecomp":
	default:
		return errors.Errorf(errors.KindValidation, "config: te.opti_method %q is not one of FirstSol, BestSolUsage, BestSolPLen, CSPFRecomp", c.TE.OptiMethod)
	}
	return nil
}
