// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"flag"
	"testing"

	"github.com/wandsdn/helix/internal/logging"
)

func TestLoadLCConfigFillsDefaultsForOmittedGroups(t *testing.T) {
	hcl := `
te {
  utilisation_threshold = 0.75
  opti_method = "BestSolUsage"
}
`
	cfg, err := LoadLCConfig([]byte(hcl), "test.hcl")
	if err != nil {
		t.Fatalf("LoadLCConfig: %v", err)
	}
	if cfg.TE.UtilisationThreshold != 0.75 {
		t.Errorf("TE.UtilisationThreshold = %v, want 0.75", cfg.TE.UtilisationThreshold)
	}
	if cfg.TE.OptiMethod != "BestSolUsage" {
		t.Errorf("TE.OptiMethod = %q, want BestSolUsage", cfg.TE.OptiMethod)
	}
	if !cfg.TE.CandidateSortRev {
		t.Error("TE.CandidateSortRev should keep its default of true")
	}
	if !cfg.Stats.Collect {
		t.Error("Stats.Collect should keep its default of true")
	}
	if cfg.MultiCtrl.DomainID != 0 {
		t.Errorf("MultiCtrl.DomainID = %d, want 0", cfg.MultiCtrl.DomainID)
	}
}

func TestLoadLCConfigAllGroups(t *testing.T) {
	hcl := `
stats {
  collect = true
  collect_port = false
  interval = 30.0
  out_port = true
}
multi_ctrl {
  start_com = false
  domain_id = 2
  inst_id = 7
}
application {
  static_port_desc = "/etc/helix/ports.json"
  optimise_protection = true
}
te {
  utilisation_threshold = 0.80
  consolidate_time = 2.5
  opti_method = "CSPFRecomp"
  candidate_sort_rev = false
  pot_path_sort_rev = true
}
`
	cfg, err := LoadLCConfig([]byte(hcl), "test.hcl")
	if err != nil {
		t.Fatalf("LoadLCConfig: %v", err)
	}
	if cfg.Stats.CollectPort {
		t.Error("Stats.CollectPort should be false")
	}
	if !cfg.Stats.OutPort {
		t.Error("Stats.OutPort should be true")
	}
	if cfg.MultiCtrl.StartCom {
		t.Error("MultiCtrl.StartCom should be false")
	}
	if cfg.MultiCtrl.InstID != 7 {
		t.Errorf("MultiCtrl.InstID = %d, want 7", cfg.MultiCtrl.InstID)
	}
	if cfg.Application.StaticPortDesc != "/etc/helix/ports.json" {
		t.Errorf("Application.StaticPortDesc = %q", cfg.Application.StaticPortDesc)
	}
	if !cfg.TE.PotPathSortRev {
		t.Error("TE.PotPathSortRev should be true")
	}
}

func TestLoadLCConfigRejectsOutOfRangeInterval(t *testing.T) {
	hcl := `
stats {
  interval = 1000.0
}
`
	if _, err := LoadLCConfig([]byte(hcl), "test.hcl"); err == nil {
		t.Fatal("expected an error for an out-of-range stats.interval")
	}
}

func TestLoadLCConfigRejectsUnknownOptiMethod(t *testing.T) {
	hcl := `
te {
  opti_method = "NotARealMethod"
}
`
	if _, err := LoadLCConfig([]byte(hcl), "test.hcl"); err == nil {
		t.Fatal("expected an error for an unrecognised te.opti_method")
	}
}

func TestParseRCFlagsDefaults(t *testing.T) {
	fs := flag.NewFlagSet("rc", flag.ContinueOnError)
	cfg, err := ParseRCFlags(fs, nil)
	if err != nil {
		t.Fatalf("ParseRCFlags: %v", err)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Errorf("LogLevel = %v, want LevelInfo", cfg.LogLevel)
	}
	if !cfg.TECandidateSortRev {
		t.Error("TECandidateSortRev should default to true")
	}
	if cfg.TEPartialAccept {
		t.Error("TEPartialAccept should default to false")
	}
}

func TestParseRCFlagsOverrides(t *testing.T) {
	fs := flag.NewFlagSet("rc", flag.ContinueOnError)
	args := []string{
		"--loglevel", "debug",
		"--log-file", "/var/log/helix/rc.log",
		"--te_candidate_sort_rev", "false",
		"--te_partial_accept", "true",
	}
	cfg, err := ParseRCFlags(fs, args)
	if err != nil {
		t.Fatalf("ParseRCFlags: %v", err)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Errorf("LogLevel = %v, want LevelDebug", cfg.LogLevel)
	}
	if cfg.LogFile != "/var/log/helix/rc.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.TECandidateSortRev {
		t.Error("TECandidateSortRev should be false")
	}
	if !cfg.TEPartialAccept {
		t.Error("TEPartialAccept should be true")
	}
}

func TestParseRCFlagsNumericLogLevel(t *testing.T) {
	fs := flag.NewFlagSet("rc", flag.ContinueOnError)
	cfg, err := ParseRCFlags(fs, []string{"--loglevel", "0"})
	if err != nil {
		t.Fatalf("ParseRCFlags: %v", err)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Errorf("LogLevel = %v, want LevelDebug (0)", cfg.LogLevel)
	}
}

func TestParseRCFlagsRejectsUnknownLogLevel(t *testing.T) {
	fs := flag.NewFlagSet("rc", flag.ContinueOnError)
	if _, err := ParseRCFlags(fs, []string{"--loglevel", "not-a-level"}); err == nil {
		t.Fatal("expected an error for an unrecognised --loglevel")
	}
}
