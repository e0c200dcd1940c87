// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"flag"
	"strconv"
	"strings"

	"github.com/wandsdn/helix/internal/errors"
	"github.com/wandsdn/helix/internal/logging"
)

// RCFlags is the Root Coordinator's flags-only CLI surface.
type RCFlags struct {
	LogLevel           logging.Level
	LogFile            string
	TECandidateSortRev bool
	TEPartialAccept    bool

	// StateDir is where the four persisted-state dumps are written. The
	// original always wrote them into the process's cwd; this flag is a
	// deliberate addition so the daemon doesn't have to run from a
	// writable working directory to get operator-inspectable state.
	StateDir string

	// Listen is the control channel's websocket listen address.
	Listen string
	// MetricsListen is the Prometheus /metrics listen address.
	MetricsListen string
}

// DefaultRCFlags mirrors the original parser's defaults.
func DefaultRCFlags() RCFlags {
	return RCFlags{
		LogLevel:           logging.LevelInfo,
		LogFile:            "",
		TECandidateSortRev: true,
		TEPartialAccept:    false,
		StateDir:           ".",
		Listen:             ":8765",
		MetricsListen:      ":9090",
	}
}

// ParseRCFlags parses args (normally os.Args[1:]) into an RCFlags. --loglevel
// accepts either a name (debug, info, warning, error, critical) or a raw
// numeric level; --te_candidate_sort_rev and --te_partial_accept accept
// "true"/"false" the way the original argparse-based parser did.
func ParseRCFlags(fs *flag.FlagSet, args []string) (RCFlags, error) {
	cfg := DefaultRCFlags()

	var logLevel, candidateSortRev, partialAccept string
	fs.StringVar(&logLevel, "loglevel", "info", "debug|info|warning|error|critical|<int>")
	fs.StringVar(&cfg.LogFile, "log-file", "", "path to write logs to (stderr if empty)")
	fs.StringVar(&candidateSortRev, "te_candidate_sort_rev", "true", "sort inter-domain TE candidates descending by usage")
	fs.StringVar(&partialAccept, "te_partial_accept", "false", "accept a TE fix set that reduces but doesn't eliminate congestion")
	fs.StringVar(&cfg.StateDir, "state-dir", ".", "directory the persisted-state dumps are written to")
	fs.StringVar(&cfg.Listen, "listen", ":8765", "control channel websocket listen address")
	fs.StringVar(&cfg.MetricsListen, "metrics-listen", ":9090", "Prometheus /metrics listen address")

	if err := fs.Parse(args); err != nil {
		return RCFlags{}, errors.Wrap(err, errors.KindValidation, "config: parse RC flags")
	}

	level, err := parseLogLevel(logLevel)
	if err != nil {
		return RCFlags{}, err
	}
	cfg.LogLevel = level

	sortRev, err := parseBoolFlag("te_candidate_sort_rev", candidateSortRev)
	if err != nil {
		return RCFlags{}, err
	}
	cfg.TECandidateSortRev = sortRev

	accept, err := parseBoolFlag("te_partial_accept", partialAccept)
	if err != nil {
		return RCFlags{}, err
	}
	cfg.TEPartialAccept = accept

	return cfg, nil
}

// parseLogLevel accepts a level name or a raw integer, matching the
// original's "--loglevel {debug|info|warning|error|critical|<int>}".
func parseLogLevel(s string) (logging.Level, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return logging.Level(n), nil
	}
	level, err := logging.ParseLevel(s)
	if err != nil {
		return 0, errors.Wrapf(err, errors.KindValidation, "config: invalid --loglevel %q", s)
	}
	return level, nil
}

// parseBoolFlag replicates argparse's case-insensitive "false" check: only
// an exact (case-insensitive) match of "false" is falsy, everything else
// (including typos) is treated as true.
func parseBoolFlag(name, s string) (bool, error) {
	if s == "" {
		return false, errors.Errorf(errors.KindValidation, "config: --%s requires a value", name)
	}
	return strings.ToLower(s) != "false", nil
}
