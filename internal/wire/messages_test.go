// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package wire

import (
	"encoding/json"
	"testing"
)

func TestPairKeyIsOrderPreservingAndReversible(t *testing.T) {
	if got := PairKey("h_1", "h_2"); got != "h_1|h_2" {
		t.Errorf("PairKey(h_1, h_2) = %q, want %q", got, "h_1|h_2")
	}
	if PairKey("h_1", "h_2") == PairKey("h_2", "h_1") {
		t.Error("PairKey should not be symmetric: callers key ToLC.Paths by insertion order")
	}
}

func TestToLCRoundTripsThroughJSON(t *testing.T) {
	msg := ToLC{
		Msg: "compute_paths",
		Paths: map[string][]Instruction{
			PairKey("h_1", "h_2"): {
				{Action: "install", HasIn: true, InSw: 1, InPort: 2, HasOut: true, OutSw: 3, OutPort: 4, OutAddr: "10.0.0.2"},
			},
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var back ToLC
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Msg != msg.Msg {
		t.Errorf("Msg: got %q, want %q", back.Msg, msg.Msg)
	}
	instrs, ok := back.Paths[PairKey("h_1", "h_2")]
	if !ok || len(instrs) != 1 {
		t.Fatalf("expected one instruction under the pair key, got %+v", back.Paths)
	}
	if instrs[0].InSw != 1 || instrs[0].OutSw != 3 || instrs[0].OutAddr != "10.0.0.2" {
		t.Errorf("unexpected instruction after round-trip: %+v", instrs[0])
	}
}

func TestToLCOmitsUnsetOptionalFields(t *testing.T) {
	data, err := json.Marshal(ToLC{Msg: "ctrl_dead", DeadCID: "domain-2"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, field := range []string{"paths", "unknown_sw", "owner_cid"} {
		if _, present := raw[field]; present {
			t.Errorf("expected %q to be omitted when unset, got %s", field, data)
		}
	}
	if _, present := raw["dead_cid"]; !present {
		t.Error("expected dead_cid to be present")
	}
}
