// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package switchprog

import "github.com/wandsdn/helix/internal/topology"

const (
	ethTypeARP  uint16 = 0x0806
	ethTypeLLDP uint16 = 0x88cc
	arpOpReply  uint16 = 2

	// shortcutSentinelMAC marks an ARP reply the switch itself answered,
	// without involving the controller or the destination host.
	shortcutSentinelMAC = "02:00:00:00:00:01"
)

// ARPShortcut builds the ingress-switch rule that answers an ARP request
// locally: swap source/target hardware and protocol addresses, rewrite
// the opcode to reply, stamp a sentinel source MAC, and bounce the frame
// back out the port it arrived on.
func ARPShortcut(sw topology.NodeID, priority uint16) *FlowMod {
	op := ethTypeARP
	return &FlowMod{
		Switch:   sw,
		Table:    0,
		Priority: priority,
		Match:    Match{EthType: &op},
		Instructions: []Instruction{ApplyActions{Actions: []Action{
			RegMove{Src: "arp_sha", Dst: "arp_tha"},
			RegMove{Src: "arp_spa", Dst: "arp_tpa"},
			SetField{Field: "arp_op", Value: "2"},
			SetField{Field: "eth_src", Value: shortcutSentinelMAC},
			SetField{Field: "arp_sha", Value: shortcutSentinelMAC},
			OutputInPort{},
		}}},
	}
}

// LLDPDiscoveryMatch is the always-installed, maximum-priority rule every
// switch carries so the topology discovery collaborator sees every LLDP
// frame: match LLDP ether-type and the LLDP multicast destination, send
// to the controller unbuffered.
func LLDPDiscoveryMatch(sw topology.NodeID) *FlowMod {
	et := ethTypeLLDP
	return &FlowMod{
		Switch:   sw,
		Table:    0,
		Priority: 0xFFFF,
		Match:    Match{EthType: &et, EthDst: "01:80:c2:00:00:0e"},
		Instructions: []Instruction{ApplyActions{Actions: []Action{
			OutputController{MaxLen: 0}, // NO_BUFFER
		}}},
	}
}
