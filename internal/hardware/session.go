// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package hardware

import (
	"fmt"
	"math/bits"

	"filippo.io/edwards25519"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/outputs"
	"github.com/Armor-Network/armor/internal/transcript"
)

// State is the position of the signing session in the call sequence.
type State int

const (
	StateIdle State = iota
	StateExpectAddInput
	StateExpectAddOutput
	StateExpectAddExtraChunk
	StateExpectStepA
	StateExpectStepAMoreData
	StateExpectStepB
	StateFinished
	StateAborted
)

var stateNames = map[State]string{
	StateIdle:                "idle",
	StateExpectAddInput:      "expect_add_input",
	StateExpectAddOutput:     "expect_add_output",
	StateExpectAddExtraChunk: "expect_add_extra_chunk",
	StateExpectStepA:         "expect_step_a",
	StateExpectStepAMoreData: "expect_step_a_more_data",
	StateExpectStepB:         "expect_step_b",
	StateFinished:            "finished",
	StateAborted:             "aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Session kinds reported to the Observer.
const (
	KindTransaction = "transaction"
	KindProof       = "proof"
)

// session is the single in-flight signing operation.
type session struct {
	kind  string
	state State

	inputsSize  uint64
	outputsSize uint64
	extraSize   uint64

	inputsCounter  uint64
	outputsCounter uint64
	extraCounter   uint64

	inputsAmount uint64
	dstAmount    uint64
	changeAmount uint64
	fee          uint64

	dstSet bool
	dst    outputs.Destination

	prefix transcript.Stream
	inputs transcript.Stream

	prefixHash cncrypto.Hash
	inputsHash cncrypto.Hash
	randomSeed cncrypto.Hash
	c0         *edwards25519.Scalar
}

// SessionInfo is a snapshot of the public session state.
type SessionInfo struct {
	Kind           string          `json:"kind,omitempty"`
	State          State           `json:"state"`
	InputsSize     uint64          `json:"inputs_size"`
	OutputsSize    uint64          `json:"outputs_size"`
	ExtraSize      uint64          `json:"extra_size"`
	InputsCounter  uint64          `json:"inputs_counter"`
	OutputsCounter uint64          `json:"outputs_counter"`
	ExtraCounter   uint64          `json:"extra_counter"`
	InputsAmount   uint64          `json:"inputs_amount"`
	DstAmount      uint64          `json:"dst_amount"`
	ChangeAmount   uint64          `json:"change_amount"`
	Fee            uint64          `json:"fee"`
	TxPrefixHash   cncrypto.Hash   `json:"tx_prefix_hash"`
	TxInputsHash   cncrypto.Hash   `json:"tx_inputs_hash"`
	C0             cncrypto.Scalar `json:"c0"`
}

func (s *session) info() SessionInfo {
	info := SessionInfo{
		Kind:           s.kind,
		State:          s.state,
		InputsSize:     s.inputsSize,
		OutputsSize:    s.outputsSize,
		ExtraSize:      s.extraSize,
		InputsCounter:  s.inputsCounter,
		OutputsCounter: s.outputsCounter,
		ExtraCounter:   s.extraCounter,
		InputsAmount:   s.inputsAmount,
		DstAmount:      s.dstAmount,
		ChangeAmount:   s.changeAmount,
		Fee:            s.fee,
		TxPrefixHash:   s.prefixHash,
		TxInputsHash:   s.inputsHash,
	}
	if s.c0 != nil {
		info.C0 = cncrypto.PublicScalar(s.c0)
	}
	return info
}

// expect fails unless the session is in want and cond holds.
func (s *session) expect(want State, cond bool, op string) error {
	if s.state != want || !cond {
		return fmt.Errorf("%w: %s in state %s", ErrProtocolOrder, op, s.state)
	}
	return nil
}

// addAmount adds amount to *sum unless that overflows.
func addAmount(sum *uint64, amount uint64) error {
	total, carry := bits.Add64(*sum, amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: %d + %d", ErrAmountOverflow, *sum, amount)
	}
	*sum = total
	return nil
}
