// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package ringsig

import (
	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/outputs"
	"github.com/Armor-Network/armor/internal/transcript"
)

// InputKey spends one output of a ring. OutputIndexes are the ring
// members' global output indexes, encoded as the chain stores them.
type InputKey struct {
	Amount        uint64            `json:"amount"`
	OutputIndexes []uint64          `json:"output_indexes"`
	KeyImage      cncrypto.KeyImage `json:"key_image"`
}

// OutputKey is an output together with its amount.
type OutputKey struct {
	Amount uint64 `json:"amount"`
	outputs.Output
}

// TransactionPrefix is the signed part of a transaction.
type TransactionPrefix struct {
	Version    uint64      `json:"version"`
	UnlockTime uint64      `json:"unlock_time"`
	Inputs     []InputKey  `json:"inputs"`
	Outputs    []OutputKey `json:"outputs"`
	Extra      []byte      `json:"extra"`
}

func (in *InputKey) appendTo(st *transcript.Stream) {
	st.AppendByte(outputs.InputKeyTag)
	st.AppendUint(in.Amount)
	st.AppendUint(uint64(len(in.OutputIndexes)))
	for _, idx := range in.OutputIndexes {
		st.AppendUint(idx)
	}
	st.Append(in.KeyImage[:])
}

// Hash returns the transaction prefix hash, the message every input signs.
func (tx *TransactionPrefix) Hash() cncrypto.Hash {
	st := transcript.New()
	st.AppendUint(tx.Version)
	st.AppendUint(tx.UnlockTime)
	st.AppendUint(uint64(len(tx.Inputs)))
	for i := range tx.Inputs {
		tx.Inputs[i].appendTo(st)
	}
	st.AppendUint(uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		st.AppendByte(outputs.OutputKeyTag)
		st.AppendUint(out.Amount)
		st.Append(out.PublicKey[:])
		st.Append(out.EncryptedSecret[:])
		st.AppendByte(out.EncryptedAddressType)
	}
	st.AppendUint(uint64(len(tx.Extra)))
	st.Append(tx.Extra)
	return st.Digest()
}

// InputsHash returns the hash over the inputs only. Output keys are
// derived from it, so they are fixed before the outputs are chosen.
func (tx *TransactionPrefix) InputsHash() cncrypto.Hash {
	st := transcript.New()
	st.AppendUint(uint64(len(tx.Inputs)))
	for i := range tx.Inputs {
		tx.Inputs[i].appendTo(st)
	}
	return st.Digest()
}

// ProofPrefixHash is the message signed by a proof session over data.
func ProofPrefixHash(data []byte) cncrypto.Hash {
	st := transcript.New([]byte{0})
	st.Append(data)
	return st.Digest()
}
