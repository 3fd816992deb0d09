// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package ringsig

import (
	"crypto/rand"
	"fmt"
	"io"

	"filippo.io/edwards25519"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/outputs"
)

// DefaultExtraChunkSize is the largest extra chunk sent in one call.
const DefaultExtraChunkSize = 128

// Spend is an owned output to spend, hidden in Ring at RealIndex.
type Spend struct {
	Amount        uint64               `json:"amount"`
	OutputIndexes []uint64             `json:"output_indexes"`
	Ring          []cncrypto.PublicKey `json:"ring"`
	RealIndex     int                  `json:"real_index"`
	InvHash       cncrypto.SecretKey   `json:"inv_hash"`
	AddressIndex  uint64               `json:"address_index"`
}

// Payment is one requested output. Change pays the wallet's own
// subaddress ChangeIndex; otherwise Destination is paid.
type Payment struct {
	Change      bool                `json:"change"`
	Amount      uint64              `json:"amount"`
	ChangeIndex uint64              `json:"change_index"`
	Destination outputs.Destination `json:"destination"`
}

// Request describes a transaction to sign.
type Request struct {
	Version    uint64    `json:"version"`
	UnlockTime uint64    `json:"unlock_time"`
	Spends     []Spend   `json:"spends"`
	Payments   []Payment `json:"payments"`
	Extra      []byte    `json:"extra"`
}

// Transaction is a signed transaction.
type Transaction struct {
	TransactionPrefix
	Rings     [][]cncrypto.PublicKey `json:"rings"`
	Signature Amethyst               `json:"signature"`
}

// Arg returns the verification request for tx.
func (tx *Transaction) Arg() RingSignatureArgA {
	arg := RingSignatureArgA{
		TxPrefixHash: tx.Hash(),
		OutputKeys:   tx.Rings,
		Signature:    tx.Signature,
	}
	for _, in := range tx.Inputs {
		arg.KeyImages = append(arg.KeyImages, in.KeyImage)
	}
	return arg
}

// Signer drives a Wallet through the signing protocol. The device never
// sees the ring; the Signer closes the ring around each device response.
type Signer struct {
	wallet    hardware.Wallet
	rand      io.Reader
	chunkSize int
}

// SignerOption configures a Signer
type SignerOption func(*Signer)

// WithRand replaces crypto/rand for decoy responses
func WithRand(r io.Reader) SignerOption {
	return func(s *Signer) { s.rand = r }
}

// WithExtraChunkSize sets how many extra bytes go into one call
func WithExtraChunkSize(n int) SignerOption {
	return func(s *Signer) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// NewSigner creates a Signer for w.
func NewSigner(w hardware.Wallet, opts ...SignerOption) *Signer {
	s := &Signer{wallet: w, rand: rand.Reader, chunkSize: DefaultExtraChunkSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func checkSpend(i int, sp *Spend) error {
	if len(sp.Ring) == 0 || sp.RealIndex < 0 || sp.RealIndex >= len(sp.Ring) {
		return fmt.Errorf("%w: spend %d: real index %d in ring of %d", ErrMalformed, i, sp.RealIndex, len(sp.Ring))
	}
	return nil
}

// SignTransaction builds and signs the transaction described by req and
// verifies the result before returning it.
func (s *Signer) SignTransaction(req Request) (*Transaction, error) {
	tx := &Transaction{
		TransactionPrefix: TransactionPrefix{
			Version:    req.Version,
			UnlockTime: req.UnlockTime,
			Extra:      req.Extra,
		},
	}
	for i := range req.Spends {
		sp := &req.Spends[i]
		if err := checkSpend(i, sp); err != nil {
			return nil, err
		}
		ki, err := s.wallet.GenerateKeyImage(sp.Ring[sp.RealIndex], sp.InvHash, sp.AddressIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to generate key image for spend %d: %w", i, err)
		}
		tx.Inputs = append(tx.Inputs, InputKey{Amount: sp.Amount, OutputIndexes: sp.OutputIndexes, KeyImage: ki})
		tx.Rings = append(tx.Rings, sp.Ring)
	}

	w := s.wallet
	if err := w.SignStart(req.Version, req.UnlockTime, uint64(len(req.Spends)), uint64(len(req.Payments)), uint64(len(req.Extra))); err != nil {
		return nil, fmt.Errorf("failed to start signing: %w", err)
	}
	for i, sp := range req.Spends {
		if err := w.SignAddInput(sp.Amount, sp.OutputIndexes, sp.InvHash, sp.AddressIndex); err != nil {
			return nil, fmt.Errorf("failed to add input %d: %w", i, err)
		}
	}
	for i, pay := range req.Payments {
		out, err := w.SignAddOutput(pay.Change, pay.Amount, pay.ChangeIndex, pay.Destination)
		if err != nil {
			return nil, fmt.Errorf("failed to add output %d: %w", i, err)
		}
		tx.Outputs = append(tx.Outputs, OutputKey{Amount: pay.Amount, Output: out})
	}
	if err := s.addExtra(req.Extra); err != nil {
		return nil, err
	}

	sig, err := s.sign(tx.Hash(), req.Spends, tx.Arg().KeyImages)
	if err != nil {
		return nil, err
	}
	tx.Signature = sig
	return tx, nil
}

func (s *Signer) addExtra(extra []byte) error {
	if len(extra) == 0 {
		if err := s.wallet.SignAddExtra(nil); err != nil {
			return fmt.Errorf("failed to add extra: %w", err)
		}
		return nil
	}
	for off := 0; off < len(extra); off += s.chunkSize {
		end := min(off+s.chunkSize, len(extra))
		if err := s.wallet.SignAddExtra(extra[off:end]); err != nil {
			return fmt.Errorf("failed to add extra at offset %d: %w", off, err)
		}
	}
	return nil
}

// SignProof signs data with a single owned output, proving control of it
// without creating a transaction.
func (s *Signer) SignProof(data []byte, sp Spend) (RingSignatureArgA, error) {
	if err := checkSpend(0, &sp); err != nil {
		return RingSignatureArgA{}, err
	}
	ki, err := s.wallet.GenerateKeyImage(sp.Ring[sp.RealIndex], sp.InvHash, sp.AddressIndex)
	if err != nil {
		return RingSignatureArgA{}, fmt.Errorf("failed to generate key image: %w", err)
	}
	if err := s.wallet.ProofStart(data); err != nil {
		return RingSignatureArgA{}, fmt.Errorf("failed to start proof: %w", err)
	}
	arg := RingSignatureArgA{
		TxPrefixHash: ProofPrefixHash(data),
		KeyImages:    []cncrypto.KeyImage{ki},
		OutputKeys:   [][]cncrypto.PublicKey{sp.Ring},
	}
	arg.Signature, err = s.sign(arg.TxPrefixHash, []Spend{sp}, arg.KeyImages)
	if err != nil {
		return RingSignatureArgA{}, err
	}
	return arg, nil
}

// sign runs both rounds. The first round closes each ring from the real
// member to the end, the second from the start back to the real member.
func (s *Signer) sign(prefixHash cncrypto.Hash, spends []Spend, keyImages []cncrypto.KeyImage) (Amethyst, error) {
	w := s.wallet
	ins := make([]*input, len(spends))
	ras := make([][]*edwards25519.Scalar, len(spends))
	sig := Amethyst{
		P:  make([]cncrypto.PublicKey, len(spends)),
		RA: make([][]cncrypto.Scalar, len(spends)),
		RB: make([]cncrypto.Scalar, len(spends)),
		RC: make([]cncrypto.Scalar, len(spends)),
	}

	for i, sp := range spends {
		a, err := w.SignStepA(sp.InvHash, sp.AddressIndex)
		if err != nil {
			return Amethyst{}, fmt.Errorf("failed step A of input %d: %w", i, err)
		}
		in, err := newInput(keyImages[i], sp.Ring, a.SigP)
		if err != nil {
			return Amethyst{}, fmt.Errorf("input %d: %w", i, err)
		}
		x, err := cncrypto.ParsePoint(a.X)
		if err != nil {
			return Amethyst{}, fmt.Errorf("%w: x of input %d", ErrMalformed, i)
		}
		y, err := cncrypto.ParsePoint(a.Y)
		if err != nil {
			return Amethyst{}, fmt.Errorf("%w: y of input %d", ErrMalformed, i)
		}

		ras[i] = make([]*edwards25519.Scalar, len(sp.Ring))
		c := challenge(x, y)
		for k := sp.RealIndex + 1; k < len(sp.Ring); k++ {
			if ras[i][k], err = cncrypto.RandomScalar(s.rand); err != nil {
				return Amethyst{}, err
			}
			c = in.step(k, ras[i][k], c)
		}
		if err := w.SignStepAMoreData(c.Bytes()); err != nil {
			return Amethyst{}, fmt.Errorf("failed to send ring data of input %d: %w", i, err)
		}
		ins[i] = in
		sig.P[i] = a.SigP
	}

	c0s, err := w.SignGetC0()
	if err != nil {
		return Amethyst{}, fmt.Errorf("failed to get c0: %w", err)
	}
	c0, err := c0s.Decode()
	if err != nil {
		return Amethyst{}, fmt.Errorf("%w: c0", ErrMalformed)
	}
	sig.C0 = c0s

	for i, sp := range spends {
		c := c0
		for k := 0; k < sp.RealIndex; k++ {
			if ras[i][k], err = cncrypto.RandomScalar(s.rand); err != nil {
				return Amethyst{}, err
			}
			c = ins[i].step(k, ras[i][k], c)
		}
		b, err := w.SignStepB(sp.InvHash, sp.AddressIndex, cncrypto.PublicScalar(c))
		if err != nil {
			return Amethyst{}, fmt.Errorf("failed step B of input %d: %w", i, err)
		}
		sig.RA[i] = make([]cncrypto.Scalar, len(sp.Ring))
		for k, ra := range ras[i] {
			if k != sp.RealIndex {
				sig.RA[i][k] = cncrypto.PublicScalar(ra)
			}
		}
		sig.RA[i][sp.RealIndex] = b.RA
		sig.RB[i] = b.RB
		sig.RC[i] = b.RC
	}

	rings := make([][]cncrypto.PublicKey, len(spends))
	for i := range spends {
		rings[i] = spends[i].Ring
	}
	if err := CheckAmethyst(prefixHash, keyImages, rings, sig); err != nil {
		return Amethyst{}, fmt.Errorf("device returned an invalid signature: %w", err)
	}
	return sig, nil
}
