// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package outputs derives transaction output keys for a destination address
// and recovers the destination on the recipient side.
//
// Two derivations exist. Simple (linkable) addresses get E = r·G and
// P = S + Hs(r·Sv ‖ inputs_hash ‖ i)·G. Unlinkable addresses get
// P = h⁻¹·S and E = Q + h⁻¹·Sv with h = Hs(Q ‖ inputs_hash ‖ i), where r and
// Q are expanded from the deterministic per-output seed.
package outputs

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/transcript"
)

// Type tags serialized into the transaction prefix and addresses.
const (
	InputKeyTag  byte = 2
	OutputKeyTag byte = 2

	AddressSimple              byte = 0
	AddressUnlinkable          byte = 1
	AddressUnlinkableAuditable byte = 2
)

// ErrNotOurs is returned by the recipient-side derivations when the output
// does not decode to a usable spend key.
var ErrNotOurs = errors.New("output does not belong to the address")

// Destination is the public identity of an address.
type Destination struct {
	Tag byte               `json:"tag"`
	S   cncrypto.PublicKey `json:"s"`
	Sv  cncrypto.PublicKey `json:"sv"`
}

// Linkable reports whether outputs to d use the linkable derivation.
func (d Destination) Linkable() bool { return d.Tag == AddressSimple }

// Output is the serialized form of a transaction output key.
type Output struct {
	PublicKey            cncrypto.PublicKey `json:"public_key"`
	EncryptedSecret      cncrypto.PublicKey `json:"encrypted_secret"`
	EncryptedAddressType byte               `json:"encrypted_address_type"`
}

// Secrets is the one-way expansion of an output seed public key.
type Secrets struct {
	Scalar      *edwards25519.Scalar
	Point       *edwards25519.Point
	AddressType cncrypto.Hash
}

// SeedKeys returns the deterministic key pair of output index:
// secret = Hs(inputs_hash ‖ tx_derivation_seed ‖ varint(index)).
func SeedKeys(txDerivationSeed, txInputsHash cncrypto.Hash, index uint64) (*edwards25519.Scalar, cncrypto.PublicKey) {
	sec := cncrypto.HashToScalar(txInputsHash[:], txDerivationSeed[:], transcript.Varint(index))
	return sec, cncrypto.PointKey(cncrypto.SecretKeyToPublicKey(sec))
}

// ExpandSeed derives the per-output secret scalar, point and address type
// mask from the seed public key.
func ExpandSeed(seedPub cncrypto.PublicKey) Secrets {
	return Secrets{
		Scalar:      cncrypto.HashToScalar(seedPub[:], []byte("output_secret_scalar")),
		Point:       cncrypto.HashToPoint(seedPub[:], []byte("output_secret_point")),
		AddressType: cncrypto.FastHash(seedPub[:], []byte("output_secret_address_type")),
	}
}

// Compute derives output index of a transaction paying dst.
func Compute(txDerivationSeed, txInputsHash cncrypto.Hash, index uint64, dst Destination) (Output, error) {
	_, seedPub := SeedKeys(txDerivationSeed, txInputsHash, index)
	sec := ExpandSeed(seedPub)

	out := Output{EncryptedAddressType: dst.Tag ^ sec.AddressType[0]}
	var err error
	if dst.Linkable() {
		out.PublicKey, out.EncryptedSecret, err = LinkableDerive(sec.Scalar, txInputsHash, index, dst.S, dst.Sv)
	} else {
		out.PublicKey, out.EncryptedSecret, err = UnlinkableDerive(sec.Point, txInputsHash, index, dst.S, dst.Sv)
	}
	if err != nil {
		return Output{}, err
	}
	return out, nil
}

// LinkableDerive returns (P, E) for a simple address.
func LinkableDerive(r *edwards25519.Scalar, txInputsHash cncrypto.Hash, index uint64, S, Sv cncrypto.PublicKey) (cncrypto.PublicKey, cncrypto.PublicKey, error) {
	sPoint, err := cncrypto.ParsePoint(S)
	if err != nil {
		return cncrypto.PublicKey{}, cncrypto.PublicKey{}, fmt.Errorf("destination S: %w", err)
	}
	svPoint, err := cncrypto.ParsePoint(Sv)
	if err != nil {
		return cncrypto.PublicKey{}, cncrypto.PublicKey{}, fmt.Errorf("destination Sv: %w", err)
	}

	E := cncrypto.SecretKeyToPublicKey(r)
	derivation := new(edwards25519.Point).ScalarMult(r, svPoint)
	h := linkableHash(derivation, txInputsHash, index)
	P := new(edwards25519.Point).Add(sPoint, cncrypto.SecretKeyToPublicKey(h))
	return cncrypto.PointKey(P), cncrypto.PointKey(E), nil
}

// UnlinkableDerive returns (P, E) for an unlinkable address.
func UnlinkableDerive(Q *edwards25519.Point, txInputsHash cncrypto.Hash, index uint64, S, Sv cncrypto.PublicKey) (cncrypto.PublicKey, cncrypto.PublicKey, error) {
	sPoint, err := cncrypto.ParsePoint(S)
	if err != nil {
		return cncrypto.PublicKey{}, cncrypto.PublicKey{}, fmt.Errorf("destination S: %w", err)
	}
	svPoint, err := cncrypto.ParsePoint(Sv)
	if err != nil {
		return cncrypto.PublicKey{}, cncrypto.PublicKey{}, fmt.Errorf("destination Sv: %w", err)
	}

	h := unlinkableHash(Q, txInputsHash, index)
	inv := edwards25519.NewScalar().Invert(h)
	P := new(edwards25519.Point).ScalarMult(inv, sPoint)
	E := new(edwards25519.Point).ScalarMult(inv, svPoint)
	E.Add(E, Q)
	return cncrypto.PointKey(P), cncrypto.PointKey(E), nil
}

// LinkableUnderive recovers the destination spend key S of a simple-address
// output and the output secret hash h (P = S + h·G).
func LinkableUnderive(view *edwards25519.Scalar, txInputsHash cncrypto.Hash, index uint64, out Output) (cncrypto.PublicKey, *edwards25519.Scalar, error) {
	P, err := cncrypto.ParsePoint(out.PublicKey)
	if err != nil {
		return cncrypto.PublicKey{}, nil, err
	}
	E, err := cncrypto.ParsePoint(out.EncryptedSecret)
	if err != nil {
		return cncrypto.PublicKey{}, nil, err
	}
	derivation := new(edwards25519.Point).ScalarMult(view, E)
	h := linkableHash(derivation, txInputsHash, index)
	S := new(edwards25519.Point).Subtract(P, cncrypto.SecretKeyToPublicKey(h))
	return cncrypto.PointKey(S), h, nil
}

// UnlinkableUnderive recovers S and h from an unlinkable output given
// vP = v·P computed by whoever holds the view secret.
func UnlinkableUnderive(vP cncrypto.PublicKey, txInputsHash cncrypto.Hash, index uint64, out Output) (cncrypto.PublicKey, *edwards25519.Scalar, error) {
	P, err := cncrypto.ParsePoint(out.PublicKey)
	if err != nil {
		return cncrypto.PublicKey{}, nil, err
	}
	E, err := cncrypto.ParsePoint(out.EncryptedSecret)
	if err != nil {
		return cncrypto.PublicKey{}, nil, err
	}
	step1, err := cncrypto.ParsePoint(vP)
	if err != nil {
		return cncrypto.PublicKey{}, nil, err
	}
	Q := new(edwards25519.Point).Subtract(E, step1)
	h := unlinkableHash(Q, txInputsHash, index)
	if cncrypto.IsZeroScalar(h) {
		return cncrypto.PublicKey{}, nil, ErrNotOurs
	}
	S := new(edwards25519.Point).ScalarMult(h, P)
	return cncrypto.PointKey(S), h, nil
}

// DecryptAddressType unmasks the destination tag of output index.
func DecryptAddressType(txDerivationSeed, txInputsHash cncrypto.Hash, index uint64, encrypted byte) byte {
	_, seedPub := SeedKeys(txDerivationSeed, txInputsHash, index)
	return encrypted ^ ExpandSeed(seedPub).AddressType[0]
}

func linkableHash(derivation *edwards25519.Point, txInputsHash cncrypto.Hash, index uint64) *edwards25519.Scalar {
	return cncrypto.HashToScalar(derivation.Bytes(), txInputsHash[:], transcript.Varint(index))
}

func unlinkableHash(Q *edwards25519.Point, txInputsHash cncrypto.Hash, index uint64) *edwards25519.Scalar {
	return cncrypto.HashToScalar(Q.Bytes(), txInputsHash[:], transcript.Varint(index))
}
