// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package hardware

import (
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/crypto"
	"github.com/Armor-Network/armor/internal/mnemonic"
	"github.com/Armor-Network/armor/internal/outputs"
)

// BIP44 path constants. The account is the address type so that linkable
// and unlinkable wallets from one mnemonic never share keys.
const (
	bip44Purpose  = 44
	bip44CoinType = 204
	addressType   = uint32(outputs.AddressUnlinkable)
)

// keyHierarchy holds every secret of the device. Only the one-slot
// subaddress cache changes after construction.
type keyHierarchy struct {
	view      *edwards25519.Scalar
	auditBase *edwards25519.Scalar
	spend     *edwards25519.Scalar

	txDerivationSeed cncrypto.Hash
	walletKey        cncrypto.Hash

	sH          *edwards25519.Point
	aPlusSH     cncrypto.PublicKey
	viewPublic  cncrypto.PublicKey
	vMulAPlusSH cncrypto.PublicKey

	lastValid bool
	lastIndex uint64
	lastAudit *edwards25519.Scalar
}

// childPrivateKey runs the BIP39 seed through BIP32 down the fixed path
// m/44'/204'/1'/0/0.
func childPrivateKey(phrase string) ([]byte, error) {
	handler := &mnemonic.BIP39Handler{}
	seed, err := handler.SeedFromMnemonic(strings.Fields(phrase), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	defer crypto.ZeroBytes(seed)

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	path := []uint32{
		hdkeychain.HardenedKeyStart + bip44Purpose,
		hdkeychain.HardenedKeyStart + bip44CoinType,
		hdkeychain.HardenedKeyStart + addressType,
		0,
		0,
	}
	for _, index := range path {
		if key, err = key.Derive(index); err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", index, err)
		}
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to read child private key: %w", err)
	}
	return priv.Serialize(), nil
}

func deriveKeys(phrase string) (*keyHierarchy, error) {
	child, err := childPrivateKey(phrase)
	if err != nil {
		return nil, err
	}
	seed := cncrypto.FastHash(child)
	crypto.ZeroBytes(child)
	defer crypto.ZeroBytes(seed[:])

	k := &keyHierarchy{
		txDerivationSeed: cncrypto.FastHash(seed[:], []byte("tx_derivation")),
		view:             cncrypto.HashToScalar(seed[:], []byte("view_key")),
		auditBase:        cncrypto.HashToScalar(seed[:], []byte("audit_key_base")),
		spend:            cncrypto.HashToScalar(seed[:], []byte("spend_key")),
		walletKey:        cncrypto.FastHash(seed[:], []byte("wallet_key")),
	}
	for _, s := range []*edwards25519.Scalar{k.view, k.auditBase, k.spend} {
		if cncrypto.IsZeroScalar(s) {
			return nil, fmt.Errorf("%w: zero secret derived", ErrInvariant)
		}
	}

	k.sH = new(edwards25519.Point).ScalarMult(k.spend, cncrypto.BasepointH())
	A := cncrypto.SecretKeyToPublicKey(k.auditBase)
	aPlusSH := new(edwards25519.Point).Add(A, k.sH)
	k.aPlusSH = cncrypto.PointKey(aPlusSH)
	k.viewPublic = cncrypto.PointKey(cncrypto.SecretKeyToPublicKey(k.view))
	k.vMulAPlusSH = cncrypto.PointKey(new(edwards25519.Point).ScalarMult(k.view, aPlusSH))
	return k, nil
}

// prepareAddress returns the audit secret of subaddress index, reusing the
// cached value when the index repeats.
func (k *keyHierarchy) prepareAddress(index uint64) *edwards25519.Scalar {
	if !k.lastValid || k.lastIndex != index {
		k.lastAudit = cncrypto.GenerateHDSecretKey(k.auditBase, k.aPlusSH, index)
		k.lastIndex = index
		k.lastValid = true
	}
	return k.lastAudit
}

// address returns S = a_i·G + sH and Sv = view·S.
func (k *keyHierarchy) address(index uint64) outputs.Destination {
	S := cncrypto.SecretKeyToPublicKey(k.prepareAddress(index))
	S.Add(S, k.sH)
	Sv := new(edwards25519.Point).ScalarMult(k.view, S)
	return outputs.Destination{
		Tag: outputs.AddressUnlinkable,
		S:   cncrypto.PointKey(S),
		Sv:  cncrypto.PointKey(Sv),
	}
}

// outputSecrets are the one-time secrets of an owned output.
type outputSecrets struct {
	a, s     *edwards25519.Scalar
	pub      cncrypto.PublicKey
	keyImage cncrypto.KeyImage
}

// outputSecrets computes a' = a_i·inv, s' = spend·inv, P = a'G + s'H and
// the key image a'·Hp(P).
func (k *keyHierarchy) outputSecrets(invHash cncrypto.SecretKey, addressIndex uint64) (outputSecrets, error) {
	inv, err := cncrypto.ParseScalar(invHash)
	if err != nil {
		return outputSecrets{}, fmt.Errorf("%w: inverse output secret hash: %v", ErrInvalidArgument, err)
	}
	audit := k.prepareAddress(addressIndex)
	out := outputSecrets{
		a: edwards25519.NewScalar().Multiply(audit, inv),
		s: edwards25519.NewScalar().Multiply(k.spend, inv),
	}
	out.pub = cncrypto.PointKey(cncrypto.SecretKeysToPublicKey(out.a, out.s))
	out.keyImage = cncrypto.GenerateKeyImage(out.pub, out.a)
	return out, nil
}

func (k *keyHierarchy) wipe() {
	zero := edwards25519.NewScalar()
	for _, s := range []*edwards25519.Scalar{k.view, k.auditBase, k.spend, k.lastAudit} {
		if s != nil {
			s.Set(zero)
		}
	}
	crypto.ZeroBytes(k.txDerivationSeed[:])
	crypto.ZeroBytes(k.walletKey[:])
	k.lastValid = false
}
