// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package hardware

import (
	"crypto/rand"
	"fmt"
	"log/slog"

	"filippo.io/edwards25519"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/outputs"
	"github.com/Armor-Network/armor/internal/transcript"
)

// Emulator is a software signing device. It is not safe for concurrent
// use; callers sharing one instance must serialize calls.
type Emulator struct {
	keys *keyHierarchy
	sign session

	proxy     Wallet
	random    RandomSource
	tracer    Tracer
	observer  Observer
	confirmer Confirmer
}

var _ Wallet = (*Emulator)(nil)

// NewEmulator derives the key hierarchy from phrase. With a proxy attached
// the proxy's construction-time values must match.
func NewEmulator(phrase string, opts ...Option) (*Emulator, error) {
	e := &Emulator{
		random:   SystemRandom{},
		tracer:   nopTracer{},
		observer: nopObserver{},
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	keys, err := deriveKeys(phrase)
	if err != nil {
		return nil, err
	}
	e.keys = keys

	if e.proxy != nil {
		switch {
		case e.proxy.APlusSH() != keys.aPlusSH:
			err = e.mismatch("construct", "A_plus_sH")
		case e.proxy.VMulAPlusSH() != keys.vMulAPlusSH:
			err = e.mismatch("construct", "v_mul_A_plus_sH")
		case e.proxy.ViewPublicKey() != keys.viewPublic:
			err = e.mismatch("construct", "view public key")
		case e.proxy.WalletKey() != keys.walletKey:
			err = e.mismatch("construct", "wallet key")
		}
		if err != nil {
			keys.wipe()
			return nil, err
		}
	}
	return e, nil
}

// HardwareType describes the device chain. It never includes the mnemonic.
func (e *Emulator) HardwareType() string {
	if e.proxy != nil {
		return "Emulator connected to " + e.proxy.HardwareType()
	}
	return "Emulator"
}

func (e *Emulator) APlusSH() cncrypto.PublicKey       { return e.keys.aPlusSH }
func (e *Emulator) VMulAPlusSH() cncrypto.PublicKey   { return e.keys.vMulAPlusSH }
func (e *Emulator) ViewPublicKey() cncrypto.PublicKey { return e.keys.viewPublic }
func (e *Emulator) WalletKey() cncrypto.Hash          { return e.keys.walletKey }

// Session returns a snapshot of the current signing session.
func (e *Emulator) Session() SessionInfo {
	return e.sign.info()
}

// Close wipes every secret. The emulator must not be used afterwards.
func (e *Emulator) Close() error {
	e.keys.wipe()
	e.sign.prefix.Wipe()
	e.sign.inputs.Wipe()
	e.sign = session{}
	return nil
}

// PrepareAddress returns the public identity of subaddress index.
func (e *Emulator) PrepareAddress(index uint64) (outputs.Destination, error) {
	dst := e.keys.address(index)
	err := e.mirror("prepare_address", func(w Wallet) error {
		got, err := w.PrepareAddress(index)
		if err == nil && got != dst {
			return errDiffers("address")
		}
		return err
	})
	if err != nil {
		return outputs.Destination{}, err
	}
	return dst, nil
}

// MulByViewSecretKey multiplies each point by the view secret.
func (e *Emulator) MulByViewSecretKey(keys []cncrypto.PublicKey) ([]cncrypto.PublicKey, error) {
	result := make([]cncrypto.PublicKey, len(keys))
	for i, k := range keys {
		p, err := cncrypto.ParsePoint(k)
		if err != nil {
			return nil, fmt.Errorf("%w: key %d: %v", ErrInvalidArgument, i, err)
		}
		result[i] = cncrypto.PointKey(new(edwards25519.Point).ScalarMult(e.keys.view, p))
	}
	err := e.mirror("mul_by_view_secret_key", func(w Wallet) error {
		got, err := w.MulByViewSecretKey(keys)
		if err != nil {
			return err
		}
		if len(got) != len(result) {
			return errDiffers("result length")
		}
		for i := range got {
			if got[i] != result[i] {
				return errDiffers(fmt.Sprintf("key %d", i))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateKeyImage returns the key image of an owned output after checking
// that outputKey is the key the device itself derives for it.
func (e *Emulator) GenerateKeyImage(outputKey cncrypto.PublicKey, invHash cncrypto.SecretKey, addressIndex uint64) (cncrypto.KeyImage, error) {
	out, err := e.keys.outputSecrets(invHash, addressIndex)
	if err != nil {
		return cncrypto.KeyImage{}, err
	}
	if out.pub != outputKey {
		return cncrypto.KeyImage{}, fmt.Errorf("%w: output key %s is not derived from address %d", ErrInvariant, outputKey, addressIndex)
	}
	err = e.mirror("generate_keyimage", func(w Wallet) error {
		got, err := w.GenerateKeyImage(outputKey, invHash, addressIndex)
		if err == nil && got != out.keyImage {
			return errDiffers("key image")
		}
		return err
	})
	if err != nil {
		return cncrypto.KeyImage{}, err
	}
	return out.keyImage, nil
}

// GenerateOutputSeed returns the public seed key of output index.
func (e *Emulator) GenerateOutputSeed(txInputsHash cncrypto.Hash, index uint64) (cncrypto.PublicKey, error) {
	_, pub := outputs.SeedKeys(e.keys.txDerivationSeed, txInputsHash, index)
	err := e.mirror("generate_output_seed", func(w Wallet) error {
		got, err := w.GenerateOutputSeed(txInputsHash, index)
		if err == nil && got != pub {
			return errDiffers("output seed")
		}
		return err
	})
	if err != nil {
		return cncrypto.PublicKey{}, err
	}
	return pub, nil
}

// ExportViewOnly exports the view secrets. The tx derivation seed is only
// included when viewOutgoing is set.
func (e *Emulator) ExportViewOnly(viewOutgoing bool) (ViewOnlyExport, error) {
	export := ViewOnlyExport{
		AuditKeyBaseSecret: cncrypto.ScalarKey(e.keys.auditBase),
		ViewSecret:         cncrypto.ScalarKey(e.keys.view),
	}
	if viewOutgoing {
		export.TxDerivationSeed = e.keys.txDerivationSeed
	}
	sig, err := cncrypto.GenerateSignatureH(export.ViewSecretsHash(), cncrypto.PointKey(e.keys.sH), e.keys.spend, rand.Reader)
	if err != nil {
		return ViewOnlyExport{}, err
	}
	export.ViewSecretsSignature = sig

	err = e.mirror("export_view_only", func(w Wallet) error {
		got, err := w.ExportViewOnly(viewOutgoing)
		if err != nil {
			return err
		}
		// the signature nonce is random on both sides
		if got.AuditKeyBaseSecret != export.AuditKeyBaseSecret || got.ViewSecret != export.ViewSecret ||
			got.TxDerivationSeed != export.TxDerivationSeed {
			return errDiffers("view secrets")
		}
		return nil
	})
	if err != nil {
		return ViewOnlyExport{}, err
	}
	return export, nil
}

// SignStart opens a transaction signing session, discarding any other.
func (e *Emulator) SignStart(version, unlockTime, inputs, outputsSize, extra uint64) error {
	const op = "sign_start"
	if inputs == 0 || outputsSize == 0 || version == 0 {
		return e.abort(fmt.Errorf("%w: %s: version=%d inputs=%d outputs=%d", ErrInvalidArgument, op, version, inputs, outputsSize))
	}
	e.replace(op)
	seed, err := e.random.Seed()
	if err != nil {
		return e.abort(err)
	}

	e.sign = session{
		kind:        KindTransaction,
		state:       StateExpectAddInput,
		inputsSize:  inputs,
		outputsSize: outputsSize,
		extraSize:   extra,
		randomSeed:  seed,
	}
	e.sign.prefix.AppendUint(version)
	e.sign.prefix.AppendUint(unlockTime)
	e.sign.prefix.AppendUint(inputs)
	e.sign.inputs.AppendUint(inputs)
	e.observer.SessionStarted(KindTransaction)
	e.tracer.Trace(op,
		slog.Uint64("version", version),
		slog.Uint64("unlock_time", unlockTime),
		slog.Uint64("inputs", inputs),
		slog.Uint64("outputs", outputsSize),
		slog.Uint64("extra", extra))

	return e.mirrorSession(op, func(w Wallet) error {
		return w.SignStart(version, unlockTime, inputs, outputsSize, extra)
	})
}

// SignAddInput adds the next input. The input order is the order of calls.
func (e *Emulator) SignAddInput(amount uint64, outputIndexes []uint64, invHash cncrypto.SecretKey, addressIndex uint64) error {
	const op = "sign_add_input"
	s := &e.sign
	if err := s.expect(StateExpectAddInput, s.inputsCounter < s.inputsSize, op); err != nil {
		return e.abort(err)
	}
	if err := addAmount(&s.inputsAmount, amount); err != nil {
		return e.abort(err)
	}
	out, err := e.keys.outputSecrets(invHash, addressIndex)
	if err != nil {
		return e.abort(err)
	}

	for _, st := range []*transcript.Stream{&s.prefix, &s.inputs} {
		st.AppendByte(outputs.InputKeyTag)
		st.AppendUint(amount)
		st.AppendUint(uint64(len(outputIndexes)))
		for _, idx := range outputIndexes {
			st.AppendUint(idx)
		}
		st.Append(out.keyImage[:])
	}
	e.tracer.Trace(op,
		slog.Uint64("index", s.inputsCounter),
		slog.Uint64("amount", amount),
		slog.String("key_image", out.keyImage.String()))

	err = e.mirrorSession(op, func(w Wallet) error {
		return w.SignAddInput(amount, outputIndexes, invHash, addressIndex)
	})
	if err != nil {
		return err
	}

	if s.inputsCounter++; s.inputsCounter < s.inputsSize {
		return nil
	}
	s.state = StateExpectAddOutput
	s.inputsHash = s.inputs.Digest()
	s.prefix.AppendUint(s.outputsSize)
	e.tracer.Trace("tx_inputs_hash", slog.String("hash", s.inputsHash.String()))
	return nil
}

// SignAddOutput adds the next output. Change goes to the device's own
// unlinkable subaddress changeIndex; all other outputs must pay dst, the
// same destination for the whole transaction.
func (e *Emulator) SignAddOutput(change bool, amount uint64, changeIndex uint64, dst outputs.Destination) (outputs.Output, error) {
	const op = "sign_add_output"
	s := &e.sign
	if err := s.expect(StateExpectAddOutput, s.outputsCounter < s.outputsSize, op); err != nil {
		return outputs.Output{}, e.abort(err)
	}

	var target outputs.Destination
	if change {
		if err := addAmount(&s.changeAmount, amount); err != nil {
			return outputs.Output{}, e.abort(err)
		}
		target = e.keys.address(changeIndex)
	} else {
		if !s.dstSet {
			s.dstSet = true
			s.dst = dst
		} else if s.dst != dst {
			return outputs.Output{}, e.abort(fmt.Errorf("%w: output %d pays %s, session pays %s",
				ErrInconsistentDestination, s.outputsCounter, dst, s.dst))
		}
		if err := addAmount(&s.dstAmount, amount); err != nil {
			return outputs.Output{}, e.abort(err)
		}
		target = s.dst
	}

	out, err := outputs.Compute(e.keys.txDerivationSeed, s.inputsHash, s.outputsCounter, target)
	if err != nil {
		return outputs.Output{}, e.abort(fmt.Errorf("%w: %v", ErrInvalidArgument, err))
	}
	s.prefix.AppendByte(outputs.OutputKeyTag)
	s.prefix.AppendUint(amount)
	s.prefix.Append(out.PublicKey[:])
	s.prefix.Append(out.EncryptedSecret[:])
	s.prefix.AppendByte(out.EncryptedAddressType)
	e.tracer.Trace(op,
		slog.Uint64("index", s.outputsCounter),
		slog.Bool("change", change),
		slog.Uint64("amount", amount),
		slog.String("public_key", out.PublicKey.String()))

	last := s.outputsCounter+1 == s.outputsSize
	if last {
		outputsAmount := s.dstAmount
		if err := addAmount(&outputsAmount, s.changeAmount); err != nil {
			return outputs.Output{}, e.abort(err)
		}
		if s.inputsAmount < outputsAmount {
			return outputs.Output{}, e.abort(fmt.Errorf("%w: inputs %d, outputs %d", ErrNegativeFee, s.inputsAmount, outputsAmount))
		}
		s.fee = s.inputsAmount - outputsAmount
	}

	err = e.mirrorSession(op, func(w Wallet) error {
		got, err := w.SignAddOutput(change, amount, changeIndex, dst)
		if err == nil && got != out {
			return errDiffers("output")
		}
		return err
	})
	if err != nil {
		return outputs.Output{}, err
	}

	s.outputsCounter++
	if !last {
		return out, nil
	}
	e.tracer.Trace("fee", slog.Uint64("fee", s.fee))
	if err := e.confirm(); err != nil {
		return outputs.Output{}, e.abort(err)
	}
	s.state = StateExpectAddExtraChunk
	s.prefix.AppendUint(s.extraSize)
	return out, nil
}

func (e *Emulator) confirm() error {
	if e.confirmer == nil {
		return nil
	}
	s := &e.sign
	ok, err := e.confirmer.Confirm(Confirmation{
		Destination:    s.dst,
		HasDestination: s.dstSet,
		Amount:         s.dstAmount,
		Change:         s.changeAmount,
		Fee:            s.fee,
	})
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return ErrUserRejected
	}
	return nil
}

// SignAddExtra appends the next chunk of the extra field. A zero-length
// chunk finalizes an empty extra.
func (e *Emulator) SignAddExtra(chunk []byte) error {
	const op = "sign_add_extra"
	s := &e.sign
	if err := s.expect(StateExpectAddExtraChunk, uint64(len(chunk)) <= s.extraSize-s.extraCounter, op); err != nil {
		return e.abort(err)
	}
	s.prefix.Append(chunk)

	err := e.mirrorSession(op, func(w Wallet) error {
		return w.SignAddExtra(chunk)
	})
	if err != nil {
		return err
	}

	if s.extraCounter += uint64(len(chunk)); s.extraCounter < s.extraSize {
		return nil
	}
	s.state = StateExpectStepA
	s.prefixHash = s.prefix.Digest()
	s.inputsCounter = 0
	s.inputs.Reset()
	s.inputs.Append(s.prefixHash[:])
	e.tracer.Trace("tx_prefix_hash", slog.String("hash", s.prefixHash.String()))
	return nil
}

// SignStepA returns the first-round commitments of the next input.
func (e *Emulator) SignStepA(invHash cncrypto.SecretKey, addressIndex uint64) (StepA, error) {
	const op = "sign_step_a"
	s := &e.sign
	if s.state == StateExpectStepAMoreData && s.inputsCounter+1 < s.inputsSize {
		s.inputsCounter++
		s.state = StateExpectStepA
	}
	if err := s.expect(StateExpectStepA, s.inputsCounter < s.inputsSize, op); err != nil {
		return StepA{}, e.abort(err)
	}
	out, err := e.keys.outputSecrets(invHash, addressIndex)
	if err != nil {
		return StepA{}, e.abort(err)
	}

	b := cncrypto.HashToPoint(out.keyImage[:])
	hashPub := cncrypto.HashToPoint(out.pub[:])
	H := cncrypto.BasepointH()

	// p = s'·H − a'·b
	p := new(edwards25519.Point).ScalarMult(out.s, H)
	p.Subtract(p, new(edwards25519.Point).ScalarMult(out.a, b))
	sigP := cncrypto.PointKey(p)
	s.inputs.Append(sigP[:])

	ka, kb, kc := e.nonces(s.inputsCounter)
	z := new(edwards25519.Point).ScalarMult(kb, H)
	z.Add(z, new(edwards25519.Point).ScalarMult(kc, b))
	s.inputs.Append(z.Bytes())

	gPlusB := new(edwards25519.Point).Add(edwards25519.NewGeneratorPoint(), b)
	res := StepA{
		SigP: sigP,
		X:    cncrypto.PointKey(new(edwards25519.Point).ScalarMult(ka, gPlusB)),
		Y:    cncrypto.PointKey(new(edwards25519.Point).ScalarMult(ka, hashPub)),
	}
	e.tracer.Trace(op,
		slog.Uint64("index", s.inputsCounter),
		slog.String("p", res.SigP.String()),
		slog.String("z", cncrypto.PointKey(z).String()),
		slog.String("x", res.X.String()),
		slog.String("y", res.Y.String()))

	err = e.mirrorSession(op, func(w Wallet) error {
		got, err := w.SignStepA(invHash, addressIndex)
		if err != nil {
			return err
		}
		if got.SigP != res.SigP {
			return errDiffers("p")
		}
		if e.random.Deterministic() && (got.X != res.X || got.Y != res.Y) {
			return errDiffers("x, y")
		}
		return nil
	})
	if err != nil {
		return StepA{}, err
	}
	s.state = StateExpectStepAMoreData
	return res, nil
}

// SignStepAMoreData appends co-signer data for the current input.
func (e *Emulator) SignStepAMoreData(data []byte) error {
	const op = "sign_step_a_more_data"
	s := &e.sign
	if err := s.expect(StateExpectStepAMoreData, true, op); err != nil {
		return e.abort(err)
	}
	s.inputs.Append(data)
	return e.mirrorSession(op, func(w Wallet) error {
		return w.SignStepAMoreData(data)
	})
}

// SignGetC0 closes the first round and returns the aggregated challenge.
func (e *Emulator) SignGetC0() (cncrypto.Scalar, error) {
	const op = "sign_get_c0"
	s := &e.sign
	if err := s.expect(StateExpectStepAMoreData, s.inputsCounter+1 == s.inputsSize, op); err != nil {
		return cncrypto.Scalar{}, e.abort(err)
	}
	s.c0 = s.inputs.Scalar()
	c0 := cncrypto.PublicScalar(s.c0)
	e.tracer.Trace(op, slog.String("c0", c0.String()))

	err := e.mirrorSession(op, func(w Wallet) error {
		got, err := w.SignGetC0()
		if err == nil && e.random.Deterministic() && got != c0 {
			return errDiffers("c0")
		}
		return err
	})
	if err != nil {
		return cncrypto.Scalar{}, err
	}
	s.state = StateExpectStepB
	s.inputsCounter = 0
	return c0, nil
}

// SignStepB returns the responses of the next input for challenge share myC.
func (e *Emulator) SignStepB(invHash cncrypto.SecretKey, addressIndex uint64, myC cncrypto.Scalar) (StepB, error) {
	const op = "sign_step_b"
	s := &e.sign
	if err := s.expect(StateExpectStepB, s.inputsCounter < s.inputsSize, op); err != nil {
		return StepB{}, e.abort(err)
	}
	c, err := myC.Decode()
	if err != nil {
		return StepB{}, e.abort(fmt.Errorf("%w: my_c: %v", ErrInvalidArgument, err))
	}
	out, err := e.keys.outputSecrets(invHash, addressIndex)
	if err != nil {
		return StepB{}, e.abort(err)
	}

	ka, kb, kc := e.nonces(s.inputsCounter)
	// rb = kb − c0·s', rc = kc + c0·a', ra = ka − my_c·a'
	rb := edwards25519.NewScalar().Multiply(s.c0, out.s)
	rb.Subtract(kb, rb)
	rc := edwards25519.NewScalar().MultiplyAdd(s.c0, out.a, kc)
	ra := edwards25519.NewScalar().Multiply(c, out.a)
	ra.Subtract(ka, ra)
	res := StepB{
		RA: cncrypto.PublicScalar(ra),
		RB: cncrypto.PublicScalar(rb),
		RC: cncrypto.PublicScalar(rc),
	}
	e.tracer.Trace(op,
		slog.Uint64("index", s.inputsCounter),
		slog.String("ra", res.RA.String()),
		slog.String("rb", res.RB.String()),
		slog.String("rc", res.RC.String()))

	err = e.mirrorSession(op, func(w Wallet) error {
		got, err := w.SignStepB(invHash, addressIndex, myC)
		if err == nil && e.random.Deterministic() && got != res {
			return errDiffers("ra, rb, rc")
		}
		return err
	})
	if err != nil {
		return StepB{}, err
	}

	if s.inputsCounter++; s.inputsCounter == s.inputsSize {
		s.state = StateFinished
		e.observer.SessionFinished(s.info())
	}
	return res, nil
}

// ProofStart opens a single-input session signing data instead of a
// transaction prefix.
func (e *Emulator) ProofStart(data []byte) error {
	const op = "proof_start"
	e.replace(op)
	seed, err := e.random.Seed()
	if err != nil {
		return e.abort(err)
	}
	e.sign = session{
		kind:       KindProof,
		state:      StateExpectStepA,
		inputsSize: 1,
		randomSeed: seed,
	}
	e.sign.prefix.AppendByte(0)
	e.sign.prefix.Append(data)
	e.sign.prefixHash = e.sign.prefix.Digest()
	e.sign.inputs.Append(e.sign.prefixHash[:])
	e.observer.SessionStarted(KindProof)
	e.tracer.Trace(op, slog.String("tx_prefix_hash", e.sign.prefixHash.String()))

	return e.mirrorSession(op, func(w Wallet) error {
		return w.ProofStart(data)
	})
}

// nonces derives ka, kb, kc for input i from the session seed and the
// spend secret.
func (e *Emulator) nonces(i uint64) (ka, kb, kc *edwards25519.Scalar) {
	return e.nonce(i, "ka"), e.nonce(i, "kb"), e.nonce(i, "kc")
}

func (e *Emulator) nonce(i uint64, tag string) *edwards25519.Scalar {
	st := transcript.New(e.sign.randomSeed[:], e.keys.spend.Bytes())
	st.AppendByte(tag[0])
	st.AppendByte(tag[1])
	st.AppendUint(i)
	k := st.Scalar()
	st.Wipe()
	return k
}

// replace aborts an unfinished session that op is about to discard.
func (e *Emulator) replace(op string) {
	_ = e.abort(fmt.Errorf("%w by %s", ErrSessionReplaced, op))
}

// abort moves the session to StateAborted and returns err.
func (e *Emulator) abort(err error) error {
	switch e.sign.state {
	case StateIdle, StateFinished, StateAborted:
	default:
		e.observer.SessionAborted(e.sign.kind, err)
	}
	e.sign.state = StateAborted
	return err
}
