// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package remote

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/jsonrpc"
	"github.com/Armor-Network/armor/internal/outputs"
)

// DefaultTimeout bounds one call when no timeout is configured
const DefaultTimeout = 30 * time.Second

// Device is a hardware.Wallet served by another process
type Device struct {
	conn    io.Closer
	client  *jsonrpc.Client
	timeout time.Duration
	info    Info
}

var _ hardware.Wallet = (*Device)(nil)

// NewDevice speaks to a device over conn and fetches its construction
// values. A zero timeout means DefaultTimeout.
func NewDevice(conn io.ReadWriteCloser, timeout time.Duration) (*Device, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := &Device{
		conn:    conn,
		client:  jsonrpc.NewClient(conn, conn),
		timeout: timeout,
	}
	d.client.Start()
	if err := d.call(MethodGetInfo, nil, &d.info); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("failed to read device info: %w", err)
	}
	return d, nil
}

// DialUnix connects to a device daemon listening on a Unix socket
func DialUnix(ctx context.Context, path string, timeout time.Duration) (*Device, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to device at %s: %w", path, err)
	}
	return NewDevice(conn, timeout)
}

// Close ends the connection
func (d *Device) Close() error {
	d.client.Close()
	return d.conn.Close()
}

func (d *Device) call(method string, params, result interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.client.Call(ctx, method, params, result); err != nil {
		return fromRPCError(method, err)
	}
	return nil
}

func (d *Device) HardwareType() string              { return d.info.HardwareType }
func (d *Device) APlusSH() cncrypto.PublicKey       { return d.info.APlusSH }
func (d *Device) VMulAPlusSH() cncrypto.PublicKey   { return d.info.VMulAPlusSH }
func (d *Device) ViewPublicKey() cncrypto.PublicKey { return d.info.ViewPublicKey }
func (d *Device) WalletKey() cncrypto.Hash          { return d.info.WalletKey }

func (d *Device) PrepareAddress(index uint64) (outputs.Destination, error) {
	var dst outputs.Destination
	err := d.call(MethodPrepareAddress, indexParams{Index: index}, &dst)
	return dst, err
}

func (d *Device) MulByViewSecretKey(keys []cncrypto.PublicKey) ([]cncrypto.PublicKey, error) {
	var result []cncrypto.PublicKey
	if err := d.call(MethodMulByViewSecretKey, keysParams{Keys: keys}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (d *Device) GenerateKeyImage(outputKey cncrypto.PublicKey, invHash cncrypto.SecretKey, addressIndex uint64) (cncrypto.KeyImage, error) {
	var ki cncrypto.KeyImage
	err := d.call(MethodGenerateKeyImage, keyImageParams{OutputKey: outputKey, InvHash: invHash, AddressIndex: addressIndex}, &ki)
	return ki, err
}

func (d *Device) GenerateOutputSeed(txInputsHash cncrypto.Hash, index uint64) (cncrypto.PublicKey, error) {
	var seed cncrypto.PublicKey
	err := d.call(MethodGenerateOutputSeed, outputSeedParams{TxInputsHash: txInputsHash, Index: index}, &seed)
	return seed, err
}

func (d *Device) ExportViewOnly(viewOutgoing bool) (hardware.ViewOnlyExport, error) {
	var export hardware.ViewOnlyExport
	err := d.call(MethodExportViewOnly, exportParams{ViewOutgoing: viewOutgoing}, &export)
	return export, err
}

func (d *Device) SignStart(version, unlockTime, inputs, outputsSize, extra uint64) error {
	return d.call(MethodSignStart, signStartParams{
		Version:    version,
		UnlockTime: unlockTime,
		Inputs:     inputs,
		Outputs:    outputsSize,
		Extra:      extra,
	}, nil)
}

func (d *Device) SignAddInput(amount uint64, outputIndexes []uint64, invHash cncrypto.SecretKey, addressIndex uint64) error {
	return d.call(MethodSignAddInput, addInputParams{
		Amount:        amount,
		OutputIndexes: outputIndexes,
		InvHash:       invHash,
		AddressIndex:  addressIndex,
	}, nil)
}

func (d *Device) SignAddOutput(change bool, amount uint64, changeIndex uint64, dst outputs.Destination) (outputs.Output, error) {
	var out outputs.Output
	err := d.call(MethodSignAddOutput, addOutputParams{
		Change:      change,
		Amount:      amount,
		ChangeIndex: changeIndex,
		Destination: dst,
	}, &out)
	return out, err
}

func (d *Device) SignAddExtra(chunk []byte) error {
	return d.call(MethodSignAddExtra, dataParams{Data: chunk}, nil)
}

func (d *Device) SignStepA(invHash cncrypto.SecretKey, addressIndex uint64) (hardware.StepA, error) {
	var res hardware.StepA
	err := d.call(MethodSignStepA, stepParams{InvHash: invHash, AddressIndex: addressIndex}, &res)
	return res, err
}

func (d *Device) SignStepAMoreData(data []byte) error {
	return d.call(MethodSignStepAMoreData, dataParams{Data: data}, nil)
}

func (d *Device) SignGetC0() (cncrypto.Scalar, error) {
	var c0 cncrypto.Scalar
	err := d.call(MethodSignGetC0, nil, &c0)
	return c0, err
}

func (d *Device) SignStepB(invHash cncrypto.SecretKey, addressIndex uint64, myC cncrypto.Scalar) (hardware.StepB, error) {
	var res hardware.StepB
	err := d.call(MethodSignStepB, stepBParams{InvHash: invHash, AddressIndex: addressIndex, MyC: myC}, &res)
	return res, err
}

func (d *Device) ProofStart(data []byte) error {
	return d.call(MethodProofStart, dataParams{Data: data}, nil)
}
