// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package ringsig

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Failure reports one argument that did not verify. Amethyst is set when
// Index refers to the RingSignatureArgA slice.
type Failure struct {
	Index                  int
	Amethyst               bool
	NewestReferencedHeight uint64
	Err                    error
}

// Checker verifies batches of signatures on a bounded number of
// goroutines.
type Checker struct {
	workers int
}

// NewChecker creates a Checker running at most workers verifications at
// once; zero or less means GOMAXPROCS.
func NewChecker(workers int) *Checker {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Checker{workers: workers}
}

// Check verifies every argument and returns the failures ordered by kind
// then index. It returns early with ctx.Err() if ctx is cancelled.
func (c *Checker) Check(ctx context.Context, args []RingSignatureArg, argsA []RingSignatureArgA) ([]Failure, error) {
	errs := make([]error, len(args))
	errsA := make([]error, len(argsA))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i := range args {
		idx := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a := &args[idx]
			errs[idx] = CheckRingSignature(a.TxPrefixHash, a.KeyImage, a.OutputKeys, a.Signature)
			return nil
		})
	}
	for i := range argsA {
		idx := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a := &argsA[idx]
			errsA[idx] = CheckAmethyst(a.TxPrefixHash, a.KeyImages, a.OutputKeys, a.Signature)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var failures []Failure
	for i, err := range errs {
		if err != nil {
			failures = append(failures, Failure{Index: i, NewestReferencedHeight: args[i].NewestReferencedHeight, Err: err})
		}
	}
	for i, err := range errsA {
		if err != nil {
			failures = append(failures, Failure{Index: i, Amethyst: true, NewestReferencedHeight: argsA[i].NewestReferencedHeight, Err: err})
		}
	}
	return failures, nil
}
