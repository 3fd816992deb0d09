// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// insecurerand fails when a package that handles key material imports
// math/rand. Every nonce and seed must come from crypto/rand or the
// device's RandomSource.
//
// Usage: go run ./analysis/insecurerand <repo-root>
package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// criticalDirs never import math/rand outside tests
var criticalDirs = []string{
	"internal/cncrypto",
	"internal/crypto",
	"internal/hardware",
	"internal/mnemonic",
	"internal/outputs",
	"internal/ringsig",
	"internal/transcript",
}

var forbiddenImports = map[string]bool{
	"math/rand":    true,
	"math/rand/v2": true,
}

type finding struct {
	pos  token.Position
	path string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: insecurerand <repo-root>")
		os.Exit(1)
	}

	findings, checked, err := scan(os.Args[1], criticalDirs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Insecure Random Analysis\n")
	fmt.Printf("========================\n")
	fmt.Printf("Files checked: %d\n\n", checked)
	if len(findings) == 0 {
		fmt.Println("No issues found.")
		return
	}
	for _, f := range findings {
		fmt.Printf("%s: imports %s\n", f.pos, f.path)
	}
	os.Exit(1)
}

// scan parses the imports of every non-test Go file under dirs
func scan(root string, dirs []string) ([]finding, int, error) {
	fset := token.NewFileSet()
	var findings []finding
	checked := 0

	for _, dir := range dirs {
		base := filepath.Join(root, dir)
		if _, err := os.Stat(base); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
			if err != nil {
				return err
			}
			checked++
			for _, imp := range file.Imports {
				p, err := strconv.Unquote(imp.Path.Value)
				if err != nil {
					return err
				}
				if forbiddenImports[p] {
					findings = append(findings, finding{pos: fset.Position(imp.Pos()), path: p})
				}
			}
			return nil
		})
		if err != nil {
			return nil, checked, fmt.Errorf("walking %s: %w", dir, err)
		}
	}
	return findings, checked, nil
}
