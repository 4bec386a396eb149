// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// loadConfig reads a YAML mapping from flag names to values and applies it to
// the flags of cmd that were not set on the command line.
//
//	method: qmr
//	tol: 1e-10
//	print-rates: true
func loadConfig(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	flags := cmd.Flags()
	for name, v := range values {
		f := flags.Lookup(name)
		if f == nil {
			return fmt.Errorf("config %s: unknown flag %q", path, name)
		}
		if name == "config" {
			return fmt.Errorf("config %s: nested config", path)
		}
		switch v.(type) {
		case map[string]any, []any:
			return fmt.Errorf("config %s: %s must be a scalar", path, name)
		}
		if f.Changed {
			continue
		}
		if err := flags.Set(name, fmt.Sprint(v)); err != nil {
			return fmt.Errorf("config %s: %s: %w", path, name, err)
		}
	}
	return nil
}
