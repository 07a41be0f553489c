/*
 * options.go, part of goJDFTx.
 *
 *
 * Copyright 2020 Raul Mera <rmera{at}usach(dot)cl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package jdftx

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/rmera/gojdftx/engine"
)

//Options configures one Calculator. Almost everything here is pass-through
//engine configuration that goJDFTx itself does not interpret.
type Options struct {
	Verbosity int  //0 is quiet, higher is chattier
	GPU       bool //use the GPU build of the engine; its absence is an error, not a fallback
	Cores     int  //worker-count hint for the engine; 0 lets it decide
	MPILaunch string
	KPoints   [3]int
	Cutoff    float64 //plane-wave cutoff, Hartree
	PseudoDir string
	PseudoSet string
	Pseudos   map[string]string //per-species pseudopotential file overrides
	Extra     []string          //verbatim engine input commands
	WorkDir   string
	Name      string //job name for the engine's input/output files
}

//DefaultOptions returns an Options set good for a quick gamma-point run.
func DefaultOptions() *Options {
	O := new(Options)
	O.Name = "jdft"
	O.Pseudos = map[string]string{}
	return O
}

//LoadOptions reads an Options from a TOML file. Fields absent from the
//file keep their DefaultOptions values.
func LoadOptions(filename string) (*Options, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, Error{"can't open options file: " + err.Error(), []string{"os.Open", "LoadOptions"}, true}
	}
	defer f.Close()
	cont, err := io.ReadAll(f)
	if err != nil {
		return nil, Error{"can't read options file: " + err.Error(), []string{"io.ReadAll", "LoadOptions"}, true}
	}
	O := DefaultOptions()
	if err := toml.Unmarshal(cont, O); err != nil {
		return nil, Error{"can't parse options file: " + err.Error(), []string{"toml.Unmarshal", "LoadOptions"}, true}
	}
	return O, nil
}

func (O *Options) engineConfig() *engine.Config {
	return &engine.Config{
		GPU:       O.GPU,
		Cores:     O.Cores,
		MPILaunch: O.MPILaunch,
		KPoints:   O.KPoints,
		Cutoff:    O.Cutoff,
		PseudoDir: O.PseudoDir,
		PseudoSet: O.PseudoSet,
		Extra:     O.Extra,
		WorkDir:   O.WorkDir,
		Name:      O.Name,
		Verbosity: O.Verbosity,
	}
}
