/*
 * options_test.go, part of goJDFTx.
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

import "testing"

func TestLoadOptions(Te *testing.T) {
	O, err := LoadOptions("test/options.toml")
	if err != nil {
		Te.Fatal(err)
	}
	if O.Verbosity != 2 || O.Cores != 8 || O.Name != "slab" {
		Te.Errorf("scalar options misread: %+v", O)
	}
	if O.MPILaunch != "mpirun -np 4" {
		Te.Errorf("MPILaunch misread: %q", O.MPILaunch)
	}
	if O.KPoints != [3]int{4, 4, 1} {
		Te.Errorf("KPoints misread: %v", O.KPoints)
	}
	if O.Cutoff != 20.0 {
		Te.Errorf("Cutoff misread: %f", O.Cutoff)
	}
	if len(O.Extra) != 2 || O.Extra[0] != "elec-smearing Fermi 0.01" {
		Te.Errorf("Extra commands misread: %v", O.Extra)
	}
	if O.Pseudos["O"] != "O_ONCV_PBE.upf" {
		Te.Errorf("per-species pseudopotentials misread: %v", O.Pseudos)
	}
	//absent fields keep their defaults
	if O.GPU {
		Te.Errorf("GPU should be off")
	}
	if O.WorkDir != "" {
		Te.Errorf("WorkDir should have stayed empty")
	}
}

func TestLoadOptionsMissingFile(Te *testing.T) {
	if _, err := LoadOptions("test/nosuchoptions.toml"); err == nil {
		Te.Errorf("LoadOptions accepted a nonexistent file")
	}
}

func TestEngineConfigPassthrough(Te *testing.T) {
	O, err := LoadOptions("test/options.toml")
	if err != nil {
		Te.Fatal(err)
	}
	C := O.engineConfig()
	if C.Cores != O.Cores || C.MPILaunch != O.MPILaunch || C.KPoints != O.KPoints ||
		C.Cutoff != O.Cutoff || C.Name != O.Name || len(C.Extra) != len(O.Extra) {
		Te.Errorf("engine config does not match the options: %+v vs %+v", C, O)
	}
}
