/*
 * jdftx_test.go, part of goJDFTx.
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

package engine

import (
	"math"
	"os"
	"strings"
	"testing"

	v3 "github.com/rmera/gochem/v3"
)

//builds a handle pointed at the pre-cooked water output in ../test, as if
//one minimization had already run.
func fixtureHandle() *JDFTx {
	return &JDFTx{
		command: "true",
		name:    "h2o",
		dir:     "../test",
		cfg:     new(Config),
		symbols: []string{"O", "H", "H"},
		ready:   true,
		nruns:   1,
	}
}

func TestTotalEnergyParsing(Te *testing.T) {
	J := fixtureHandle()
	energy, err := J.TotalEnergy()
	if err != nil {
		Te.Fatal(err)
	}
	//the final components block, not the last iteration line
	want := -17.2616926792591022
	if math.Abs(energy-want) > 1e-12 {
		Te.Errorf("energy: got %.16f, want %.16f", energy, want)
	}
}

func TestForcesParsing(Te *testing.T) {
	J := fixtureHandle()
	forces, err := J.Forces()
	if err != nil {
		Te.Fatal(err)
	}
	if forces.NVecs() != 3 {
		Te.Fatalf("got forces for %d ions, want 3", forces.NVecs())
	}
	want := [][3]float64{
		{0.000123456789012, -0.000234567890123, 0.000345678901234},
		{-0.001234567890123, 0.002345678901234, -0.003456789012345},
		{0.004567890123456, -0.005678901234567, 0.006789012345678},
	}
	for i := range want {
		for k := 0; k < 3; k++ {
			if math.Abs(forces.At(i, k)-want[i][k]) > 1e-15 {
				Te.Errorf("force %d,%d: got %g, want %g", i, k, forces.At(i, k), want[i][k])
			}
		}
	}
}

func TestForcesCountMismatch(Te *testing.T) {
	J := fixtureHandle()
	J.symbols = []string{"O", "H", "H", "H"} //one ion too many
	if _, err := J.Forces(); err == nil {
		Te.Errorf("Forces accepted an output with a missing ion")
	}
}

func TestResultsBeforeRun(Te *testing.T) {
	J := fixtureHandle()
	J.nruns = 0
	if _, err := J.TotalEnergy(); err == nil {
		Te.Errorf("TotalEnergy worked before any minimization")
	}
	if _, err := J.Forces(); err == nil {
		Te.Errorf("Forces worked before any minimization")
	}
}

func TestIonBookkeeping(Te *testing.T) {
	J := &JDFTx{command: "true", name: "book", cfg: new(Config)}
	cell, err := v3.NewMatrix([]float64{20, 0, 0, 0, 20, 0, 0, 0, 20})
	if err != nil {
		Te.Fatal(err)
	}
	if err := J.SetCell(cell); err != nil {
		Te.Fatal(err)
	}
	if err := J.AddIon("O", [3]float64{0, 0, 0}, ""); err != nil {
		Te.Fatal(err)
	}
	if err := J.AddIon("H", [3]float64{1.81, 0, 0}, ""); err != nil {
		Te.Fatal(err)
	}
	if err := J.Setup(); err != nil {
		Te.Fatal(err)
	}
	//frozen now
	if err := J.AddIon("H", [3]float64{0, 1.81, 0}, ""); err == nil {
		Te.Errorf("AddIon accepted an ion after Setup")
	}
	if err := J.SetCell(cell); err == nil {
		Te.Errorf("SetCell accepted a cell after Setup")
	}
	delta, err := v3.NewMatrix([]float64{0.1, 0, 0, 0, 0.2, 0})
	if err != nil {
		Te.Fatal(err)
	}
	if err := J.UpdateIonicPositions(delta); err != nil {
		Te.Fatal(err)
	}
	pos, err := J.IonicPositions()
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(pos.At(0, 0)-0.1) > 1e-12 || math.Abs(pos.At(1, 1)-0.2) > 1e-12 {
		Te.Errorf("displacement not applied:\n%v", pos.String())
	}
	//IonicPositions hands out a copy, not the engine's own matrix
	pos.Set(0, 0, 99)
	again, _ := J.IonicPositions()
	if again.At(0, 0) == 99 {
		Te.Errorf("IonicPositions aliases the internal state")
	}
}

func TestWriteInput(Te *testing.T) {
	J := &JDFTx{
		command:   "true",
		name:      "inptest",
		dir:       "../test",
		pseudoDir: "/usr/local/jdftx/pseudopotentials",
		cfg: &Config{
			Cores:   4,
			KPoints: [3]int{4, 4, 1},
			Cutoff:  20,
			Extra:   []string{"elec-smearing Fermi 0.01"},
		},
	}
	cell, err := v3.NewMatrix([]float64{20, 0, 0, 0, 20, 0, 0, 0, 25})
	if err != nil {
		Te.Fatal(err)
	}
	J.SetCell(cell)
	J.AddIon("O", [3]float64{0, 0, 0}, "")
	J.AddIon("H", [3]float64{1.81, 0, 0}, "o_pbe.uspp")
	if err := J.Setup(); err != nil {
		Te.Fatal(err)
	}
	if err := J.writeInput(); err != nil {
		Te.Fatal(err)
	}
	cont, err := os.ReadFile("../test/inptest.in")
	if err != nil {
		Te.Fatal(err)
	}
	input := string(cont)
	for _, want := range []string{
		"lattice",
		"coords-type Cartesian",
		"ion O 0.000000000000 0.000000000000 0.000000000000 1",
		"ion H 1.810000000000 0.000000000000 0.000000000000 1",
		"kpoint-folding 4 4 1",
		"elec-cutoff 20.00",
		"elec-smearing Fermi 0.01",
		"forces-output-coords Cartesian",
		"dump End State Forces",
	} {
		if !strings.Contains(input, want) {
			Te.Errorf("input file lacks %q:\n%s", want, input)
		}
	}
	//no previous run, so no initial state to read
	if strings.Contains(input, "initial-state") {
		Te.Errorf("first input must not ask for an initial state")
	}
}

func TestLastLineContaining(Te *testing.T) {
	if got := lastLineContaining("../test/h2o.out", "ElecMinimize: Iter:"); !strings.Contains(got, "Iter:   3") {
		Te.Errorf("did not get the last matching line, got %q", got)
	}
	if got := lastLineContaining("../test/h2o.out", "not actually there"); got != "" {
		Te.Errorf("matched a string that is not in the file: %q", got)
	}
	if got := lastLineContaining("../test/nosuchfile.out", "Done!"); got != "" {
		Te.Errorf("matched in a nonexistent file")
	}
}
