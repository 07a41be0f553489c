/*
 * main.go, part of goJDFTx.
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

//gojdftx evaluates every frame of an XYZ geometry with the JDFTx engine and
//records energies and forces. The heavy options live in a TOML file; the
//flags cover the things one changes between runs on the same system.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"

	jdftx "github.com/rmera/gojdftx"
	"github.com/rmera/gojdftx/evtraj"
	"github.com/rmera/gojdftx/minplot"
)

var verb int

//LogV prints the d arguments to stderr if v >= vref, and does nothing
//otherwise.
func LogV(vref int, d ...interface{}) {
	if verb >= vref {
		fmt.Fprintln(os.Stderr, d...)
	}
}

func CErr(err error, info string) {
	if err != nil {
		log.Fatal(err, " ", info)
	}
}

func main() {
	optsfile := flag.String("options", "", "TOML file with the engine options. An empty string uses the defaults")
	boxside := flag.Float64("box", 15.0, "side of the cubic cell, in A. Ignored if the options file sets a cell")
	trajname := flag.String("traj", "evaluated.ets", "file for the recorded evaluation trajectory")
	plotname := flag.String("plot", "", "if non-empty, write an energy-vs-evaluation plot with this base name")
	verbose := flag.Int("verbose", 0, "level of verbosity, the higher, the more verbose")
	flag.Parse()
	verb = *verbose
	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Use: gojdftx [FLAGS] geometry.xyz")
		os.Exit(1)
	}
	mol, err := chem.XYZFileRead(args[0])
	CErr(err, "main")
	LogV(1, "read", mol.Len(), "atoms,", len(mol.Coords), "frames")
	var opts *jdftx.Options
	if *optsfile != "" {
		opts, err = jdftx.LoadOptions(*optsfile)
		CErr(err, "main")
	} else {
		opts = jdftx.DefaultOptions()
	}
	opts.Verbosity = verb
	side := *boxside
	cell, err := v3.NewMatrix([]float64{side, 0, 0, 0, side, 0, 0, 0, side})
	CErr(err, "main")
	calc, err := jdftx.New(mol, mol.Coords[0], cell, opts)
	CErr(err, "main")
	traj, err := evtraj.NewWriter(*trajname, mol.Len(), map[string]string{"source": args[0]})
	CErr(err, "main")
	defer traj.Close()
	box := []float64{side, 0, 0, 0, side, 0, 0, 0, side}
	energies := make([]float64, 0, len(mol.Coords))
	for i, coords := range mol.Coords {
		res, err := calc.Evaluate(coords, mol)
		CErr(err, fmt.Sprintf("main: frame %d", i))
		energies = append(energies, res.Energy)
		LogV(1, "frame", i, "energy (eV):", res.Energy)
		LogV(2, "frame", i, "forces (eV/A):", res.Forces.String())
		err = traj.WNext(coords, res.Energy, box)
		CErr(err, "main")
	}
	for i, e := range energies {
		fmt.Printf("%d %.8f\n", i, e)
	}
	if *plotname != "" {
		err = minplot.RelativeEnergyPlot(energies, "Evaluated energies", *plotname)
		CErr(err, "main")
	}
}
