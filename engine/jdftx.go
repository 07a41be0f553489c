/*
 * jdftx.go, part of goJDFTx.
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
//In order to use this part of the library you need the JDFTx program,
//which must be obtained separately (https://jdftx.org). Please cite the
//JDFTx references if you use it.

/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package engine

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	v3 "github.com/rmera/gochem/v3"
)

//JDFTx drives the jdftx (or jdftx_gpu) executable through input and output
//files, the same way one would run it by hand: each minimization writes a
//fresh command file, runs the program and parses the text output. The
//electronic state is dumped at the end of each run and read back at the
//start of the next, so repeated minimizations on slowly-moving ions start
//from a good guess.
//
//The handle keeps the ionic positions and the cell itself, in Bohr and in
//engine order; they are the reference the caller diffs against.
type JDFTx struct {
	command   string
	name      string
	dir       string
	pseudoDir string
	cfg       *Config

	symbols []string
	pseudos []string
	raw     []float64 //ion positions as registered, before Setup freezes them
	pos     *v3.Matrix
	cell    *v3.Matrix
	ready   bool
	nruns   int
}

//AddIon registers one ion in engine-construction order. pos is in Bohr.
func (J *JDFTx) AddIon(symbol string, pos [3]float64, pseudo string) error {
	if J.ready {
		return Error{"AddIon called after Setup", J.name, []string{"AddIon"}, true}
	}
	if symbol == "" {
		return Error{"ion with empty species symbol", J.name, []string{"AddIon"}, true}
	}
	J.symbols = append(J.symbols, symbol)
	J.pseudos = append(J.pseudos, pseudo)
	J.raw = append(J.raw, pos[0], pos[1], pos[2])
	return nil
}

//SetCell sets the lattice vectors, one per row, in Bohr.
func (J *JDFTx) SetCell(cell *v3.Matrix) error {
	if J.ready {
		return Error{"SetCell called after Setup", J.name, []string{"SetCell"}, true}
	}
	if cell == nil || cell.NVecs() != 3 {
		return Error{"cell must be a 3x3 matrix of lattice vectors", J.name, []string{"SetCell"}, true}
	}
	c := v3.Zeros(3)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			c.Set(i, k, cell.At(i, k))
		}
	}
	J.cell = c
	return nil
}

//Setup freezes the ion list and the cell. After this only positions change.
func (J *JDFTx) Setup() error {
	if J.ready {
		return Error{"Setup called twice", J.name, []string{"Setup"}, true}
	}
	if len(J.symbols) == 0 {
		return Error{"Setup with no ions registered", J.name, []string{"Setup"}, true}
	}
	if J.cell == nil {
		return Error{"Setup with no cell set", J.name, []string{"Setup"}, true}
	}
	var err error
	J.pos, err = v3.NewMatrix(J.raw)
	if err != nil {
		return Error{err.Error(), J.name, []string{"v3.NewMatrix", "Setup"}, true}
	}
	J.raw = nil
	J.ready = true
	return nil
}

//UpdateIonicPositions displaces every ion by the corresponding row of
//delta (engine order, Bohr).
func (J *JDFTx) UpdateIonicPositions(delta *v3.Matrix) error {
	if !J.ready {
		return Error{"position update before Setup", J.name, []string{"UpdateIonicPositions"}, true}
	}
	if delta == nil || delta.NVecs() != len(J.symbols) {
		return Error{fmt.Sprintf("expected a displacement for each of the %d ions", len(J.symbols)), J.name, []string{"UpdateIonicPositions"}, true}
	}
	for i := 0; i < delta.NVecs(); i++ {
		for k := 0; k < 3; k++ {
			J.pos.Set(i, k, J.pos.At(i, k)+delta.At(i, k))
		}
	}
	return nil
}

//IonicPositions returns a copy of the current positions (engine order, Bohr).
func (J *JDFTx) IonicPositions() (*v3.Matrix, error) {
	if !J.ready {
		return nil, Error{"position read before Setup", J.name, []string{"IonicPositions"}, true}
	}
	out := v3.Zeros(J.pos.NVecs())
	for i := 0; i < J.pos.NVecs(); i++ {
		for k := 0; k < 3; k++ {
			out.Set(i, k, J.pos.At(i, k))
		}
	}
	return out, nil
}

//RunElecMin writes the input for one minimization at the current ionic
//positions, runs the program, and checks that it terminated normally.
//It blocks until the program exits; any failure aborts the whole call.
func (J *JDFTx) RunElecMin() error {
	if !J.ready {
		return Error{"minimization requested before Setup", J.name, []string{"RunElecMin"}, true}
	}
	if err := J.writeInput(); err != nil {
		return errDecorate(err, "RunElecMin")
	}
	com := J.command
	if J.cfg.MPILaunch != "" {
		com = J.cfg.MPILaunch + " " + com
	}
	com = fmt.Sprintf("%s -i %s.in -o %s.out", com, J.name, J.name)
	if J.cfg.Cores > 0 {
		com = fmt.Sprintf("%s -c %d", com, J.cfg.Cores)
	}
	command := exec.Command("sh", "-c", com)
	command.Dir = J.dir
	if err := command.Run(); err != nil {
		return Error{"jdftx did not run: " + err.Error(), J.name, []string{"exec.Run", "RunElecMin"}, true}
	}
	if lastLineContaining(J.path(J.name+".out"), "Done!") == "" {
		return Error{"jdftx did not terminate normally", J.name, []string{"RunElecMin"}, true}
	}
	J.nruns++
	return nil
}

//TotalEnergy parses the total energy of the last minimization (Hartree)
//from the final energy-components block of the output.
func (J *JDFTx) TotalEnergy() (float64, error) {
	if J.nruns == 0 {
		return 0, Error{"energy requested before any minimization", J.name, []string{"TotalEnergy"}, true}
	}
	out := J.path(J.name + ".out")
	//With fermi fillings the grand total is labeled F rather than Etot.
	line := lastLineContaining(out, "Etot = ")
	if line == "" {
		line = lastLineContaining(out, "F = ")
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return 0, Error{"no total energy in output", J.name, []string{"TotalEnergy"}, true}
	}
	energy, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, Error{"unparseable total energy: " + err.Error(), J.name, []string{"strconv.ParseFloat", "TotalEnergy"}, true}
	}
	return energy, nil
}

//Forces parses the ionic forces of the last minimization from the output
//(one row per ion, engine order, Hartree/Bohr). The input always requests
//the Cartesian forces dump, so the block is there whenever a run finished.
func (J *JDFTx) Forces() (*v3.Matrix, error) {
	if J.nruns == 0 {
		return nil, Error{"forces requested before any minimization", J.name, []string{"Forces"}, true}
	}
	f, err := os.Open(J.path(J.name + ".out"))
	if err != nil {
		return nil, Error{err.Error(), J.name, []string{"os.Open", "Forces"}, true}
	}
	defer f.Close()
	var block []float64
	in := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "# Forces in Cartesian coordinates") {
			in = true
			block = block[:0] //only the last block counts
			continue
		}
		if !in {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 || fields[0] != "force" {
			in = false
			continue
		}
		for k := 2; k < 5; k++ {
			v, err := strconv.ParseFloat(fields[k], 64)
			if err != nil {
				return nil, Error{"unparseable force line: " + line, J.name, []string{"strconv.ParseFloat", "Forces"}, true}
			}
			block = append(block, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, Error{err.Error(), J.name, []string{"bufio.Scanner", "Forces"}, true}
	}
	if len(block) != 3*len(J.symbols) {
		return nil, Error{fmt.Sprintf("forces found for %d of %d ions", len(block)/3, len(J.symbols)), J.name, []string{"Forces"}, true}
	}
	forces, err := v3.NewMatrix(block)
	if err != nil {
		return nil, Error{err.Error(), J.name, []string{"v3.NewMatrix", "Forces"}, true}
	}
	return forces, nil
}

func (J *JDFTx) path(file string) string {
	if J.dir == "" {
		return file
	}
	return filepath.Join(J.dir, file)
}

//writeInput writes the command file for one fixed-ion minimization. The
//lattice command takes the vectors as columns, hence the transpose.
func (J *JDFTx) writeInput() error {
	f, err := os.Create(J.path(J.name + ".in"))
	if err != nil {
		return Error{err.Error(), J.name, []string{"os.Create", "writeInput"}, true}
	}
	defer f.Close()
	fmt.Fprintf(f, "lattice \\\n")
	for i := 0; i < 3; i++ {
		fmt.Fprintf(f, "\t%.12f %.12f %.12f", J.cell.At(0, i), J.cell.At(1, i), J.cell.At(2, i))
		if i < 2 {
			fmt.Fprintf(f, " \\")
		}
		fmt.Fprintf(f, "\n")
	}
	fmt.Fprintf(f, "coords-type Cartesian\n")
	for i, sym := range J.symbols {
		fmt.Fprintf(f, "ion %s %.12f %.12f %.12f 1\n", sym, J.pos.At(i, 0), J.pos.At(i, 1), J.pos.At(i, 2))
	}
	set := J.cfg.PseudoSet
	if set == "" {
		set = "GBRV/$ID_pbe_v1.uspp"
	}
	fmt.Fprintf(f, "ion-species %s\n", filepath.Join(J.pseudoDir, set))
	for i, pseudo := range J.pseudos {
		//per-ion overrides take precedence over the wildcard set
		if pseudo != "" {
			fmt.Fprintf(f, "ion-species %s # %s\n", pseudo, J.symbols[i])
		}
	}
	if J.cfg.Cutoff > 0 {
		fmt.Fprintf(f, "elec-cutoff %.2f\n", J.cfg.Cutoff)
	}
	if k := J.cfg.KPoints; k[0] > 0 && k[1] > 0 && k[2] > 0 {
		fmt.Fprintf(f, "kpoint-folding %d %d %d\n", k[0], k[1], k[2])
	}
	if J.nruns > 0 {
		fmt.Fprintf(f, "initial-state %s.$VAR\n", J.name)
	}
	fmt.Fprintf(f, "dump-name %s.$VAR\n", J.name)
	fmt.Fprintf(f, "dump End State Forces\n")
	fmt.Fprintf(f, "forces-output-coords Cartesian\n")
	for _, extra := range J.cfg.Extra {
		fmt.Fprintf(f, "%s\n", extra)
	}
	return nil
}

//lastLineContaining returns the last line of the named file containing str,
//or an empty string if there is none (or the file cannot be read).
func lastLineContaining(filename, str string) string {
	f, err := os.Open(filename)
	if err != nil {
		return ""
	}
	defer f.Close()
	found := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), str) {
			found = scanner.Text()
		}
	}
	return found
}

//errDecorate asserts that err implements chem.Error and decorates it
//with the caller's name before passing it up.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}
