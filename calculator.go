/*
 * calculator.go, part of goJDFTx.
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
	"log"
	"time"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"

	"github.com/rmera/gojdftx/engine"
)

//Results is what one Evaluate call produces. Energy is in eV and Forces in
//eV/A, one row per atom, in the caller's original ordering. This engine
//computes neither stress, dipole, charges nor magnetic moments; those fields
//are zero-valued so the struct still fits a generic calculator schema.
type Results struct {
	Energy  float64
	Forces  *v3.Matrix
	Stress  [6]float64
	Dipole  [3]float64
	Charges []float64
	Magmom  float64
	Magmoms []float64
}

//Calculator binds one set of atoms to one engine handle through an
//OrderIndexMap, and runs the evaluate-read-translate cycle on demand.
//The composition (atom count and species sequence) is fixed at construction;
//changing it needs a new Calculator. One Calculator drives its engine
//strictly sequentially, and must not be shared between goroutines.
type Calculator struct {
	eng     engine.Engine
	idx     *OrderIndexMap
	symbols []string
	pos     *v3.Matrix //positions last handed to the engine, in A, caller order
	verbose int
}

//New builds a Calculator for the given atoms: it derives the index map from
//the species sequence, hands the engine the cell and the ions in engine
//order, and runs the engine's one-time setup, which can take minutes.
//coords and cell are in A, in the caller's ordering.
func New(atoms chem.Atomer, coords *v3.Matrix, cell *v3.Matrix, O *Options) (*Calculator, error) {
	if O == nil {
		O = DefaultOptions()
	}
	eng, err := engine.New(O.engineConfig())
	if err != nil {
		return nil, errDecorate(err, "New")
	}
	return NewWithEngine(atoms, coords, cell, O, eng)
}

//NewWithEngine is New with a caller-supplied engine implementation, for
//substituting another DFT code (or a test double) behind the same contract.
//The engine must be freshly constructed: no ions registered, no setup run.
func NewWithEngine(atoms chem.Atomer, coords *v3.Matrix, cell *v3.Matrix, O *Options, eng engine.Engine) (*Calculator, error) {
	if O == nil {
		O = DefaultOptions()
	}
	if atoms == nil || atoms.Len() == 0 {
		return nil, Error{ErrNotAtoms, []string{"NewWithEngine"}, true}
	}
	if coords == nil || coords.NVecs() != atoms.Len() {
		return nil, Error{ErrNilCoordinates, []string{"NewWithEngine"}, true}
	}
	if cell == nil || cell.NVecs() != 3 {
		return nil, Error{"cell must be a 3x3 matrix of lattice vectors in A", []string{"NewWithEngine"}, true}
	}
	idx, err := BuildIndexMap(atoms)
	if err != nil {
		return nil, errDecorate(err, "NewWithEngine")
	}
	bcell := v3.Zeros(3)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			bcell.Set(i, k, cell.At(i, k)*A2Bohr)
		}
	}
	if err := eng.SetCell(bcell); err != nil {
		return nil, errDecorate(err, "NewWithEngine")
	}
	//ions go in engine order, positions in Bohr
	for j := 0; j < idx.Len(); j++ {
		i := idx.FromEngine(j)
		sym := atoms.Atom(i).Symbol
		pos := [3]float64{coords.At(i, 0) * A2Bohr, coords.At(i, 1) * A2Bohr, coords.At(i, 2) * A2Bohr}
		if err := eng.AddIon(sym, pos, O.Pseudos[sym]); err != nil {
			return nil, errDecorate(err, "NewWithEngine")
		}
	}
	t0 := time.Now()
	if err := eng.Setup(); err != nil {
		return nil, errDecorate(err, "NewWithEngine")
	}
	if O.Verbosity >= 1 {
		log.Printf("goJDFTx: engine setup took %v", time.Since(t0))
	}
	pos := v3.Zeros(idx.Len())
	pos.Copy(coords)
	return &Calculator{
		eng:     eng,
		idx:     idx,
		symbols: idx.Symbols(),
		pos:     pos,
		verbose: O.Verbosity,
	}, nil
}

//IndexMap returns the ordering translation tables of this session.
func (C *Calculator) IndexMap() *OrderIndexMap { return C.idx }

//Evaluate runs one electronic minimization at the given positions and
//returns energy and forces. coords is in A, in the same ordering and for
//the same composition the Calculator was built with; atoms may be given to
//re-check the species sequence, or be nil to skip that check. The
//properties are accepted for schema compatibility only: energy and forces
//are always computed, the rest of Results is always zero. A failed
//engine call aborts the whole evaluation: no retries, no partial results.
//
//The minimization runs once per call, unconditionally, even when the
//positions did not move; skipping it would be an engine-side concern, not
//ours. The position update, in contrast, is skipped when the delta is
//exactly zero.
func (C *Calculator) Evaluate(coords *v3.Matrix, atoms chem.Atomer, properties ...string) (*Results, error) {
	N := len(C.symbols)
	if coords == nil {
		return nil, Error{ErrNilCoordinates, []string{"Evaluate"}, true}
	}
	if coords.NVecs() != N {
		return nil, Error{ErrCompositionMismatch, []string{"Evaluate"}, true}
	}
	if atoms != nil {
		if atoms.Len() != N {
			return nil, Error{ErrCompositionMismatch, []string{"Evaluate"}, true}
		}
		for i := 0; i < N; i++ {
			if atoms.Atom(i).Symbol != C.symbols[i] {
				return nil, Error{ErrCompositionMismatch, []string{"Evaluate"}, true}
			}
		}
	}
	if err := C.updatePositions(coords); err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	t0 := time.Now()
	if err := C.eng.RunElecMin(); err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	if C.verbose >= 1 {
		log.Printf("goJDFTx: electronic minimization took %v", time.Since(t0))
	}
	energy, err := C.eng.TotalEnergy()
	if err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	eforces, err := C.eng.Forces()
	if err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	forces, err := C.idx.MatrixFromEngineOrder(eforces)
	if err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	for i := 0; i < N; i++ {
		for k := 0; k < 3; k++ {
			forces.Set(i, k, forces.At(i, k)*HBohr2eVA)
		}
	}
	return &Results{
		Energy:  energy * H2eV,
		Forces:  forces,
		Charges: make([]float64, N),
		Magmoms: make([]float64, N),
	}, nil
}

//updatePositions pushes the difference between coords and the positions of
//the previous push into the engine, as an incremental displacement. The
//delta is computed in external units (A) and external order, then converted
//to Bohr and reordered; this is the one convention used everywhere in this
//library. The comparison is against the Calculator's own record of the
//last pushed A-coordinates, never against a Bohr readback, so unchanged
//positions give a delta of exactly zero, which is not pushed at all.
func (C *Calculator) updatePositions(coords *v3.Matrix) error {
	N := len(C.symbols)
	delta := v3.Zeros(N)
	changed := false
	for i := 0; i < N; i++ {
		for k := 0; k < 3; k++ {
			d := coords.At(i, k) - C.pos.At(i, k)
			if d != 0 {
				changed = true
			}
			delta.Set(i, k, d*A2Bohr)
		}
	}
	if !changed {
		return nil
	}
	edelta, err := C.idx.MatrixToEngineOrder(delta)
	if err != nil {
		return errDecorate(err, "updatePositions")
	}
	if err := C.eng.UpdateIonicPositions(edelta); err != nil {
		return errDecorate(err, "updatePositions")
	}
	C.pos.Copy(coords)
	return nil
}
