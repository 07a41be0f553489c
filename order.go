/*
 * order.go, part of goJDFTx.
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
	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"
	"gonum.org/v1/gonum/mat"
)

//JDFTx keeps its ions grouped contiguously by species, with the species
//blocks in first-appearance order and the atoms within a block in the
//relative order they had in the caller's sequence. OrderIndexMap holds the
//resulting pair of permutations. It is built once per session and never
//changes afterwards; a different atom count or species sequence needs a
//new map (and a new session).
type OrderIndexMap struct {
	toEngine   []int    //toEngine[i] is the engine-side index of external atom i
	fromEngine []int    //fromEngine[j] is the external-side index of engine atom j
	symbols    []string //the external-order species sequence the map was built from
}

//BuildIndexMap builds the conversion tables between the external atom
//ordering of atoms and the species-grouped ordering the engine wants.
//The first pass collects the distinct species in order of first appearance
//and their counts, which fixes the base offset of each species block; the
//second pass hands every atom the next free slot in its block.
func BuildIndexMap(atoms chem.Atomer) (*OrderIndexMap, error) {
	if atoms == nil || atoms.Len() == 0 {
		return nil, Error{ErrNotAtoms, []string{"BuildIndexMap"}, true}
	}
	N := atoms.Len()
	counts := make(map[string]int)
	order := make([]string, 0, 2)
	symbols := make([]string, N)
	for i := 0; i < N; i++ {
		s := atoms.Atom(i).Symbol
		symbols[i] = s
		if _, seen := counts[s]; !seen {
			order = append(order, s)
		}
		counts[s]++
	}
	//cursor starts at the base offset of each species block and
	//advances as the block fills up.
	cursor := make(map[string]int, len(order))
	offset := 0
	for _, s := range order {
		cursor[s] = offset
		offset += counts[s]
	}
	M := &OrderIndexMap{
		toEngine:   make([]int, N),
		fromEngine: make([]int, N),
		symbols:    symbols,
	}
	for i := 0; i < N; i++ {
		j := cursor[symbols[i]]
		M.toEngine[i] = j
		M.fromEngine[j] = i
		cursor[symbols[i]]++
	}
	return M, nil
}

//Len returns the number of atoms the map was built for.
func (M *OrderIndexMap) Len() int { return len(M.toEngine) }

//ToEngine returns the engine-side index of the atom at external index i.
func (M *OrderIndexMap) ToEngine(i int) int { return M.toEngine[i] }

//FromEngine returns the external-side index of the atom at engine index j.
func (M *OrderIndexMap) FromEngine(j int) int { return M.fromEngine[j] }

//Symbols returns a copy of the external-order species sequence the map
//was built from.
func (M *OrderIndexMap) Symbols() []string {
	s := make([]string, len(M.symbols))
	copy(s, M.symbols)
	return s
}

//EngineSymbol returns the species of the atom at engine index j.
func (M *OrderIndexMap) EngineSymbol(j int) string {
	return M.symbols[M.fromEngine[j]]
}

//MatrixToEngineOrder returns a new matrix with the rows of in (one row per
//atom, external order) placed in engine order. in is never modified.
func (M *OrderIndexMap) MatrixToEngineOrder(in *v3.Matrix) (*v3.Matrix, error) {
	return M.permuteMatrix(in, M.toEngine, "MatrixToEngineOrder")
}

//MatrixFromEngineOrder returns a new matrix with the rows of in (one row per
//atom, engine order) placed back in external order. in is never modified.
func (M *OrderIndexMap) MatrixFromEngineOrder(in *v3.Matrix) (*v3.Matrix, error) {
	return M.permuteMatrix(in, M.fromEngine, "MatrixFromEngineOrder")
}

//AtomsToEngineOrder returns a new slice with copies of the given atoms in
//engine order. The atoms themselves are copied, not aliased, so the result
//can be edited freely.
func (M *OrderIndexMap) AtomsToEngineOrder(in []*chem.Atom) ([]*chem.Atom, error) {
	return M.permuteAtoms(in, M.toEngine, "AtomsToEngineOrder")
}

//AtomsFromEngineOrder is the inverse of AtomsToEngineOrder.
func (M *OrderIndexMap) AtomsFromEngineOrder(in []*chem.Atom) ([]*chem.Atom, error) {
	return M.permuteAtoms(in, M.fromEngine, "AtomsFromEngineOrder")
}

//out[perm[i]] = in[i]. Note that scattering with toEngine is the same
//permutation as gathering with fromEngine, and vice versa.
func (M *OrderIndexMap) permuteMatrix(in *v3.Matrix, perm []int, caller string) (*v3.Matrix, error) {
	if in == nil {
		return nil, Error{ErrNilCoordinates, []string{caller}, true}
	}
	if in.NVecs() != len(perm) {
		return nil, Error{ErrShape, []string{caller}, true}
	}
	out := v3.Zeros(len(perm))
	for i, p := range perm {
		for k := 0; k < 3; k++ {
			out.Set(p, k, in.At(i, k))
		}
	}
	return out, nil
}

func (M *OrderIndexMap) permuteAtoms(in []*chem.Atom, perm []int, caller string) ([]*chem.Atom, error) {
	if in == nil {
		return nil, Error{ErrNotAtoms, []string{caller}, true}
	}
	if len(in) != len(perm) {
		return nil, Error{ErrShape, []string{caller}, true}
	}
	out := make([]*chem.Atom, len(in))
	for i, p := range perm {
		c := new(chem.Atom)
		c.Copy(in[i])
		out[p] = c
	}
	return out, nil
}

//ToEngineOrder reorders an arbitrary per-atom payload into engine order.
//The payload may be a *v3.Matrix, a *mat.Dense with one row per atom and
//any number of columns, or a []*chem.Atom; anything else is an error. A
//new container is always returned, of the same kind as the input.
func (M *OrderIndexMap) ToEngineOrder(payload interface{}) (interface{}, error) {
	return M.reorder(payload, M.toEngine, "ToEngineOrder")
}

//FromEngineOrder reorders an arbitrary per-atom payload from engine order
//back to the external order. Same payload rules as ToEngineOrder.
func (M *OrderIndexMap) FromEngineOrder(payload interface{}) (interface{}, error) {
	return M.reorder(payload, M.fromEngine, "FromEngineOrder")
}

func (M *OrderIndexMap) reorder(payload interface{}, perm []int, caller string) (interface{}, error) {
	switch x := payload.(type) {
	case *v3.Matrix:
		return M.permuteMatrix(x, perm, caller)
	case *mat.Dense:
		if x == nil {
			return nil, Error{ErrNilCoordinates, []string{caller}, true}
		}
		r, c := x.Dims()
		if r != len(perm) {
			return nil, Error{ErrShape, []string{caller}, true}
		}
		out := mat.NewDense(r, c, nil)
		for i, p := range perm {
			out.SetRow(p, x.RawRowView(i))
		}
		return out, nil
	case []*chem.Atom:
		return M.permuteAtoms(x, perm, caller)
	}
	return nil, Error{ErrUnsupportedPayload, []string{caller}, true}
}
