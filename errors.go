/*
 * errors.go, part of goJDFTx.
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

import "fmt"

//Error implements the goChem error interface (chem.Error): a message plus a
//"decoration" trace of the functions the error has passed through.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("goJDFTx error: %s", err.message)
}

//Decorate adds the dec string to the decoration slice of strings of the error,
//and returns the resulting slice. An empty dec only queries the trace.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical returns whether the error can be safely ignored.
func (err Error) Critical() bool { return err.critical }

//errDecorate asserts that err implements chem.Error and decorates it
//with the caller's name before passing it up.
func errDecorate(err error, caller string) error {
	err2, ok := err.(interface {
		Error() string
		Decorate(string) []string
	})
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2.(error)
}

//The error classes of the translation layer. Every error returned by this
//package carries one of these messages (possibly with extra detail appended).
const (
	ErrNotAtoms            = "Not a valid, non-empty set of atoms"
	ErrNilCoordinates      = "Nil coordinates given"
	ErrUnsupportedPayload  = "Can only change the order of a *v3.Matrix, a *mat.Dense or a []*chem.Atom"
	ErrCompositionMismatch = "Atom count or species sequence differs from the one this session was built with"
	ErrShape               = "Payload length does not match the atom count of the index map"
)
