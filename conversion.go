/*
 * conversion.go, part of goJDFTx.
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

import chem "github.com/rmera/gochem"

//The engine works in atomic units (Bohr, Hartree) while the caller-facing
//side of the library uses A and eV. These factors are fixed, not configurable.

//Conversions
const (
	H2eV   = 27.211386245988 //Hartree 2 eV
	EV2H   = 1 / H2eV
	A2Bohr = chem.A2Bohr
	Bohr2A = chem.Bohr2A
	//Forces: Hartree/Bohr to eV/A
	HBohr2eVA = H2eV * A2Bohr
	EVA2HBohr = 1 / HBohr2eVA
)
