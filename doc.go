/*
 * doc.go, part of goJDFTx.
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

/*Package jdftx exposes the JDFTx plane-wave DFT engine as a goChem-style
calculator. The package itself does no electronic-structure work; it keeps a
caller-supplied set of atoms, in whatever order the caller likes, bound to a
running engine, which wants its ions grouped by chemical species. The two
things it knows how to do are:

    Translate atom orderings. JDFTx keeps ions grouped contiguously by
    species, in the order each species first appears. OrderIndexMap holds
    the two permutations between the caller's ordering and the engine's,
    and can reorder coordinate matrices or atom slices in either direction.

    Drive the evaluate cycle. A Calculator owns one engine handle plus one
    index map. On each Evaluate call it pushes any position change into the
    engine (engine order, atomic units), runs exactly one electronic
    minimization, and reads energy and forces back in the caller's
    ordering and units (eV and eV/A).

The engine itself is an external native program, reached through the engine
subpackage. Each Calculator owns its engine handle exclusively; concurrent
Evaluate calls on the same Calculator are not supported.
*/
package jdftx
