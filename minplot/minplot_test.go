/*
 * minplot_test.go, part of goJDFTx.
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

package minplot

import (
	"os"
	"testing"
)

func TestEnergyPlot(Te *testing.T) {
	energies := []float64{-465.10, -465.31, -465.40, -465.42, -465.425}
	if err := EnergyPlot(energies, "test energies", "../test/energies"); err != nil {
		Te.Fatal(err)
	}
	if _, err := os.Stat("../test/energies.png"); err != nil {
		Te.Errorf("plot file not written: %v", err)
	}
	if err := RelativeEnergyPlot(energies, "test energies", "../test/energies_rel"); err != nil {
		Te.Fatal(err)
	}
}

func TestEnergyPlotEmpty(Te *testing.T) {
	if err := EnergyPlot(nil, "empty", "../test/empty"); err == nil {
		Te.Errorf("plotted an empty energy series")
	}
}
