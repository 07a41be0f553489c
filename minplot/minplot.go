/*
 * minplot.go, part of goJDFTx.
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

//Package minplot plots the total energy across a sequence of evaluations,
//which is the quickest way to see whether a geometry scan or a relaxation
//driven through goJDFTx is going anywhere.
package minplot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//EnergyPlot writes a plot of the given energies (eV, one per evaluation,
//in order) to plotname.png.
func EnergyPlot(energies []float64, title, plotname string) error {
	if len(energies) == 0 {
		return fmt.Errorf("minplot: nothing to plot")
	}
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Evaluation"
	p.Y.Label.Text = "Energy (eV)"
	p.Add(plotter.NewGrid())
	pts := make(plotter.XYs, len(energies))
	for i, e := range energies {
		pts[i].X = float64(i)
		pts[i].Y = e
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	p.Add(line, points)
	filename := fmt.Sprintf("%s.png", plotname)
	return p.Save(15*vg.Centimeter, 10*vg.Centimeter, filename)
}

//RelativeEnergyPlot is EnergyPlot with the energies shifted so the lowest
//one is zero, which reads better when the total energies are large.
func RelativeEnergyPlot(energies []float64, title, plotname string) error {
	if len(energies) == 0 {
		return fmt.Errorf("minplot: nothing to plot")
	}
	min := energies[0]
	for _, e := range energies {
		if e < min {
			min = e
		}
	}
	rel := make([]float64, len(energies))
	for i, e := range energies {
		rel[i] = e - min
	}
	return EnergyPlot(rel, title, plotname)
}
