/*
 * evtraj_test.go, part of goJDFTx.
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

package evtraj

import (
	"fmt"
	"math"
	"testing"

	v3 "github.com/rmera/gochem/v3"
)

func writeTestTraj(Te *testing.T, name string) ([]float64, [][]float64) {
	W, err := NewWriter(name, 2, map[string]string{"source": "test", "prec": "4"})
	if err != nil {
		Te.Fatal(err)
	}
	defer W.Close()
	energies := []float64{-465.1234, -465.2345, -465.3456}
	frames := [][]float64{
		{0, 0, 0, 1.81, 0, 0},
		{0.1, 0, 0, 1.82, 0.05, 0},
		{0.2, 0.1, 0, 1.83, 0.1, 0.05},
	}
	box := []float64{15, 0, 0, 0, 15, 0, 0, 0, 15}
	for i, f := range frames {
		coords, err := v3.NewMatrix(f)
		if err != nil {
			Te.Fatal(err)
		}
		if err := W.WNext(coords, energies[i], box); err != nil {
			Te.Fatal(err)
		}
	}
	return energies, frames
}

func readBack(Te *testing.T, name string, energies []float64, frames [][]float64) {
	R, header, err := NewReader(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer R.Close()
	if header["source"] != "test" {
		Te.Errorf("header lost: %v", header)
	}
	if R.Len() != 2 {
		Te.Errorf("got %d atoms per frame, want 2", R.Len())
	}
	box := make([]float64, 9)
	out := v3.Zeros(2)
	for i := range frames {
		if err := R.Next(out, box); err != nil {
			Te.Fatal(err)
		}
		if R.Energy() != energies[i] {
			Te.Errorf("frame %d energy: got %f, want %f", i, R.Energy(), energies[i])
		}
		for a := 0; a < 2; a++ {
			for k := 0; k < 3; k++ {
				if math.Abs(out.At(a, k)-frames[i][3*a+k]) > 1e-4 {
					Te.Errorf("frame %d atom %d coordinate %d: got %f, want %f", i, a, k, out.At(a, k), frames[i][3*a+k])
				}
			}
		}
		if box[0] != 15 || box[4] != 15 || box[8] != 15 {
			Te.Errorf("frame %d box lost: %v", i, box)
		}
	}
	//one frame too many: the harmless end-of-trajectory error
	err = R.Next(out)
	if err == nil {
		Te.Fatalf("read past the last frame")
	}
	if _, ok := err.(interface{ NormalLastFrameTermination() }); !ok {
		Te.Errorf("end of trajectory is not a LastFrameError: %v", err)
	}
	if c, ok := err.(interface{ Critical() bool }); !ok || c.Critical() {
		Te.Errorf("end-of-trajectory error must be non-critical: %v", err)
	}
	fmt.Println("trajectory ended with:", err.Error())
}

func TestWriteReadZstd(Te *testing.T) {
	name := "../test/traj.ets"
	energies, frames := writeTestTraj(Te, name)
	readBack(Te, name, energies, frames)
}

func TestWriteReadGzip(Te *testing.T) {
	name := "../test/traj.etz"
	energies, frames := writeTestTraj(Te, name)
	readBack(Te, name, energies, frames)
}

func TestWriteReadFlate(Te *testing.T) {
	name := "../test/traj.etr"
	energies, frames := writeTestTraj(Te, name)
	readBack(Te, name, energies, frames)
}

func TestWriterChecks(Te *testing.T) {
	if _, err := NewWriter("../test/bad.ets", 0, nil); err == nil {
		Te.Errorf("writer accepted zero atoms")
	}
	W, err := NewWriter("../test/checks.ets", 2, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if err := W.WNext(nil, 0); err == nil {
		Te.Errorf("writer accepted nil coordinates")
	}
	wrong := v3.Zeros(3)
	if err := W.WNext(wrong, 0); err == nil {
		Te.Errorf("writer accepted a frame with the wrong atom count")
	}
	W.Close()
	ok := v3.Zeros(2)
	if err := W.WNext(ok, 0); err == nil {
		Te.Errorf("writer accepted a frame after Close")
	}
}
