/*
 * evtraj.go, part of goJDFTx.
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

/*Package evtraj records a sequence of evaluated geometries, with their
energies, as a compressed text trajectory. One file holds an optional
key=value header, the atom count, and then one block per evaluation: the
energy, the coordinates (fixed-point, one atom per line) and a terminator
carrying the box vectors when there are any.

The compressor is picked from the last letter of the filename: 'z' means
gzip, 'r' means flate, anything else (the .ets extension is the usual one)
means zstd. The reader implements the goChem Traj interface, so a recorded
trajectory can be fed to any analysis that takes one.
*/
package evtraj

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/gochem/v3"
)

//Writer appends evaluation frames to a compressed trajectory file.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	natoms    int
	filename  string
	writeable bool
	prec      int
}

//NewWriter creates a trajectory for natoms atoms in the named file. The
//header map, if given, is written as key=value lines before the frames;
//a "prec" key sets the number of decimals kept for each coordinate
//(the default is 4).
func NewWriter(name string, natoms int, header map[string]string) (*Writer, error) {
	if natoms <= 0 {
		return nil, Error{"a trajectory needs at least one atom", name, []string{"NewWriter"}, true}
	}
	W := new(Writer)
	var err error
	W.f, err = os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"os.Create", "NewWriter"}, true}
	}
	W.h, err = newCompressor(W.f, name)
	if err != nil {
		W.f.Close()
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	W.natoms = natoms
	W.filename = name
	W.writeable = true
	W.prec = 4
	if header != nil {
		if p, ok := header["prec"]; ok {
			prec, err := strconv.Atoi(p)
			if err == nil && prec > 0 {
				W.prec = prec
			}
		}
		for k, v := range header {
			fmt.Fprintf(W.h, "%s=%v\n", k, v)
		}
	}
	fmt.Fprintf(W.h, "** %d\n", W.natoms)
	return W, nil
}

//WNext writes one frame: the energy (eV), the coordinates (A) and, if
//given, the 9 components of the box vectors.
func (W *Writer) WNext(coord *v3.Matrix, energy float64, box ...[]float64) error {
	if !W.writeable {
		return Error{"attempted to write to a closed trajectory", W.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{"nil coordinates given", W.filename, []string{"WNext"}, true}
	}
	if v := coord.NVecs(); v != W.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, W.natoms), W.filename, []string{"WNext"}, true}
	}
	fmt.Fprintf(W.h, "# energy %.10f\n", energy)
	p := math.Pow(10, float64(W.prec))
	for i := 0; i < W.natoms; i++ {
		fmt.Fprintf(W.h, "%d %d %d\n",
			int(math.RoundToEven(coord.At(i, 0)*p)),
			int(math.RoundToEven(coord.At(i, 1)*p)),
			int(math.RoundToEven(coord.At(i, 2)*p)))
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		fmt.Fprintf(W.h, "* %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f\n",
			b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
	} else {
		fmt.Fprintf(W.h, "*\n")
	}
	return nil
}

//Len returns the number of atoms per frame.
func (W *Writer) Len() int { return W.natoms }

//Close flushes and closes the trajectory. The Writer is unusable afterwards.
func (W *Writer) Close() {
	if W == nil || !W.writeable {
		return
	}
	W.h.Close()
	W.f.Close()
	W.writeable = false
}

//Reader reads back a trajectory written by Writer.
type Reader struct {
	f        *os.File
	z        io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	readable bool
	energy   float64
}

//zstd.Decoder does not implement io.ReadCloser by itself.
type zstdCloser struct {
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

//NewReader opens the named trajectory and returns a reader plus the
//key=value header the file was written with.
func NewReader(name string) (*Reader, map[string]string, error) {
	R := new(Reader)
	var err error
	R.f, err = os.Open(name)
	if err != nil {
		return nil, nil, Error{err.Error(), name, []string{"os.Open", "NewReader"}, true}
	}
	R.z, err = newDecompressor(R.f, name)
	if err != nil {
		R.f.Close()
		return nil, nil, Error{err.Error(), name, []string{"NewReader"}, true}
	}
	R.h = bufio.NewReader(R.z)
	R.filename = name
	R.prec = 4
	header := map[string]string{}
	for {
		line, err := R.h.ReadString('\n')
		if err != nil {
			R.Close()
			return nil, nil, Error{"trajectory ends before its atom count: " + err.Error(), name, []string{"NewReader"}, true}
		}
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "** ") {
			R.natoms, err = strconv.Atoi(strings.Fields(line)[1])
			if err != nil || R.natoms <= 0 {
				R.Close()
				return nil, nil, Error{"malformed atom count: " + line, name, []string{"NewReader"}, true}
			}
			break
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) == 2 {
			header[kv[0]] = kv[1]
			if kv[0] == "prec" {
				if prec, err := strconv.Atoi(kv[1]); err == nil && prec > 0 {
					R.prec = prec
				}
			}
		}
	}
	R.readable = true
	return R, header, nil
}

//Readable returns whether the trajectory can still be read from.
func (R *Reader) Readable() bool { return R.readable }

//Len returns the number of atoms per frame.
func (R *Reader) Len() int { return R.natoms }

//Energy returns the energy of the last frame read by Next, in eV.
func (R *Reader) Energy() float64 { return R.energy }

//Next reads the next frame into output (which may be nil to skip the frame)
//and fills box, if given, with the box vectors present in the frame.
//The error at the end of the trajectory is a LastFrameError, as in the
//goChem trajectory readers, and is not critical.
func (R *Reader) Next(output *v3.Matrix, box ...[]float64) error {
	if !R.readable {
		return Error{"attempted to read from a closed trajectory", R.filename, []string{"Next"}, true}
	}
	line, err := R.h.ReadString('\n')
	if err == io.EOF {
		R.Close()
		return lastFrameError{filename: R.filename, deco: []string{"Next"}}
	}
	if err != nil {
		return Error{err.Error(), R.filename, []string{"Next"}, true}
	}
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "#" || fields[1] != "energy" {
		return Error{"malformed frame header: " + strings.TrimSpace(line), R.filename, []string{"Next"}, true}
	}
	R.energy, err = strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Error{"malformed frame energy: " + err.Error(), R.filename, []string{"Next"}, true}
	}
	p := math.Pow(10, float64(R.prec))
	for i := 0; i < R.natoms; i++ {
		line, err := R.h.ReadString('\n')
		if err != nil {
			return Error{"truncated frame: " + err.Error(), R.filename, []string{"Next"}, true}
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return Error{"malformed coordinate line: " + strings.TrimSpace(line), R.filename, []string{"Next"}, true}
		}
		for k := 0; k < 3; k++ {
			v, err := strconv.Atoi(fields[k])
			if err != nil {
				return Error{"malformed coordinate: " + err.Error(), R.filename, []string{"Next"}, true}
			}
			if output != nil {
				output.Set(i, k, float64(v)/p)
			}
		}
	}
	line, err = R.h.ReadString('\n')
	if err != nil && err != io.EOF {
		return Error{err.Error(), R.filename, []string{"Next"}, true}
	}
	fields = strings.Fields(line)
	if len(fields) == 0 || fields[0] != "*" {
		return Error{"missing frame terminator", R.filename, []string{"Next"}, true}
	}
	if len(fields) >= 10 && len(box) > 0 && len(box[0]) >= 9 {
		for k := 0; k < 9; k++ {
			box[0][k], err = strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				return Error{"malformed box: " + err.Error(), R.filename, []string{"Next"}, true}
			}
		}
	}
	return nil
}

//Close closes the trajectory. The Reader is unusable afterwards.
func (R *Reader) Close() {
	if R == nil || R.f == nil {
		return
	}
	if R.z != nil {
		R.z.Close()
		R.z = nil
	}
	R.f.Close()
	R.f = nil
	R.readable = false
}

func newCompressor(w io.Writer, name string) (io.WriteCloser, error) {
	switch name[len(name)-1] {
	case 'z':
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case 'r':
		return flate.NewWriter(w, flate.BestCompression)
	default:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
}

func newDecompressor(r io.Reader, name string) (io.ReadCloser, error) {
	switch name[len(name)-1] {
	case 'z':
		return gzip.NewReader(r)
	case 'r':
		return flate.NewReader(r), nil
	default:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdCloser{d}, nil
	}
}

//Error implements the goChem trajectory error interface.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("evtraj file %s error: %s", err.filename, err.message)
}

//Decorate adds the dec string to the decoration slice of strings of the error,
//and returns the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//FileName returns the file the failing trajectory was associated with.
func (err Error) FileName() string { return err.filename }

//Format returns the format of the file associated with the error.
func (err Error) Format() string { return "evtraj" }

//Critical returns whether the error can be safely ignored.
func (err Error) Critical() bool { return err.critical }

//lastFrameError marks the harmless end-of-trajectory condition so callers
//can filter it with a type switch, goChem style.
type lastFrameError struct {
	deco     []string
	filename string
}

func (err lastFrameError) NormalLastFrameTermination() {}

func (err lastFrameError) Error() string { return "EOF" }

func (err lastFrameError) FileName() string { return err.filename }

func (err lastFrameError) Format() string { return "evtraj" }

func (err lastFrameError) Critical() bool { return false }

func (err lastFrameError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}
