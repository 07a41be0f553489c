/*
 * engine.go, part of goJDFTx.
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

/*Package engine drives the external JDFTx program. The rest of goJDFTx only
sees the Engine interface, so another DFT code can be slotted in as long as
it speaks the same handful of operations. Everything on this boundary is in
atomic units (Bohr, Hartree) and in the engine's species-grouped ion order;
the translation to caller units and caller ordering happens one level up.

All calls are synchronous and blocking. There is no timeout and no
cancellation: a minimization runs to completion or the call fails.
*/
package engine

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	v3 "github.com/rmera/gochem/v3"
)

//Engine is the set of operations goJDFTx needs from a DFT code. Ions are
//registered one by one, in the order the engine is to keep them, before the
//one-time Setup call. After Setup only positions may change, and only
//through UpdateIonicPositions.
type Engine interface {

	//AddIon registers one ion, with its position in Bohr and an optional
	//pseudopotential identifier (empty means the configured default set).
	//Calling AddIon after Setup is an error.
	AddIon(symbol string, pos [3]float64, pseudo string) error

	//SetCell sets the lattice vectors, one per row, in Bohr.
	SetCell(cell *v3.Matrix) error

	//Setup initializes the engine once all ions are registered. It can be
	//expensive. No ions or cell changes are accepted afterwards.
	Setup() error

	//UpdateIonicPositions displaces the ions by delta (engine order, Bohr).
	UpdateIonicPositions(delta *v3.Matrix) error

	//RunElecMin runs one electronic minimization at fixed ionic positions.
	RunElecMin() error

	//TotalEnergy returns the total energy of the last minimization, in Hartree.
	TotalEnergy() (float64, error)

	//Forces returns the ionic forces of the last minimization, one row per
	//ion in engine order, in Hartree/Bohr.
	Forces() (*v3.Matrix, error)

	//IonicPositions returns the current ionic positions, one row per ion
	//in engine order, in Bohr.
	IonicPositions() (*v3.Matrix, error)
}

//Config carries the engine-side options. goJDFTx passes these through
//without interpreting them.
type Config struct {
	GPU       bool     //use the jdftx_gpu executable
	Command   string   //overrides the executable lookup if non-empty
	Cores     int      //worker-count hint (-c flag); 0 lets the engine decide
	MPILaunch string   //launcher prefix for the communication group, e.g. "mpirun -np 4"
	KPoints   [3]int   //k-point folding; zero value means Gamma only
	Cutoff    float64  //plane-wave cutoff in Hartree; 0 keeps the engine default
	PseudoDir string   //pseudopotential directory; empty triggers the process-wide lookup
	PseudoSet string   //filename pattern within PseudoDir, with $ID for the species
	Extra     []string //verbatim input commands, appended as given
	WorkDir   string   //where input/output files go; empty means the current directory
	Name      string   //job name for input/output files
	Verbosity int
}

//New returns an Engine backed by the JDFTx executable selected by C: the
//CPU binary, or the GPU one if C.GPU is set. A missing executable is a
//configuration error right here; there is no silent fallback from one
//backend to the other.
func New(C *Config) (Engine, error) {
	if C == nil {
		C = new(Config)
	}
	command := C.Command
	if command == "" {
		var err error
		command, err = findExecutable(C.GPU)
		if err != nil {
			return nil, err
		}
	}
	pseudos := C.PseudoDir
	if pseudos == "" {
		pseudos = findPseudoDir()
	}
	name := C.Name
	if name == "" {
		name = "jdft"
	}
	J := &JDFTx{
		command:   command,
		name:      name,
		dir:       C.WorkDir,
		pseudoDir: pseudos,
		cfg:       C,
	}
	return J, nil
}

//The executable and pseudopotential lookups are process-wide state, resolved
//exactly once no matter how many sessions are constructed, concurrently or not.
var (
	cpuOnce, gpuOnce, pseudoOnce sync.Once
	cpuPath, gpuPath, pseudoPath string
	cpuErr, gpuErr               error
)

func findExecutable(gpu bool) (string, error) {
	lookup := func(binary string) (string, error) {
		if home := os.Getenv("JDFTX_HOME"); home != "" {
			candidate := filepath.Join(home, binary)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		path, err := exec.LookPath(binary)
		if err != nil {
			return "", Error{fmt.Sprintf("%s executable not found: %s", binary, err.Error()), "", []string{"findExecutable"}, true}
		}
		return path, nil
	}
	if gpu {
		gpuOnce.Do(func() { gpuPath, gpuErr = lookup("jdftx_gpu") })
		return gpuPath, gpuErr
	}
	cpuOnce.Do(func() { cpuPath, cpuErr = lookup("jdftx") })
	return cpuPath, cpuErr
}

func findPseudoDir() string {
	pseudoOnce.Do(func() {
		if dir := os.Getenv("JDFTX_PSEUDOPOTENTIALS"); dir != "" {
			pseudoPath = dir
			return
		}
		//where the stock installation puts them
		pseudoPath = "/usr/local/jdftx/pseudopotentials"
	})
	return pseudoPath
}

//Error implements the goChem error interface for engine-side failures.
type Error struct {
	message  string
	name     string //the job the failing engine was running, if any
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.name == "" {
		return fmt.Sprintf("goJDFTx/engine error: %s", err.message)
	}
	return fmt.Sprintf("goJDFTx/engine error in job %s: %s", err.name, err.message)
}

//Decorate adds the dec string to the decoration slice of strings of the error,
//and returns the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical returns whether the error can be safely ignored.
func (err Error) Critical() bool { return err.critical }
