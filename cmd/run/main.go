package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/fumin/qlattice"
	"github.com/fumin/qlattice/mat"
	"github.com/fumin/qlattice/mps"
)

var (
	jx      = flag.Float64("jx", 0.4, "compass coupling along rows")
	jy      = flag.Float64("jy", 1.3, "compass coupling along columns")
	hop     = flag.Float64("t", 1, "ladder hopping")
	onsite  = flag.Float64("u", 1.3, "ladder on-site interaction")
	density = flag.Float64("v", -0.4, "ladder diagonal density interaction")
	lowest  = flag.Int("n", 20, "number of lowest eigenvalues to print")
	corner  = flag.Int("corner", 4, "size of the leading corner of the Hamiltonian to print")
	disk    = flag.Bool("disk", false, "also assemble the compass Hamiltonian on disk")
	dmrg    = flag.Bool("dmrg", false, "also search for the compass ground state with DMRG")
	bondDim = flag.Int("bond", 16, "DMRG bond dimension")
	runDir  = flag.String("d", filepath.Join("runs", "qlattice"), "run directory for on-disk matrices")
)

func compass() error {
	res, err := qlattice.CrossCheckCompass(*jx, *jy)
	if err != nil {
		return errors.Wrap(err, "")
	}
	fmt.Printf("compass jx %g jy %g\n", *jx, *jy)
	printResult(res)

	if *disk {
		if err := compassDisk(res.MPO); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if *dmrg {
		ws, err := mps.Compass(*jx, *jy)
		if err != nil {
			return errors.Wrap(err, "")
		}
		opt := mps.NewSearchGroundStateOptions().Tol(1e-4).Verbose(true)
		e0, err := mps.GroundEnergy(ws, *bondDim, opt)
		if err != nil {
			return errors.Wrap(err, "")
		}
		fmt.Printf("dmrg ground energy %f, deviation %g\n", e0, math.Abs(float64(e0)-res.EDSpectrum[0]))
	}
	return nil
}

func compassDisk(expected *mat.COO) error {
	if err := os.MkdirAll(*runDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}
	h, err := mat.NewDiskMatrix(filepath.Join(*runDir, "h.db"))
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer h.Close()
	buf, err := mat.NewDiskMatrix(filepath.Join(*runDir, "buf.db"))
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer buf.Close()

	if err := qlattice.SpinKron(h, buf, qlattice.CompassSites, qlattice.CompassTerms(*jx, *jy)); err != nil {
		return errors.Wrap(err, "")
	}
	if !h.COO().EqualApprox(expected, qlattice.MatrixTol) {
		return errors.Wrap(qlattice.ErrMismatch, "disk")
	}
	fmt.Printf("disk %dx%d, %d non zeros, equal to mpo\n", h.Rows(), h.Cols(), h.NumNonZero())
	return nil
}

func ladder() error {
	res, err := qlattice.CrossCheckLadder(*hop, *onsite, *density)
	if err != nil {
		return errors.Wrap(err, "")
	}
	fmt.Printf("ladder t %g u %g v %g\n", *hop, *onsite, *density)
	printResult(res)
	return nil
}

func printResult(res qlattice.Result) {
	fmt.Printf("mpo %dx%d, ed %dx%d\n", res.MPO.Rows(), res.MPO.Cols(), res.ED.Rows(), res.ED.Cols())
	printCorner(res.MPO)
	mpoLowest, edLowest := qlattice.Lowest(res.MPOSpectrum, *lowest), qlattice.Lowest(res.EDSpectrum, *lowest)
	fmt.Printf("%4s %20s %20s\n", "i", "mpo", "ed")
	for i, v := range mpoLowest {
		fmt.Printf("%4d %20.12f %20.12f\n", i, v, edLowest[i])
	}
	fmt.Printf("cross check ok, spectra within %g\n", qlattice.SpectrumTol)
}

func printCorner(m *mat.COO) {
	n := max(0, min(*corner, m.Rows()))
	if n == 0 {
		return
	}
	d := m.Slice([2]int{0, n}, [2]int{0, n}).CDense()
	for i := range n {
		for j := range n {
			fmt.Printf(" %12s", mat.FormatNumpy(d.At(i, j)))
		}
		fmt.Printf("\n")
	}
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	if err := compass(); err != nil {
		return errors.Wrap(err, "compass")
	}
	if err := ladder(); err != nil {
		return errors.Wrap(err, "ladder")
	}
	return nil
}
