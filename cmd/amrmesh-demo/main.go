package main

/*
amrmesh-demo builds a small checkerboard mesh, distributes it across a
simulated multi-rank network, exercises a fill-boundary halo exchange and
a coarse/fine flux-register reflux, and reports the results. It is a
demonstration driver, not a production AMR application: the mesh is set
by flags, and its initial data and the flux register's refinement ratio
(2) are fixed in code; nothing is read from a plotfile or checkpoint.
*/

import (
	"flag"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/parallelmesh/amrx/box"
	"github.com/parallelmesh/amrx/distmap"
	"github.com/parallelmesh/amrx/exchange"
	"github.com/parallelmesh/amrx/fab"
	"github.com/parallelmesh/amrx/fluxreg"
	"github.com/parallelmesh/amrx/ivec"
	"github.com/parallelmesh/amrx/xpdesc"
	"github.com/parallelmesh/amrx/xpdesc/simnet"
)

var (
	gridsPerAxis = flag.Int("grids-per-axis", 2, "Number of boxes along each axis of the checkerboard (total boxes = grids-per-axis^2)")
	boxSize      = flag.Int("box-size", 4, "Cells per box per axis")
	nranks       = flag.Int("nranks", 2, "Number of simulated ranks sharing the mesh")
	nghost       = flag.Int("nghost", 1, "Ghost cell width")
)

// checkerboard lays out gridsPerAxis^2 same-size boxes on a 2D grid with
// no gaps, the layout exchange/comtag's own tests use for abutting-tile
// fill-boundary cases.
func checkerboard(gridsPerAxis, boxSize int) []box.IndexBox {
	var boxes []box.IndexBox
	for gy := 0; gy < gridsPerAxis; gy++ {
		for gx := 0; gx < gridsPerAxis; gx++ {
			lo := ivec.New(2, gx*boxSize, gy*boxSize)
			hi := ivec.New(2, (gx+1)*boxSize-1, (gy+1)*boxSize-1)
			boxes = append(boxes, box.New(lo, hi, box.CellType(2)))
		}
	}
	return boxes
}

// runFillBoundaryDemo runs one rank per goroutine concurrently and
// collects the first failure across all of them with errors.Once,
// mirroring mark_duplicates.go's "e := errors.Once{}; e.Set(...);
// return e.Err()" shape rather than calling log.Fatalf from inside a
// goroutine.
func runFillBoundaryDemo(ba *box.BoxArray, dm *distmap.DistributionMap, net *simnet.Network) error {
	nghostVec := ivec.New(2, *nghost, *nghost)
	period := box.NonPeriodic(2)

	results := make([]float64, *nranks)
	errOnce := errors.Once{}
	done := make(chan int, *nranks)
	for r := 0; r < *nranks; r++ {
		go func(rank int) {
			defer func() { done <- rank }()
			pd := net.Rank(rank)
			mf, err := fab.NewFabArray[float64](ba, dm, 1, nghostVec, fab.DefaultFactory[float64]{}, rank)
			if err != nil {
				errOnce.Set(errors.E(err, fmt.Sprintf("amrmesh-demo: NewFabArray rank %d", rank)))
				return
			}
			defer mf.Release()
			for _, i := range mf.LocalIndices() {
				mf.Local(i).SetAll(float64(i))
			}
			if err := exchange.FillBoundary(mf, pd, nghostVec, period, false, false, 0, 1); err != nil {
				errOnce.Set(errors.E(err, fmt.Sprintf("amrmesh-demo: FillBoundary rank %d", rank)))
				return
			}

			var sum float64
			for _, i := range mf.LocalIndices() {
				f := mf.Local(i)
				box0 := f.Box
				for y := box0.Lo.V[1]; y <= box0.Hi.V[1]; y++ {
					for x := box0.Lo.V[0]; x <= box0.Hi.V[0]; x++ {
						sum += f.At(ivec.New(2, x, y), 0)
					}
				}
			}
			results[rank] = sum
		}(r)
	}
	for i := 0; i < *nranks; i++ {
		<-done
	}
	if err := errOnce.Err(); err != nil {
		return err
	}
	for r, s := range results {
		log.Printf("amrmesh-demo: rank %d ghost-inclusive checksum after FillBoundary = %v", r, s)
	}
	return nil
}

// runRefluxDemo builds a single-level-pair coarse/fine flux register,
// stores a fine flux, communicates it to the coarse side, and loads it
// back, matching spec.md §8 Scenario D's arithmetic on rank 0 only (the
// single-rank xpdesc.Single collaborator is enough for this step). Its
// steps run sequentially on one goroutine, so each error is wrapped and
// returned directly rather than collected with errors.Once, which earns
// its keep only once there is concurrent work to collect from (see
// runFillBoundaryDemo).
func runRefluxDemo() error {
	box0 := box.New(ivec.New(2, 0, 0), ivec.New(2, 3, 7), box.CellType(2))
	box1 := box.New(ivec.New(2, -4, 0), ivec.New(2, -1, 7), box.CellType(2))
	fba := box.NewBoxArray(box.CellType(2), []box.IndexBox{box0, box1})

	left := box.New(ivec.New(2, 0, 0), ivec.New(2, 1, 3), box.CellType(2))
	right := box.New(ivec.New(2, 2, 0), ivec.New(2, 3, 3), box.CellType(2))
	cba := box.NewBoxArray(box.CellType(2), []box.IndexBox{left, right})

	fdm := distmap.RoundRobin(2, 1)
	cdm := distmap.RoundRobin(2, 1)

	reg, err := fluxreg.Define[float64](fba, cba, fdm, cdm, box.NonPeriodic(2), box.NonPeriodic(2), 2, 1, 0)
	if err != nil {
		return errors.E(err, "amrmesh-demo: fluxreg.Define")
	}

	fineFlux := fab.New[float64](box.New(ivec.New(2, 0, 0), ivec.New(2, 7, 7), box.FaceType(2, 0)), 1)
	for y := 0; y <= 7; y++ {
		for x := 0; x <= 7; x++ {
			fineFlux.Set(ivec.New(2, x, y), 0, float64(y))
		}
	}

	if err := reg.Store(0, 0, fineFlux, 1.0); err != nil {
		return errors.E(err, "amrmesh-demo: fluxreg.Store")
	}
	pd := &xpdesc.Single{}
	if err := reg.Communicate(pd); err != nil {
		return errors.E(err, "amrmesh-demo: fluxreg.Communicate")
	}

	dest := fab.New[float64](box.New(ivec.New(2, 2, 0), ivec.New(2, 2, 3), box.FaceType(2, 0)), 1)
	if err := reg.Load(1, 0, dest, 1.0); err != nil {
		return errors.E(err, "amrmesh-demo: fluxreg.Load")
	}
	for j := 0; j <= 3; j++ {
		log.Printf("amrmesh-demo: refluxed coarse x-low face j=%d value=%v", j, dest.At(ivec.New(2, 2, j), 0))
	}
	return nil
}

func main() {
	flag.Parse()
	shutdown := grail.Init()
	defer shutdown()

	if *gridsPerAxis < 1 || *boxSize < 1 || *nranks < 1 {
		log.Fatalf("amrmesh-demo: grids-per-axis, box-size, and nranks must all be positive")
	}

	boxes := checkerboard(*gridsPerAxis, *boxSize)
	ba := box.NewBoxArray(box.CellType(2), boxes)
	dm := distmap.RoundRobin(ba.Len(), *nranks)

	xpdesc.Initialize(&xpdesc.Single{})
	defer xpdesc.Finalize()

	net := simnet.New(*nranks)
	fmt.Printf("amrmesh-demo: %d boxes of %dx%d cells across %d simulated ranks\n", ba.Len(), *boxSize, *boxSize, *nranks)
	if err := runFillBoundaryDemo(ba, dm, net); err != nil {
		log.Fatalf("%v", err)
	}
	if err := runRefluxDemo(); err != nil {
		log.Fatalf("%v", err)
	}
}
