package poseidon2

import (
	"context"
	"errors"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the number of pairs in a tree level below which the
// level is hashed on the calling goroutine.
const parallelThreshold = 64

// Sum folds the values into a single element: acc = Compress(acc, v), starting from zero.
func (e *Engine) Sum(values ...fr.Element) fr.Element {
	var acc fr.Element
	for _, v := range values {
		acc = e.Compress(acc, v)
	}
	return acc
}

// MerkleRoot hashes the leaves pairwise into a binary tree. A trailing node
// without a sibling is promoted to the next level unchanged.
func (e *Engine) MerkleRoot(ctx context.Context, leaves []fr.Element) (fr.Element, error) {
	if len(leaves) == 0 {
		return fr.Element{}, errors.New("poseidon2: need at least 1 leaf")
	}

	level := make([]fr.Element, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if err := ctx.Err(); err != nil {
			return fr.Element{}, err
		}
		pairs := len(level) / 2
		next := make([]fr.Element, (len(level)+1)/2)
		if pairs < parallelThreshold {
			for i := range pairs {
				next[i] = e.Compress(level[2*i], level[2*i+1])
			}
		} else {
			g, gctx := errgroup.WithContext(ctx)
			workers := runtime.GOMAXPROCS(0)
			chunk := (pairs + workers - 1) / workers
			for start := 0; start < pairs; start += chunk {
				end := min(start+chunk, pairs)
				g.Go(func() error {
					for i := start; i < end; i++ {
						if i%parallelThreshold == 0 {
							if err := gctx.Err(); err != nil {
								return err
							}
						}
						next[i] = e.Compress(level[2*i], level[2*i+1])
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return fr.Element{}, err
			}
		}
		if len(level)%2 == 1 {
			next[pairs] = level[len(level)-1]
		}
		level = next
	}
	return level[0], nil
}
