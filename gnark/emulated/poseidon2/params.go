package poseidon2

import (
	"math/big"

	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/emulated/emparams"

	"github.com/vocdoni/poseidon2/internal/params"
)

// FrParams defines the emulated parameters for the BLS12-381 scalar field.
type FrParams = emparams.BLS12381Fr

// roundConstants turns the default table into emulated constants.
func roundConstants(f *emulated.Field[FrParams]) (params.Schedule, [][]*emulated.Element[FrParams], error) {
	table, err := params.DefaultTable()
	if err != nil {
		return params.Schedule{}, nil, err
	}
	rc := make([][]*emulated.Element[FrParams], len(table.Rows))
	for r, row := range table.Rows {
		rc[r] = make([]*emulated.Element[FrParams], len(row))
		for i := range row {
			rc[r][i] = f.NewElement(row[i].BigInt(new(big.Int)))
		}
	}
	return table.Schedule, rc, nil
}
