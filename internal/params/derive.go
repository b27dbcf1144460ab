package params

import (
	"hash"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/sha3"
)

// Deriver yields round constants from a Keccak-256 hash chain.
//
// The chain starts at Keccak256(Keccak256(seed)): the seed digest is hashed
// once more before the first constant is read. Each constant is the current
// digest read as a big-endian integer and reduced modulo the field order; the
// digest is then hashed again for the next constant.
type Deriver struct {
	h   hash.Hash
	cur []byte
}

// NewDeriver starts a hash chain for the given seed.
func NewDeriver(seed string) *Deriver {
	d := &Deriver{h: sha3.NewLegacyKeccak256()}
	_, _ = d.h.Write([]byte(seed))
	d.cur = d.h.Sum(nil)
	d.advance()
	return d
}

func (d *Deriver) advance() {
	d.h.Reset()
	_, _ = d.h.Write(d.cur)
	d.cur = d.h.Sum(nil)
}

// Next returns the next constant and advances the chain.
func (d *Deriver) Next() fr.Element {
	var e fr.Element
	e.SetBytes(d.cur)
	d.advance()
	return e
}

// Derive computes the round constant table for the schedule.
func Derive(s Schedule) (*Table, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	d := NewDeriver(s.String())
	t := &Table{
		Schedule: s,
		Rows:     make([][]fr.Element, s.Rounds()),
	}
	for r := range t.Rows {
		row := make([]fr.Element, s.RowWidth(r))
		for i := range row {
			row[i] = d.Next()
		}
		t.Rows[r] = row
	}
	return t, nil
}

// DefaultTable returns the table for Default, derived once per process.
var DefaultTable = sync.OnceValues(func() (*Table, error) {
	return Derive(Default)
})
