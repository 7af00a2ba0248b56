package grammar

import (
	"encoding/binary"
	"fmt"
)

// productionNumStart is the number of the production `S' → S`.
const productionNumStart = 0

type productionID string

func genProductionID(lhs int, rhs []int) productionID {
	b := make([]byte, 0, (len(rhs)+1)*binary.MaxVarintLen64)
	b = binary.AppendVarint(b, int64(lhs))
	for _, sym := range rhs {
		b = binary.AppendVarint(b, int64(sym))
	}
	return productionID(b)
}

type production struct {
	id     productionID
	num    int
	lhs    int
	rhs    []int
	rhsLen int
}

func newProduction(lhs int, rhs []int) *production {
	return &production{
		id:     genProductionID(lhs, rhs),
		lhs:    lhs,
		rhs:    rhs,
		rhsLen: len(rhs),
	}
}

func (p *production) String() string {
	return fmt.Sprintf("%v: %v → %v", p.num, p.lhs, p.rhs)
}

func (p *production) equals(q *production) bool {
	return q.id == p.id
}

func (p *production) isEmpty() bool {
	return p.rhsLen == 0
}

type productionSet struct {
	prods     []*production
	lhs2Prods map[int][]*production
	id2Prod   map[productionID]*production
}

func newProductionSet() *productionSet {
	return &productionSet{
		lhs2Prods: map[int][]*production{},
		id2Prod:   map[productionID]*production{},
	}
}

// append numbers prod in the order of appearance. When the set already contains a production equal to prod,
// append returns the existing one and false.
func (ps *productionSet) append(prod *production) (*production, bool) {
	if dup, ok := ps.id2Prod[prod.id]; ok {
		return dup, false
	}

	prod.num = len(ps.prods)
	ps.prods = append(ps.prods, prod)
	ps.lhs2Prods[prod.lhs] = append(ps.lhs2Prods[prod.lhs], prod)
	ps.id2Prod[prod.id] = prod

	return prod, true
}

func (ps *productionSet) findByNum(num int) (*production, bool) {
	if num < 0 || num >= len(ps.prods) {
		return nil, false
	}
	return ps.prods[num], true
}

func (ps *productionSet) findByLHS(lhs int) ([]*production, bool) {
	prods, ok := ps.lhs2Prods[lhs]
	return prods, ok
}

func (ps *productionSet) getAllProductions() []*production {
	return ps.prods
}
