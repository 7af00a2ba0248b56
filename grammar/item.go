package grammar

import (
	"encoding/binary"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// lrItem is an LR(0) item.
//
// E → E + T
//
// Dot | Dotted Symbol | Item
// ----+---------------+------------
// 0   | E             | E →・E + T
// 1   | +             | E → E・+ T
// 2   | T             | E → E +・T
// 3   | Nil           | E → E + T・
type lrItem struct {
	prod int
	dot  int
}

func (item lrItem) String() string {
	return fmt.Sprintf("(%v, %v)", item.prod, item.dot)
}

func lessItem(a, b lrItem) bool {
	if a.prod != b.prod {
		return a.prod < b.prod
	}
	return a.dot < b.dot
}

// kernelID identifies a kernel by its exact content, so two kernels have the same ID if and only if they
// have the same items.
type kernelID string

// genKernelID encodes items, which must be sorted by lessItem.
func genKernelID(items []lrItem) kernelID {
	b := make([]byte, 0, len(items)*4)
	for _, item := range items {
		b = binary.AppendUvarint(b, uint64(item.prod))
		b = binary.AppendUvarint(b, uint64(item.dot))
	}
	return kernelID(b)
}

const stateNumInitial = 0

type lrState struct {
	num    int
	id     kernelID
	kernel []lrItem

	// inbound and outbound hold transition numbers. outbound is sorted by symbol.
	inbound  []int
	outbound []int

	// reducible holds the productions whose kernel item has the dot at the end.
	reducible []int

	// emptyProds holds the productions like `p → ε` in the closure. Their items `p → ・ε` are reducible
	// but never appear in a kernel, so they need to be recorded separately.
	//
	// s' → s
	// s → A | ε
	//
	// CLOSURE({s' → ・s}) contains `s → ・ε`, but the kernel {s' → ・s} doesn't.
	emptyProds []int
}

type transition struct {
	num  int
	from int
	to   int
	sym  int

	// readSet is populated for non-terminal transitions only. It holds positions in cfg.terminals.
	readSet *bitset.BitSet
}

func (t *transition) String() string {
	return fmt.Sprintf("%v --%v--> %v", t.from, t.sym, t.to)
}
