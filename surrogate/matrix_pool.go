package surrogate

import "gonum.org/v1/gonum/mat"

// matrixPool reuses symmetric kernel-matrix allocations across fits.
// The GP refits on a history that grows by one point per round, so the
// pool is keyed by size to avoid handing back stale smaller matrices.
type matrixPool struct {
	sym map[int][]*mat.SymDense
}

func newMatrixPool() *matrixPool {
	return &matrixPool{sym: make(map[int][]*mat.SymDense)}
}

func (p *matrixPool) getSym(n int) *mat.SymDense {
	if free := p.sym[n]; len(free) > 0 {
		m := free[len(free)-1]
		p.sym[n] = free[:len(free)-1]
		m.Zero()
		return m
	}
	return mat.NewSymDense(n, nil)
}

func (p *matrixPool) putSym(m *mat.SymDense) {
	n := m.SymmetricDim()
	p.sym[n] = append(p.sym[n], m)
}
