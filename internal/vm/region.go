package vm

// region tracks every heap allocation a call frame made, in allocation
// order, so the frame's exit (a normal Return, a bare Ret, or a
// PropagateError unwind) can release them deterministically in reverse
// order. One region per
// call frame, not per lexical block: block-level region nesting is
// the memory checker's static concern, already enforced before the
// program ever reaches LIR; the runtime only needs the coarser
// function-exit boundary to honor release ordering.
type region struct {
	allocs []Object
}

func (r *region) track(o Object) {
	if o != nil {
		r.allocs = append(r.allocs, o)
	}
}

// release runs in reverse allocation order, the mirror image of
// construction, and is the only place Releaser.Release is invoked.
func (r *region) release() {
	for i := len(r.allocs) - 1; i >= 0; i-- {
		if rel, ok := r.allocs[i].(Releaser); ok {
			rel.Release()
		}
	}
	r.allocs = nil
}
