package simulation

// pipeline models a fixed-latency wire segment between two timed slots as
// a shift register: one value enters and one value leaves per cycle, and a
// value written upstream appears downstream stageCount cycles later. Until
// the register fills, bubbles (zero values) are emitted downstream.
type pipeline[V any] struct {
	stageCount int
	inFlight   []V
}

// tryPropagation advances the register for the current cycle. It reports
// false while the upstream slot has not been driven this cycle; the caller
// retries on a later tick. Once the downstream slot is stamped for this
// cycle the propagation is complete and further calls are no-ops.
func (p *pipeline[V]) tryPropagation(cycle int64, from, to *Timed[V]) bool {
	if from.Cycle != cycle {
		return false
	}

	if to.Cycle == cycle {
		return true
	}

	p.inFlight = append(p.inFlight, from.Value)

	if len(p.inFlight) > p.stageCount {
		to.Value = p.inFlight[0]
		p.inFlight = p.inFlight[1:]
	} else {
		var bubble V
		to.Value = bubble
	}
	to.Cycle = cycle

	return true
}
