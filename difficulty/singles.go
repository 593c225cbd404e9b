package difficulty

// AimSingleSpacing is the normalized jump distance above which a pair counts
// as an aim single.
const AimSingleSpacing = 125.0

// DefaultSingletapThreshold in milliseconds.
const DefaultSingletapThreshold = 125.0

// Singles counts pairs of consecutive non-spinner objects that can be played
// with one tap each.
type Singles struct {
	Aim       int
	Timing    int
	Threshold int
}

func CountSingles(objects []*DifficultyObject, threshold float64) Singles {
	var s Singles
	for _, o := range objects {
		if o.Index == 0 || o.IsSpinner || o.AfterSpinner {
			continue
		}
		if o.JumpDistance > AimSingleSpacing {
			s.Aim++
		}
		if o.DeltaTime >= threshold {
			s.Threshold++
			if o.JumpDistance <= AimSingleSpacing {
				s.Timing++
			}
		}
	}
	return s
}
