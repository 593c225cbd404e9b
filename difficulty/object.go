package difficulty

import (
	"ppcalc/dotosu"
)

const (
	// PlayfieldWidth in osu!pixels; circle radius is derived from it.
	PlayfieldWidth = 512.0

	NormalizedRadius        = 52.0
	CircleSizeBuffThreshold = 30.0
	MinDeltaTime            = 50.0
)

// DifficultyObject is a hit object together with what the skills need to know
// about its relation to the previous one.
type DifficultyObject struct {
	Index int

	BaseObject dotosu.HitObject

	IsSpinner bool

	StartTime float64

	// DeltaTime is the start time difference to the previous object.
	DeltaTime float64

	// StrainTime is DeltaTime floored at MinDeltaTime.
	StrainTime float64

	// JumpDistance is the normalized distance from where the previous object
	// left the cursor. It is zero for spinners and for the object right after
	// one.
	JumpDistance float64

	AfterSpinner bool
}

// CircleRadius returns the hit circle radius for a circle size.
func CircleRadius(cs float64) float64 {
	return (PlayfieldWidth / 16) * (1 - 0.7*(cs-5)/5)
}

// ScalingFactor maps playfield distances to a radius independent scale.
func ScalingFactor(radius float64) float64 {
	scale := NormalizedRadius / radius
	if radius < CircleSizeBuffThreshold {
		scale *= 1 + min(CircleSizeBuffThreshold-radius, 5)/50
	}
	return scale
}

// CreateDifficultyObjects pairs every object after the first with its
// predecessor. The first object is returned too, with zero deltas.
func CreateDifficultyObjects(objects []dotosu.HitObject, cs float64) []*DifficultyObject {
	scale := ScalingFactor(CircleRadius(cs))

	diffObjects := make([]*DifficultyObject, 0, len(objects))
	for i, o := range objects {
		obj := &DifficultyObject{
			Index:      i,
			BaseObject: o,
			IsSpinner:  o.Kind() == dotosu.KindSpinner,
			StartTime:  o.StartTime(),
		}

		if i > 0 {
			last := objects[i-1]
			obj.DeltaTime = o.StartTime() - last.StartTime()
			obj.StrainTime = max(obj.DeltaTime, MinDeltaTime)
			obj.AfterSpinner = last.Kind() == dotosu.KindSpinner

			if !obj.IsSpinner && !obj.AfterSpinner {
				obj.JumpDistance = o.Pos().Scl(scale).Dst(last.EndPos().Scl(scale))
			}
		}

		diffObjects = append(diffObjects, obj)
	}
	return diffObjects
}
