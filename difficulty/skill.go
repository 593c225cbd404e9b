package difficulty

import (
	"math"
	"slices"
)

const (
	StrainStep  = 400.0
	DecayWeight = 0.9

	initialStrain = 1.0
	// empty sections recorded after a gap; later ones are below 1e-20
	maxGapSections = 128
)

// Skill accumulates a decaying strain over the object sequence and records
// the highest strain of every StrainStep long section.
type Skill struct {
	DecayBase     float64
	WeightScaling float64

	// SpacingWeightOf turns a normalized jump distance into a strain weight.
	SpacingWeightOf func(distance float64) float64

	CurrentStrain float64

	lastTime           float64
	currentSectionPeak float64
	currentSectionEnd  float64
	strainPeaks        []float64
	started            bool
}

func NewAimSkill() *Skill {
	return &Skill{
		DecayBase:       0.15,
		WeightScaling:   26.25,
		SpacingWeightOf: aimSpacingWeight,
	}
}

func NewSpeedSkill() *Skill {
	return &Skill{
		DecayBase:       0.3,
		WeightScaling:   1400,
		SpacingWeightOf: speedSpacingWeight,
	}
}

func aimSpacingWeight(distance float64) float64 {
	return math.Pow(distance, 0.99)
}

func speedSpacingWeight(distance float64) float64 {
	switch {
	case distance > 125:
		return 2.5
	case distance > 110:
		return 1.6 + 0.9*(distance-110)/15
	case distance > 90:
		return 1.2 + 0.4*(distance-90)/20
	case distance > 45:
		return 0.95 + 0.25*(distance-45)/45
	}
	return 0.95
}

func (skill *Skill) strainDecay(ms float64) float64 {
	return math.Pow(skill.DecayBase, ms/1000)
}

// Process moves the skill forward by one object.
func (skill *Skill) Process(current *DifficultyObject) {
	if !skill.started {
		skill.started = true
		skill.currentSectionEnd = math.Ceil(current.StartTime/StrainStep) * StrainStep
		skill.CurrentStrain = initialStrain
		skill.lastTime = current.StartTime
		skill.currentSectionPeak = skill.CurrentStrain
		return
	}

	if current.StartTime > skill.currentSectionEnd {
		sections := math.Ceil((current.StartTime - skill.currentSectionEnd) / StrainStep)
		kept := min(sections, maxGapSections)
		for i := 0; i < int(kept); i++ {
			skill.saveCurrentPeak()
			skill.currentSectionPeak = skill.CurrentStrain * skill.strainDecay(skill.currentSectionEnd-skill.lastTime)
			skill.currentSectionEnd += StrainStep
		}
		// peaks of the remaining empty sections have decayed to nothing
		if sections > kept {
			skill.currentSectionEnd += (sections - kept) * StrainStep
			skill.currentSectionPeak = skill.CurrentStrain * skill.strainDecay(skill.currentSectionEnd-StrainStep-skill.lastTime)
		}
	}

	if current.IsSpinner {
		skill.CurrentStrain = initialStrain
	} else {
		skill.CurrentStrain = skill.CurrentStrain*skill.strainDecay(current.DeltaTime) + skill.strainValueOf(current)
	}
	skill.lastTime = current.StartTime

	skill.currentSectionPeak = max(skill.currentSectionPeak, skill.CurrentStrain)
}

func (skill *Skill) strainValueOf(current *DifficultyObject) float64 {
	return skill.SpacingWeightOf(current.JumpDistance) * skill.WeightScaling / current.StrainTime
}

func (skill *Skill) saveCurrentPeak() {
	skill.strainPeaks = append(skill.strainPeaks, skill.currentSectionPeak)
}

// GetCurrentStrainPeaks returns the section peaks including the unfinished
// last section.
func (skill *Skill) GetCurrentStrainPeaks() []float64 {
	peaks := slices.Clone(skill.strainPeaks)
	if skill.started {
		peaks = append(peaks, skill.currentSectionPeak)
	}
	return peaks
}

// DifficultyValue sums section peaks from highest to lowest, each weighted
// DecayWeight times less than the one before.
func (skill *Skill) DifficultyValue() float64 {
	peaks := skill.GetCurrentStrainPeaks()
	slices.SortFunc(peaks, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})

	diff := 0.0
	weight := 1.0
	for _, strain := range peaks {
		diff += strain * weight
		weight *= DecayWeight
	}
	return diff
}
