package dotosu

import "math"

// computeSliderData fills End, Tail and Combo for every slider. Timing points
// and hit objects must already be sorted.
func computeSliderData(beatmap *Beatmap) error {
	timingPoints := beatmap.TimingPoints
	timingPointIndex := 0

	var lastRedLine *TimingPoint
	var lastGreenLine *TimingPoint

	// objects before the first red line use it anyway
	for i := range timingPoints {
		if timingPoints[i].Uninherited {
			lastRedLine = &timingPoints[i]
			break
		}
	}

	for _, object := range beatmap.HitObjects {
		for timingPointIndex < len(timingPoints) && timingPoints[timingPointIndex].Time <= object.StartTime() {
			timingPoint := &timingPoints[timingPointIndex]
			timingPointIndex++

			if timingPoint.Uninherited {
				lastRedLine = timingPoint
				lastGreenLine = nil
			} else {
				lastGreenLine = timingPoint
			}
		}

		slider, ok := object.(*Slider)
		if !ok {
			continue
		}
		if lastRedLine == nil {
			return ErrNoTiming
		}

		sv := 1.0
		if lastGreenLine != nil {
			sv = lastGreenLine.SliderVelocity
		}
		fillSlider(slider, beatmap.Difficulty, beatmap.FormatVersion, lastRedLine.BeatLength, sv)
	}
	return nil
}

func fillSlider(slider *Slider, d Difficulty, formatVersion int, beatLength, sv float64) {
	poly := ApproximateSliderPath(slider.Path)
	visualLength := slider.Length
	if visualLength <= 0 {
		visualLength = PathLength(poly)
	}

	pxPerBeat := d.SliderMultiplier * 100 * sv
	spanDuration := 0.0
	if pxPerBeat > 0 {
		spanDuration = visualLength / pxPerBeat * beatLength
	}
	slider.End = slider.Time + spanDuration*float64(slider.Slides)

	if slider.Slides%2 == 0 {
		slider.Tail = slider.Position
	} else {
		slider.Tail = PositionAt(poly, visualLength)
	}

	// legacy files count ticks as if every slider ran at base velocity
	tickPxPerBeat := pxPerBeat
	if formatVersion < 8 {
		tickPxPerBeat /= sv
	}
	slides := float64(slider.Slides)
	numBeats := visualLength * slides / tickPxPerBeat
	ticks := int(math.Ceil((numBeats-0.1)/slides*d.SliderTickRate)) - 1
	ticks *= slider.Slides
	ticks += slider.Slides + 1
	slider.Combo = max(0, ticks)
}

func countStats(beatmap *Beatmap) Stats {
	var s Stats
	for _, object := range beatmap.HitObjects {
		s.Objects++
		switch o := object.(type) {
		case *Circle:
			s.Circles++
			s.MaxCombo++
		case *Slider:
			s.Sliders++
			s.MaxCombo += o.Combo
		case *Spinner:
			s.Spinners++
			s.MaxCombo++
		}
	}
	return s
}
