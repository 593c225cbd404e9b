// Package fixtures holds small .osu beatmaps shared by the package tests.
package fixtures

import (
	"fmt"
	"strings"
)

// Basic has two circles, two sliders (one inheriting a 2x velocity) and a
// spinner. Max combo is 8.
const Basic = `osu file format v14

[General]
AudioFilename: audio.mp3
Mode: 0

[Metadata]
Title:Test Song
Artist:Test Artist
Creator:Mapper
Version:Insane

[Difficulty]
HPDrainRate:6
CircleSize:4
OverallDifficulty:8
ApproachRate:9
SliderMultiplier:1.4
SliderTickRate:1

[TimingPoints]
0,500,4,2,0,100,1,0
2000,-50,4,2,0,100,0,0

[HitObjects]
64,64,0,5,0
192,64,500,1,0
256,192,1000,2,0,L|356:192,1,100
100,100,2000,2,0,L|200:100,2,140
256,192,4000,12,0,5000
`

const header = `osu file format v14

[General]
Mode: 0

[Metadata]
Title:Generated
Artist:Fixture
Creator:Tests
Version:%s

[Difficulty]
HPDrainRate:%g
CircleSize:%g
OverallDifficulty:%g
ApproachRate:%g
SliderMultiplier:1.4
SliderTickRate:1

[TimingPoints]
0,%g,4,2,0,100,1,0

[HitObjects]
`

// Settings are the difficulty values written into generated maps.
type Settings struct {
	HP, CS, OD, AR float64
}

var Default = Settings{HP: 5, CS: 4, OD: 8, AR: 9}

// Stream writes n circles deltaMs apart, alternating between two points
// spacing pixels apart.
func Stream(s Settings, n int, deltaMs, spacing float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, header, "Stream", s.HP, s.CS, s.OD, s.AR, deltaMs*2)
	for i := 0; i < n; i++ {
		x := 256.0
		if i%2 == 1 {
			x += spacing
		}
		combo := 1
		if i == 0 {
			combo = 5
		}
		fmt.Fprintf(&sb, "%g,192,%g,%d,0\n", x, float64(i)*deltaMs, combo)
	}
	return sb.String()
}

// Circles writes one circle per time with the given positions.
func Circles(s Settings, times []float64, xs []float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, header, "Circles", s.HP, s.CS, s.OD, s.AR, 500.0)
	for i, t := range times {
		fmt.Fprintf(&sb, "%g,192,%g,1,0\n", xs[i%len(xs)], t)
	}
	return sb.String()
}

// WithSpinner is a short stream interrupted by a spinner.
func WithSpinner(s Settings) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, header, "Spinner", s.HP, s.CS, s.OD, s.AR, 500.0)
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&sb, "%d,192,%d,1,0\n", 100+40*(i%2), i*150)
	}
	sb.WriteString("256,192,1400,12,0,3000\n")
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&sb, "%d,192,%d,1,0\n", 100+40*(i%2), 3200+i*150)
	}
	return sb.String()
}
