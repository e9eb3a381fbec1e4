package transform

import (
	"fmt"
	"math"
	"strconv"
)

// NeutralParameter is the midpoint of the transform range. It short-circuits
// to a byte copy so the neutral path never re-encodes.
const NeutralParameter = 50.0

// maxSemitones bounds the shift at the range extremes: parameter 0 maps to
// -4 semitones, 100 to +4.
const maxSemitones = 4.0

// SemitoneShift maps a transform parameter in [0,100] onto a semitone offset
// in [-4,+4].
func SemitoneShift(parameter float64) float64 {
	return (parameter - NeutralParameter) / NeutralParameter * maxSemitones
}

// PitchRatio converts a transform parameter into an equal-tempered frequency
// multiplier (2^(semitones/12)).
func PitchRatio(parameter float64) float64 {
	return math.Pow(2, SemitoneShift(parameter)/12)
}

// FilterChain builds the ffmpeg audio filter for a pitch shift: resample at
// baseRate*ratio to move pitch, then resample back to baseRate to restore
// tempo. Both stages must use the same base rate.
func FilterChain(baseRate int, ratio float64) string {
	return fmt.Sprintf("asetrate=%d*%s,aresample=%d",
		baseRate, strconv.FormatFloat(ratio, 'f', 6, 64), baseRate)
}
