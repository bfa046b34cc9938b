package audio

import "math"

// Energy is the mean absolute amplitude over every sample of every frame.
func Energy(frames []Frame) float64 {
	var sum float64
	n := 0
	for _, f := range frames {
		for _, s := range f.Samples {
			sum += math.Abs(float64(s))
		}
		n += len(f.Samples)
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func IsSilent(energy, threshold float64) bool {
	return energy < threshold
}
