package audio

// MaxAmplitude is the largest normalized RMS amplitude.
const MaxAmplitude = 1.0

// DryRunRMS stands in for the measured source loudness when nothing is measured.
const DryRunRMS = 25.0

// TargetAmplitude is the RMS the speech should be adjusted to: the source
// loudness scaled by factor and capped at MaxAmplitude.
func TargetAmplitude(sourceRMS, factor float64) float64 {
	return min(sourceRMS*factor, MaxAmplitude)
}
