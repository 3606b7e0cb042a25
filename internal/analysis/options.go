package analysis

// Options controls how asset statistics are computed.
type Options struct {
	// IncompleteThreshold is the number of missing tracked values at which a
	// record counts as incomplete. Values below 1 fall back to 2.
	IncompleteThreshold int
	// GoodKeywords mark a CONDITION value as good when any of them occurs in
	// the lower-cased value.
	GoodKeywords []string
	// HistogramBins for the VALUE series; 0 disables the histogram.
	HistogramBins int
}

// DefaultOptions returns the standard register settings.
func DefaultOptions() Options {
	return Options{
		IncompleteThreshold: 2,
		GoodKeywords:        []string{"baik", "bagus", "good", "excellent", "perfect"},
		HistogramBins:       10,
	}
}

func (o Options) threshold() int {
	if o.IncompleteThreshold < 1 {
		return 2
	}
	return o.IncompleteThreshold
}
