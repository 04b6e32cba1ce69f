package normalize

import "slices"

func sortFloats(s []float64) { slices.Sort(s) }
