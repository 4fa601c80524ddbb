package crossing

// Safe reports whether the filtered distance clears the threshold.
func Safe(filtered, minDistance float32) bool {
	return filtered >= minDistance
}
