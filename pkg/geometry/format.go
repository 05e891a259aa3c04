package geometry

import "strconv"

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', 3, 32)
}
