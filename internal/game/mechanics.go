/*
Package game
File: mechanics.go
Description:
    Contains the pure rule helpers.
    This includes map timer scaling, system naming, chart positioning and
    the number/clock formatting shared by log messages and read models.
*/

package game

import (
	"fmt"
	"strconv"
)

// ScaledMapTimer returns the countdown for the map played after n completed maps.
// Formula: max(floor, base[n mod cycle] - floor(n / cycle) * penalty)
func ScaledMapTimer(durations []int, n, penalty, floor int) int {
	if len(durations) == 0 {
		return floor
	}
	index := n % len(durations)
	cycle := n / len(durations)
	return max(floor, durations[index]-cycle*penalty)
}

// SystemName returns the name of the system the n-th map is played in.
func SystemName(names []string, n int) string {
	if len(names) == 0 {
		return ""
	}
	return names[n%len(names)]
}

// ShipMapPosition interpolates the ship between the chart nodes.
// The ratio is clamped to [0, 1].
func ShipMapPosition(ratio float64, chart Chart) MapNode {
	ratio = max(0, min(1, ratio))
	return MapNode{
		X: chart.Start.X + (chart.End.X-chart.Start.X)*ratio,
		Y: chart.Start.Y + (chart.End.Y-chart.Start.Y)*ratio,
	}
}

// FormatMapTime renders seconds as MM:SS. Negative input renders as 00:00.
func FormatMapTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatThousands renders n with comma separators (1234567 -> "1,234,567").
func FormatThousands(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
