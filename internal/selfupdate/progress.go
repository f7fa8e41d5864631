package selfupdate

import "fmt"

// ProgressText renders a download progress line.
func ProgressText(p Progress) string {
	const mb = 1024 * 1024
	if p.Total > 0 {
		pct := min(100, max(0, int(p.Read*100/p.Total)))
		return fmt.Sprintf("Downloading… %d%% (%d MB / %d MB)", pct, p.Read/mb, p.Total/mb)
	}
	return fmt.Sprintf("Downloading… %d MB", p.Read/mb)
}

// Fraction is the completed share of a download, or -1 when unknown.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return -1
	}
	return min(1, float64(p.Read)/float64(p.Total))
}
