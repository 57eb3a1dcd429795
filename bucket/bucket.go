// Package bucket classifies folder sizes into named ranges.
//
// Classification is a pure lookup over an ascending threshold table: the
// first threshold whose upper bound exceeds the size wins, and upper bounds
// are exclusive (a folder of exactly 1 GiB lands in "1-10 GB"). Sizes that
// exceed every finite bound map to Largest, and negative sizes (failed
// scans) map to Unknown.
package bucket

const gib = int64(1) << 30

const (
	// Largest is the open-ended top bucket.
	Largest = "10 TB+"
	// Unknown marks folders whose size scan failed.
	Unknown = "Unknown"
)

// Threshold pairs an exclusive upper bound in bytes with a bucket label.
// An UpperBytes of -1 means unbounded.
type Threshold struct {
	UpperBytes int64
	Label      string
}

var table = []Threshold{
	{1 * gib, "<1 GB"},
	{10 * gib, "1-10 GB"},
	{50 * gib, "10-50 GB"},
	{200 * gib, "50-200 GB"},
	{500 * gib, "200-500 GB"},
	{1000 * gib, "500 GB-1 TB"},
	{10000 * gib, "1-10 TB"},
	{-1, Largest},
}

// Order is the canonical bucket ordering, used by grouped reports and
// archive range selection. Unknown sorts last.
var Order = []string{
	"<1 GB", "1-10 GB", "10-50 GB", "50-200 GB",
	"200-500 GB", "500 GB-1 TB", "1-10 TB", Largest, Unknown,
}

// ForSize maps a byte count to its bucket label. It is total: every size has
// exactly one label, and the same size always yields the same label.
func ForSize(bytes int64) string {
	if bytes < 0 {
		return Unknown
	}
	for _, t := range table {
		if t.UpperBytes < 0 || bytes < t.UpperBytes {
			return t.Label
		}
	}
	return Largest
}

// Thresholds returns a copy of the classification table.
func Thresholds() []Threshold {
	out := make([]Threshold, len(table))
	copy(out, table)
	return out
}

// Index returns the position of label in Order, or -1 for unrecognized labels.
func Index(label string) int {
	for i, l := range Order {
		if l == label {
			return i
		}
	}
	return -1
}

// Range returns the labels between start and max, inclusive, in canonical
// order. Unrecognized endpoints fall back to defaults (start "<1 GB", max
// "50-200 GB") and a reversed pair is normalized rather than rejected.
func Range(start, max string) []string {
	si := Index(start)
	if si < 0 {
		si = 0
	}
	mi := Index(max)
	if mi < 0 {
		mi = Index("50-200 GB")
	}
	if mi < si {
		si, mi = mi, si
	}
	out := make([]string, 0, mi-si+1)
	out = append(out, Order[si:mi+1]...)
	return out
}
