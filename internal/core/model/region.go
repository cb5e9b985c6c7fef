package model

type RegionKind string

const (
	RegionExplicit RegionKind = "explicit"
	RegionHeading  RegionKind = "heading"
)

const (
	RegionPaidOnly            = "paid-only"
	RegionMarkerWrappedPrefix = "marker-wrapped:"
)

// Region is a named span of blocks, bounds inclusive.
type Region struct {
	Name  string
	Kind  RegionKind
	Start int
	End   int
	// Closed is false when the region was closed implicitly at the end of the
	// document or by an outer end marker.
	Closed bool
}

func (r Region) Contains(index int) bool {
	return index >= r.Start && index <= r.End
}

func MarkerWrapped(platform PlatformID) string {
	return RegionMarkerWrappedPrefix + string(platform)
}
