package model

type PlatformID string

func (id PlatformID) String() string {
	return string(id)
}

func PlatformIDs(raw ...string) []PlatformID {
	ids := make([]PlatformID, 0, len(raw))
	for _, r := range raw {
		ids = append(ids, PlatformID(r))
	}
	return ids
}
