package itembank

// DefaultLimit is the record bound used when no limit is given.
const DefaultLimit = 10

// RequestPacket selects the records to fetch. Exactly one of References or
// Limit is set.
type RequestPacket struct {
	References []string `json:"references,omitempty"`
	Limit      *int     `json:"limit,omitempty"`
}

// MakeRequestPacket builds the packet for a fetch. A non-nil reference wins:
// the packet then asks for that single record and limit is ignored. The limit
// is passed through unchecked.
func MakeRequestPacket(reference *string, limit int) RequestPacket {
	if reference == nil {
		return RequestPacket{Limit: &limit}
	}
	return RequestPacket{References: []string{*reference}}
}

// IsReference reports whether the packet targets a single record.
func (p RequestPacket) IsReference() bool {
	return len(p.References) > 0
}
