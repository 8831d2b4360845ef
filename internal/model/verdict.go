package model

// RejectReason explains why the quality scorer rejected a text.
type RejectReason int

const (
	// ReasonNone is the reason of an accepted verdict.
	ReasonNone RejectReason = iota

	// ReasonEmpty marks a blank body.
	ReasonEmpty

	// ReasonTooShort marks a body below the minimum length.
	ReasonTooShort

	// ReasonTooLong marks a body above the maximum length: a full-length work
	// rather than an excerpt.
	ReasonTooLong

	// ReasonLinkDensity marks a hub disguised as a page.
	ReasonLinkDensity

	// ReasonListy marks a bare list or menu.
	ReasonListy

	// ReasonTitleBlacklist marks a title made of meta-words ("contents", "index").
	ReasonTitleBlacklist
)

// String returns the wire name of the reason.
func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonEmpty:
		return "empty"
	case ReasonTooShort:
		return "too_short"
	case ReasonTooLong:
		return "too_long"
	case ReasonLinkDensity:
		return "link_density"
	case ReasonListy:
		return "listy"
	case ReasonTitleBlacklist:
		return "title_blacklist"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r RejectReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// IsHubLike reports whether the reason suggests the page is a hub that
// disguises real content one hop away.
func (r RejectReason) IsHubLike() bool {
	return r == ReasonLinkDensity || r == ReasonListy
}

// Verdict is the terminal result of scoring one text.
type Verdict struct {
	// Accepted is true when the text is genuine literary content.
	Accepted bool `json:"accepted"`

	// Reason is set when Accepted is false.
	Reason RejectReason `json:"reason,omitempty"`
}

// Accept returns an accepting verdict.
func Accept() Verdict {
	return Verdict{Accepted: true}
}

// Reject returns a rejecting verdict with the given reason.
func Reject(reason RejectReason) Verdict {
	return Verdict{Accepted: false, Reason: reason}
}
