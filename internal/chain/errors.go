package chain

import "errors"

// Kind classifies a failed call so callers can decide whether to fix input,
// wait, or escalate.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthorization
	KindTemporal
	KindProof
	KindStateConflict
	KindInputValidation
	KindProvenance
	KindCollaborator
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindAuthorization:   "authorization",
	KindTemporal:        "temporal",
	KindProof:           "proof",
	KindStateConflict:   "state_conflict",
	KindInputValidation: "input_validation",
	KindProvenance:      "provenance",
	KindCollaborator:    "collaborator",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Error is a named revert reason. Packages declare their reasons as package
// level sentinels and compare them with errors.Is.
type Error struct {
	Kind Kind
	Name string
}

// NewError declares a revert reason of the given kind.
func NewError(kind Kind, name string) *Error {
	return &Error{Kind: kind, Name: name}
}

func (e *Error) Error() string {
	return e.Name
}

// KindOf returns the kind of the outermost revert reason wrapped in err.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// NameOf returns the name of the outermost revert reason wrapped in err, or
// an empty string when err carries none.
func NameOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Name
	}
	return ""
}

var (
	ErrAddressInUse = NewError(KindCollaborator, "AddressAlreadyInUse")
	ErrNoContract   = NewError(KindCollaborator, "NoContractAtAddress")
	ErrCallPanicked = NewError(KindCollaborator, "CallPanicked")
)
