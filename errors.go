package rosetta

import (
	"errors"
	"fmt"
)

// Kind classifies a request or metadata failure. The set is flat on
// purpose: every call site at this layer needs only a kind and a
// message, never a hierarchy.
type Kind string

// The requested pallet is absent from the runtime metadata.
const InvalidPalletName Kind = "InvalidPalletName"

// The pallet exists but has no call with the requested name.
const InvalidCallName Kind = "InvalidCallName"

// The pallet exists but has no storage entry with the requested name.
const InvalidStorageName Kind = "InvalidStorageName"

// A supplied value does not match the resolved type definition.
const InvalidParams Kind = "InvalidParams"

// The number of supplied arguments differs from the declared field count.
const ParamsLengthNotMatch Kind = "ParamsLengthNotMatch"

// The registry itself could not answer a lookup required to proceed.
const InvalidMetadata Kind = "InvalidMetadata"

// A decoded value could not be converted back to JSON.
const InvalidValueConversion Kind = "InvalidValueConversion"

// Failed to assemble the encoded call data.
const CouldNotCreateCallData Kind = "CouldNotCreateCallData"

// The downstream encoder rejected the call data.
const InvalidCallData Kind = "InvalidCallData"

// A submitted or decoded extrinsic is malformed.
const InvalidExtrinsic Kind = "InvalidExtrinsic"

type Error struct {
	Kind    Kind
	Message string
}

var _ error = &Error{}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Errorf(kind Kind, format string, args ...interface{}) error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func InvalidPalletNamef(format string, args ...interface{}) error {
	return Errorf(InvalidPalletName, format, args...)
}

func InvalidCallNamef(format string, args ...interface{}) error {
	return Errorf(InvalidCallName, format, args...)
}

func InvalidStorageNamef(format string, args ...interface{}) error {
	return Errorf(InvalidStorageName, format, args...)
}

func InvalidParamsf(format string, args ...interface{}) error {
	return Errorf(InvalidParams, format, args...)
}

func ParamsLengthNotMatchf(format string, args ...interface{}) error {
	return Errorf(ParamsLengthNotMatch, format, args...)
}

func InvalidMetadataf(format string, args ...interface{}) error {
	return Errorf(InvalidMetadata, format, args...)
}

func InvalidValueConversionf(format string, args ...interface{}) error {
	return Errorf(InvalidValueConversion, format, args...)
}

func CouldNotCreateCallDataf(format string, args ...interface{}) error {
	return Errorf(CouldNotCreateCallData, format, args...)
}

func InvalidCallDataf(format string, args ...interface{}) error {
	return Errorf(InvalidCallData, format, args...)
}

func InvalidExtrinsicf(format string, args ...interface{}) error {
	return Errorf(InvalidExtrinsic, format, args...)
}

// KindOf returns the Kind carried by err, or "" when err is not an
// *Error from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
