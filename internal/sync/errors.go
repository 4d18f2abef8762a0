package sync

import (
	"errors"
	"fmt"

	"github.com/stacklok/mbean-bridge/internal/resolver"
)

var (
	// ErrTargetUnresolvable is returned when a target is not configured or has no usable backend
	ErrTargetUnresolvable = errors.New("target unresolvable")

	// ErrAddressUnresolvable marks attributes whose macro object could not be discovered
	ErrAddressUnresolvable = resolver.ErrAddressUnresolvable

	// ErrAttributeRead marks attributes whose backend read or sub-field extraction failed
	ErrAttributeRead = errors.New("attribute read failure")

	// ErrConversion marks attributes whose value cannot be represented in the declared type
	ErrConversion = errors.New("conversion error")

	// ErrAttributeNotDefined is returned when a target has no definition with the given name
	ErrAttributeNotDefined = errors.New("attribute not defined")
)

// WarningKind classifies a skipped attribute.
type WarningKind string

// Warning kinds
const (
	WarningAddressUnresolvable WarningKind = "AddressUnresolvable"
	WarningAttributeRead       WarningKind = "AttributeReadFailure"
	WarningConversion          WarningKind = "ConversionError"
)

// Warning describes one attribute skipped during a cycle.
type Warning struct {
	Attribute string      `json:"attribute"`
	Object    string      `json:"object"`
	Kind      WarningKind `json:"kind"`
	Message   string      `json:"message"`
	Err       error       `json:"-"`
}

func newWarning(attribute, object string, kind WarningKind, err error) Warning {
	return Warning{Attribute: attribute, Object: object, Kind: kind, Message: err.Error(), Err: err}
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s: %s: %s", w.Attribute, w.Kind, w.Message)
}

func (w Warning) Unwrap() error {
	return w.Err
}

// Reasons carried by Error
const (
	ReasonTargetUnresolvable  = "TargetUnresolvable"
	ReasonDefinitionsFailed   = "DefinitionsUnavailable"
	ReasonAttributeNotDefined = "AttributeNotDefined"
	ReasonInterrupted         = "Interrupted"
	ReasonStorageFailed       = "StorageFailed"
	ReasonHistoryFailed       = "HistoryFailed"
	ReasonMacroResolveFailed  = "MacroResolveFailed"
	ReasonMacroUnknown        = "MacroUnknown"
)

// Error represents a failure of a whole operation
type Error struct {
	Err     error
	Message string
	Reason  string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(reason string, err error, format string, args ...any) *Error {
	return &Error{
		Err:     err,
		Message: fmt.Sprintf(format, args...) + ": " + err.Error(),
		Reason:  reason,
	}
}
