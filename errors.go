package bioquery

import "errors"

// ErrorKind classifies failures along the query pipeline.
// Only UnknownOperation, InvalidParameter, NoOperand and CollaboratorFailure
// ever reach an OperationResult; parser failures are absorbed by the Router.
type ErrorKind string

// Error kinds.
const (
	KindExtractionDegenerate  ErrorKind = "extraction_degenerate"
	KindParserUnavailable     ErrorKind = "parser_unavailable"
	KindParserValidationError ErrorKind = "parser_validation_error"
	KindUnknownOperation      ErrorKind = "unknown_operation"
	KindInvalidParameter      ErrorKind = "invalid_parameter"
	KindNoOperand             ErrorKind = "no_operand"
	KindCollaboratorFailure   ErrorKind = "collaborator_failure"
)

// Sentinel errors. Wrap with fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	// ErrProviderUnavailable is returned when the reasoning service cannot be reached.
	ErrProviderUnavailable = errors.New("reasoning provider unavailable")

	// ErrEmptyResponse is returned when the provider answered with no content.
	ErrEmptyResponse = errors.New("no response from provider")

	// ErrInvalidResponse is returned when a model response is unparsable or
	// fails schema validation.
	ErrInvalidResponse = errors.New("invalid parser response")

	// ErrUnknownOperation marks an operation tag outside the supported set.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrInvalidParameter marks a parameter value outside its domain.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNoOperand is returned when an operation needs a sequence and none was given.
	ErrNoOperand = errors.New("no sequence provided")

	// ErrCollaborator prefixes failures returned by a Toolkit capability.
	ErrCollaborator = errors.New("analysis toolkit failure")
)

// kindOf maps a parser error to its taxonomy entry.
func kindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidResponse):
		return KindParserValidationError
	case errors.Is(err, ErrUnknownOperation):
		return KindUnknownOperation
	case errors.Is(err, ErrInvalidParameter):
		return KindInvalidParameter
	case errors.Is(err, ErrNoOperand):
		return KindNoOperand
	case errors.Is(err, ErrCollaborator):
		return KindCollaboratorFailure
	default:
		return KindParserUnavailable
	}
}
