package avmerrors

import (
	"errors"
	"strings"
)

// Exceptional Halt (H) Errors
var (
	ErrTagMismatch               = errors.New("H1|TagMismatch: Operand tags disagree where equality is required.")
	ErrNonIntegralType           = errors.New("H2|NonIntegralType: Field operand passed to an integer-only instruction.")
	ErrStaticCallViolation       = errors.New("H3|StaticCallViolation: World-state mutation attempted inside a static call.")
	ErrResourceLimitExceeded     = errors.New("H4|ResourceLimitExceeded: Per-transaction side-effect limit exceeded.")
	ErrNullifierCollision        = errors.New("H5|NullifierCollision: Nullifier already exists.")
	ErrOutOfGas                  = errors.New("H6|OutOfGas: Insufficient remaining gas for the next charge.")
	ErrInternalStackUnderflow    = errors.New("H7|InternalStackUnderflow: INTERNALRETURN with an empty internal call stack.")
	ErrInvalidRadixConversion    = errors.New("H8|InvalidRadixConversion: Invalid TORADIXBE parameters.")
	ErrUnknownOrCodelessContract = errors.New("H9|UnknownOrCodelessContract: Call target has no executable code.")
)

// Decoding (D) Errors
var (
	ErrInvalidOpcode         = errors.New("D1|InvalidOpcode: Opcode byte is not assigned.")
	ErrInstructionOutOfRange = errors.New("D2|InstructionOutOfRange: Instruction is truncated by the end of the bytecode.")
	ErrInvalidPC             = errors.New("D3|InvalidPC: Program counter points outside the bytecode.")
	ErrInvalidTag            = errors.New("D4|InvalidTag: Tag byte is not a known memory tag.")
	ErrAddressOutOfRange     = errors.New("D5|AddressOutOfRange: Resolved memory address does not fit in 32 bits.")
	ErrSliceTooLarge         = errors.New("D6|SliceTooLarge: Memory range exceeds the per-instruction word limit.")
)

// Execution (X) Errors
var (
	ErrDivisionByZero        = errors.New("X1|DivisionByZero: Division by zero.")
	ErrInvalidEnvVar         = errors.New("X2|InvalidEnvVar: Unknown environment variable.")
	ErrInvalidContractMember = errors.New("X3|InvalidContractMember: Unknown contract instance member.")
	ErrPointNotOnCurve       = errors.New("X4|PointNotOnCurve: Elliptic curve input is not on the curve.")
	ErrCallDepthExceeded     = errors.New("X5|CallDepthExceeded: Maximum nested call depth reached.")
)

// World State (W) Errors. These are not exceptional halts: they abort the simulation.
var (
	ErrWorldStateIO = errors.New("W1|WorldStateIO: World-state collaborator failed.")
)

var haltErrors = []error{
	ErrTagMismatch, ErrNonIntegralType, ErrStaticCallViolation, ErrResourceLimitExceeded,
	ErrNullifierCollision, ErrOutOfGas, ErrInternalStackUnderflow, ErrInvalidRadixConversion,
	ErrUnknownOrCodelessContract,
	ErrInvalidOpcode, ErrInstructionOutOfRange, ErrInvalidPC, ErrInvalidTag, ErrAddressOutOfRange, ErrSliceTooLarge,
	ErrDivisionByZero, ErrInvalidEnvVar, ErrInvalidContractMember, ErrPointNotOnCurve, ErrCallDepthExceeded,
}

// IsExceptionalHalt reports whether err is recoverable at a context boundary.
func IsExceptionalHalt(err error) bool {
	if err == nil || errors.Is(err, ErrWorldStateIO) {
		return false
	}
	for _, e := range haltErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// GetErrorName extracts the error name from the error message.
func GetErrorName(err error) string {
	if err == nil {
		return "No Error"
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") || !strings.Contains(errStr, ":") {
		return errStr
	}
	parts := strings.SplitN(errStr, "|", 2)
	nameParts := strings.SplitN(parts[1], ":", 2)
	return strings.TrimSpace(nameParts[0])
}

// GetErrorCode extracts the error code from the error message.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") {
		return ""
	}
	parts := strings.SplitN(errStr, "|", 2)
	return strings.TrimSpace(parts[0])
}
