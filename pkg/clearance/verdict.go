package clearance

import "fmt"

// verdictKind discriminates the closed verdict set. The zero value is
// deliberately invalid so that an uninitialized Verdict can never read as
// an allow.
type verdictKind uint8

const (
	verdictInvalid verdictKind = iota
	verdictAllow
	verdictBlock
	verdictWarn
)

// Verdict is the outcome of evaluating a single rule. It is a closed
// three-way type: Allow, Block, or Warn. Construct values only through the
// Allow, Block, and Warn functions; the zero value is invalid and the
// engine treats it as a defect.
type Verdict struct {
	kind   verdictKind
	code   string
	reason string
}

// Allow returns the passing verdict.
func Allow() Verdict {
	return Verdict{kind: verdictAllow}
}

// Block returns a blocking verdict with a stable machine-readable code and
// a human-readable reason.
func Block(code, reason string) Verdict {
	return Verdict{kind: verdictBlock, code: code, reason: reason}
}

// Warn returns a warning verdict with a stable machine-readable code and a
// human-readable reason. Warnings never prevent the attempt.
func Warn(code, reason string) Verdict {
	return Verdict{kind: verdictWarn, code: code, reason: reason}
}

// IsAllow reports whether the verdict is an explicit allow. It is false
// for the zero value.
func (v Verdict) IsAllow() bool { return v.kind == verdictAllow }

// IsBlock reports whether the verdict blocks the attempt.
func (v Verdict) IsBlock() bool { return v.kind == verdictBlock }

// IsWarn reports whether the verdict is a warning.
func (v Verdict) IsWarn() bool { return v.kind == verdictWarn }

// IsValid reports whether the verdict was constructed through Allow, Block,
// or Warn.
func (v Verdict) IsValid() bool { return v.kind != verdictInvalid }

// Code returns the machine-readable code (empty for Allow).
func (v Verdict) Code() string { return v.code }

// Reason returns the human-readable reason (empty for Allow).
func (v Verdict) Reason() string { return v.reason }

// String returns a compact representation for logging.
func (v Verdict) String() string {
	switch v.kind {
	case verdictAllow:
		return "allow"
	case verdictBlock:
		return fmt.Sprintf("block(%s)", v.code)
	case verdictWarn:
		return fmt.Sprintf("warn(%s)", v.code)
	default:
		return "invalid"
	}
}
