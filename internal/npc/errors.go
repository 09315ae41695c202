package npc

import (
	"errors"
	"fmt"
)

// ErrorKind classifies trade failures for typed handling.
type ErrorKind string

const (
	KindMissingContext       ErrorKind = "missing_context"
	KindInsufficientCapital  ErrorKind = "insufficient_capital"
	KindInsufficientPosition ErrorKind = "insufficient_position"
	KindUnexpected           ErrorKind = "unexpected"
)

// TradeError carries structured context for one trader's failure. All kinds
// are non-fatal to a cycle; the orchestrator counts them and moves on.
type TradeError struct {
	Kind     ErrorKind
	TraderID string
	AssetID  string
	Message  string
	Cause    error
}

func (e *TradeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: trader %s: %s (%v)", e.Kind, e.TraderID, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: trader %s: %s", e.Kind, e.TraderID, e.Message)
}

func (e *TradeError) Unwrap() error { return e.Cause }

// KindOf extracts the error kind; anything that is not a TradeError counts
// as unexpected.
func KindOf(err error) ErrorKind {
	var te *TradeError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnexpected
}

func NewMissingContextError(traderID, message string) *TradeError {
	return &TradeError{Kind: KindMissingContext, TraderID: traderID, Message: message}
}

func NewInsufficientCapitalError(traderID, assetID string, needed, available float64) *TradeError {
	return &TradeError{
		Kind:     KindInsufficientCapital,
		TraderID: traderID,
		AssetID:  assetID,
		Message:  fmt.Sprintf("need %.2f, have %.2f", needed, available),
	}
}

func NewInsufficientPositionError(traderID, assetID string, requested, held int) *TradeError {
	return &TradeError{
		Kind:     KindInsufficientPosition,
		TraderID: traderID,
		AssetID:  assetID,
		Message:  fmt.Sprintf("requested %d, holding %d", requested, held),
	}
}

func NewUnexpectedError(traderID, message string, cause error) *TradeError {
	return &TradeError{Kind: KindUnexpected, TraderID: traderID, Message: message, Cause: cause}
}
