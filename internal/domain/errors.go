package domain

import (
	"errors"
	"fmt"
)

// Error Kinds. Every rejected precondition carries one of these so clients
// can react programmatically instead of parsing messages.
const (
	KindNotFound            = "NotFound"
	KindForbidden           = "Forbidden"
	KindInvalidArgument     = "InvalidArgument"
	KindDuplicateReturn     = "DuplicateReturn"
	KindOrderNotEligible    = "OrderNotEligible"
	KindItemNotInOrder      = "ItemNotInOrder"
	KindInvalidTransition   = "InvalidTransition"
	KindRefundNotEligible   = "RefundNotEligible"
	KindRefundNotProcessing = "RefundNotProcessing"
	KindPartnerUnavailable  = "PartnerUnavailable"
	KindAreaNotServed       = "AreaNotServed"
	KindNotAssigned         = "NotAssigned"
	KindReturnLocked        = "ReturnLocked"
)

// Error is a precondition failure: synchronous, non-retryable, and
// correctable by the caller. Anything that is not a *Error is treated as an
// internal failure by the HTTP layer.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// E builds a domain error with a formatted message.
func E(kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" for unclassified errors.
func KindOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
