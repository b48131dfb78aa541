package action

import (
	"errors"
	"fmt"
	"net/http"

	"blink-builder-sol/internal/logic/assembler"
	"blink-builder-sol/internal/logic/builder"
	"blink-builder-sol/internal/logic/swap"
	"blink-builder-sol/internal/store"
)

// Kind 错误分类，决定 HTTP 状态码与对外消息
type Kind int

const (
	KindNetwork     Kind = iota // 500，对外只返回通用消息
	KindValidation              // 400，消息原样返回
	KindEligibility             // 403，业务提示
	KindNotFound                // 404
)

const internalMessage = "internal server error"

func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindEligibility:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindEligibility:
		return "eligibility"
	case KindNotFound:
		return "not_found"
	default:
		return "network"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Eligibility(msg string) *Error {
	return &Error{Kind: KindEligibility, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Network(cause error) *Error {
	return &Error{Kind: KindNetwork, Message: internalMessage, Cause: cause}
}

// Classify 把任意错误映射为 *Error。
// 已知的校验类哨兵错误按 400 处理，其余一律按网络错误（500）处理。
func Classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindNetwork && e.Message != internalMessage {
			cp := *e
			cp.Message = internalMessage
			return &cp
		}
		return e
	}

	switch {
	case errors.Is(err, builder.ErrInvalidAmount):
		return &Error{Kind: KindValidation, Message: "Invalid amount", Cause: err}
	case errors.Is(err, swap.ErrPayerMissing):
		return &Error{Kind: KindValidation, Message: swap.ErrPayerMissing.Error(), Cause: err}
	case errors.Is(err, assembler.ErrEmptyPayer):
		return &Error{Kind: KindValidation, Message: "Invalid account", Cause: err}
	case errors.Is(err, store.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: "Not found", Cause: err}
	default:
		return Network(err)
	}
}
