// Package xerr 定义构建交易与收益统计过程中可区分类型的错误。
package xerr

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ray-liquidity-sol/internal/types"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindPoolNotFound
	KindInsufficientBalance
	KindDecode
	KindUnknownLayout
	KindArithmetic
	KindRpc
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindPoolNotFound:
		return "PoolNotFound"
	case KindInsufficientBalance:
		return "InsufficientBalance"
	case KindDecode:
		return "DecodeError"
	case KindUnknownLayout:
		return "UnknownLayout"
	case KindArithmetic:
		return "ArithmeticError"
	case KindRpc:
		return "RpcError"
	case KindTimeout:
		return "TimeoutError"
	default:
		return "UnknownError"
	}
}

// 哨兵错误，仅用于 errors.Is 按种类匹配
var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrPoolNotFound        = &Error{Kind: KindPoolNotFound}
	ErrInsufficientBalance = &Error{Kind: KindInsufficientBalance}
	ErrDecode              = &Error{Kind: KindDecode}
	ErrUnknownLayout       = &Error{Kind: KindUnknownLayout}
	ErrArithmetic          = &Error{Kind: KindArithmetic}
	ErrRpc                 = &Error{Kind: KindRpc}
	ErrTimeout             = &Error{Kind: KindTimeout}
)

// Error 带种类与可读描述的错误
type Error struct {
	Kind   Kind
	Detail string
	Err    error // 底层原因，可为空
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 同种类即视为匹配
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

func PoolNotFound(format string, args ...any) *Error {
	return New(KindPoolNotFound, format, args...)
}

func Decode(err error, format string, args ...any) *Error {
	return Wrap(KindDecode, err, format, args...)
}

func Arithmetic(format string, args ...any) *Error {
	return New(KindArithmetic, format, args...)
}

func Rpc(err error, format string, args ...any) *Error {
	return Wrap(KindRpc, err, format, args...)
}

func Timeout(err error, format string, args ...any) *Error {
	return Wrap(KindTimeout, err, format, args...)
}

// InsufficientBalanceError 余额不足，携带现有与所需的人类可读数量
type InsufficientBalanceError struct {
	Mint     types.Pubkey
	Existing decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: mint=%s existing=%s required=%s",
		KindInsufficientBalance, e.Mint, e.Existing.String(), e.Required.String())
}

func (e *InsufficientBalanceError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == KindInsufficientBalance
}

// KindOf 按 errors.As 的遍历顺序（由外向内、深度优先）返回第一个可识别的种类，外层包装优先
func KindOf(err error) Kind {
	switch e := err.(type) {
	case nil:
		return KindUnknown
	case *Error:
		return e.Kind
	case *InsufficientBalanceError:
		return KindInsufficientBalance
	case interface{ Unwrap() error }:
		return KindOf(e.Unwrap())
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if k := KindOf(inner); k != KindUnknown {
				return k
			}
		}
	}
	return KindUnknown
}
