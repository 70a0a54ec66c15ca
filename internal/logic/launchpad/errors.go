package launchpad

import "fmt"

// DecodeErrKind 解码失败的类别，用于计数与测试断言
type DecodeErrKind uint8

const (
	ErrTruncated            DecodeErrKind = iota // 数据短于 discriminator 或字段布局要求
	ErrUnknownDiscriminator                      // 目标程序下未注册的 discriminator
	ErrAccountOutOfRange                         // 指令账户数量不满足布局要求
	ErrBadPayload                                // 字段解析失败（borsh / 布局不符）
)

func (k DecodeErrKind) String() string {
	switch k {
	case ErrTruncated:
		return "truncated"
	case ErrUnknownDiscriminator:
		return "unknown_discriminator"
	case ErrAccountOutOfRange:
		return "account_out_of_range"
	case ErrBadPayload:
		return "bad_payload"
	default:
		return "unknown"
	}
}

// DecodeError 可恢复的解码错误：跳过该指令并计数，绝不中断流水线。
// 相同输入字节必须产生相同的 DecodeError（解码纯函数性的一部分）。
type DecodeError struct {
	Kind   DecodeErrKind
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Kind, e.Reason)
}

func newDecodeError(kind DecodeErrKind, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}
