package types

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// Signature 表示 64 字节交易签名，作为去重主键使用
type Signature [64]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

func (s Signature) IsZero() bool {
	return s == Signature{}
}

// SignatureFromBytes 从原始 64 字节构造 Signature，长度不符时返回 error
func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) != 64 {
		return Signature{}, fmt.Errorf("invalid signature length: got %d, want 64", len(b))
	}
	var s Signature
	copy(s[:], b)
	return s, nil
}
