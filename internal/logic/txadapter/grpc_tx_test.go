package txadapter

import (
	"bytes"
	"testing"

	"launch-sniper-sol/internal/types"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key32(b byte) []byte {
	k := make([]byte, 32)
	k[0] = b
	return k
}

// 3 个静态账户（signer+writable / writable / readonly）+ lookup 表各 1 个，
// 1 条主指令带 1 条 inner 指令
func buildGrpcTx() *pb.SubscribeUpdateTransactionInfo {
	return &pb.SubscribeUpdateTransactionInfo{
		Signature: bytes.Repeat([]byte{0xaa}, 64),
		Transaction: &pb.Transaction{
			Signatures: [][]byte{bytes.Repeat([]byte{0xaa}, 64)},
			Message: &pb.Message{
				Header: &pb.MessageHeader{
					NumRequiredSignatures:       1,
					NumReadonlySignedAccounts:   0,
					NumReadonlyUnsignedAccounts: 1,
				},
				AccountKeys: [][]byte{key32(1), key32(2), key32(3)},
				Instructions: []*pb.CompiledInstruction{
					{ProgramIdIndex: 2, Accounts: []byte{0, 1, 3, 4}, Data: []byte{9, 9, 9}},
				},
			},
		},
		Meta: &pb.TransactionStatusMeta{
			LoadedWritableAddresses: [][]byte{key32(4)},
			LoadedReadonlyAddresses: [][]byte{key32(5)},
			InnerInstructions: []*pb.InnerInstructions{
				{
					Index: 0,
					Instructions: []*pb.InnerInstruction{
						{ProgramIdIndex: 2, Accounts: []byte{1, 3}, Data: []byte{7}},
					},
				},
			},
		},
	}
}

func TestAdaptGrpcTx(t *testing.T) {
	adapted, err := AdaptGrpcTx(123, buildGrpcTx())
	require.NoError(t, err)

	assert.Equal(t, uint64(123), adapted.Slot)

	var wantSig types.Signature
	for i := range wantSig {
		wantSig[i] = 0xaa
	}
	assert.Equal(t, wantSig, adapted.Signature)

	// 账户表：3 静态 + 1 lookup writable + 1 lookup readonly
	require.Len(t, adapted.AccountKeys, 5)
	assert.True(t, adapted.AccountKeys[0].Signer)
	assert.True(t, adapted.AccountKeys[0].Writable)
	assert.False(t, adapted.AccountKeys[1].Signer)
	assert.True(t, adapted.AccountKeys[1].Writable)
	assert.False(t, adapted.AccountKeys[2].Writable, "静态账户尾部 readonly")
	assert.True(t, adapted.AccountKeys[3].Writable, "lookup writable")
	assert.False(t, adapted.AccountKeys[4].Writable, "lookup readonly")

	// 主指令 + inner 指令已展平
	require.Len(t, adapted.Instructions, 2)
	main := adapted.Instructions[0]
	assert.Equal(t, uint16(0), main.IxIndex)
	assert.Equal(t, uint16(0), main.InnerIndex)
	require.Len(t, main.Accounts, 4)
	assert.Equal(t, adapted.AccountKeys[2].Key, main.ProgramID)
	assert.Equal(t, adapted.AccountKeys[4].Key, main.Accounts[3].Key, "lookup 账户可被指令索引")

	inner := adapted.Instructions[1]
	assert.Equal(t, uint16(0), inner.IxIndex)
	assert.Equal(t, uint16(1), inner.InnerIndex)
	assert.Equal(t, []byte{7}, inner.Data)
}

func TestAdaptGrpcTxAccountIndexOutOfRange(t *testing.T) {
	tx := buildGrpcTx()
	tx.Transaction.Message.Instructions[0].Accounts = []byte{0, 99}

	_, err := AdaptGrpcTx(1, tx)
	require.Error(t, err)
}

func TestIsValidGrpcTx(t *testing.T) {
	assert.True(t, IsValidGrpcTx(buildGrpcTx()))

	assert.False(t, IsValidGrpcTx(nil))

	vote := buildGrpcTx()
	vote.IsVote = true
	assert.False(t, IsValidGrpcTx(vote))

	failed := buildGrpcTx()
	failed.Meta.Err = &pb.TransactionError{Err: []byte{1}}
	assert.False(t, IsValidGrpcTx(failed), "执行失败的交易必须排除")

	badSig := buildGrpcTx()
	badSig.Transaction.Signatures = [][]byte{{1, 2, 3}}
	assert.False(t, IsValidGrpcTx(badSig))
}
