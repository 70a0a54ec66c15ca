package launchpad

import (
	"encoding/binary"
	"testing"

	"launch-sniper-sol/internal/consts"
	"launch-sniper-sol/internal/logic/core"
	"launch-sniper-sol/internal/types"

	"github.com/near/borsh-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) types.Pubkey {
	var k types.Pubkey
	k[0] = b
	return k
}

func testMeta(b byte, signer, writable bool) core.AccountMeta {
	return core.AccountMeta{Key: testKey(b), Signer: signer, Writable: writable}
}

func testTx(slot uint64, ixs ...*core.AdaptedInstruction) *core.AdaptedTx {
	var sig types.Signature
	sig[0] = 0xaa
	return &core.AdaptedTx{Slot: slot, Signature: sig, Instructions: ixs}
}

// 构造一条标准 15 账户的 swap 指令
func buildSwapIx(disc uint64, amountIn, minOut, feeRate uint64) *core.AdaptedInstruction {
	data := make([]byte, swapDataLen)
	binary.BigEndian.PutUint64(data[:8], disc)
	binary.LittleEndian.PutUint64(data[8:16], amountIn)
	binary.LittleEndian.PutUint64(data[16:24], minOut)
	binary.LittleEndian.PutUint64(data[24:32], feeRate)

	accounts := make([]core.AccountMeta, 15)
	for i := range accounts {
		accounts[i] = testMeta(byte(i+1), i == 0, i != 0)
	}
	return &core.AdaptedInstruction{
		ProgramID: consts.LaunchpadProgram,
		Accounts:  accounts,
		Data:      data,
	}
}

func buildInitializeIx(t *testing.T) *core.AdaptedInstruction {
	args := initializeArgs{
		BaseMintParam: mintParams{
			Decimals: 6,
			Name:     "Test Coin",
			Symbol:   "TEST",
			Uri:      "https://example.com/meta.json",
		},
		CurveParam: curveParams{
			Enum: borsh.Enum(0),
			Constant: constantCurve{
				Supply:                1_000_000_000_000_000,
				TotalBaseSell:         793_100_000_000_000,
				TotalQuoteFundRaising: 85_000_000_000,
				MigrateType:           1,
			},
		},
		VestingParam: vestingParams{},
	}
	payload, err := borsh.Serialize(args)
	require.NoError(t, err, "构造 initialize 载荷失败")

	data := make([]byte, DiscriminatorLen+len(payload))
	binary.BigEndian.PutUint64(data[:8], Initialize)
	copy(data[8:], payload)

	accounts := make([]core.AccountMeta, 10)
	for i := range accounts {
		accounts[i] = testMeta(byte(0x10+i), i == 0, true)
	}
	return &core.AdaptedInstruction{
		ProgramID: consts.LaunchpadProgram,
		Accounts:  accounts,
		Data:      data,
	}
}

func TestDecodeInitialize(t *testing.T) {
	ix := buildInitializeIx(t)
	tx := testTx(100, ix)

	event, decodeErr := DecodeInstruction(tx.Slot, tx, ix)
	require.Nil(t, decodeErr)
	require.NotNil(t, event)

	assert.Equal(t, KindInitialize, event.Kind)
	assert.Equal(t, uint64(100), event.Slot)
	assert.Equal(t, testKey(0x10), event.Wallet, "payer 应为账户 #0")
	assert.Equal(t, testKey(0x15), event.Pool, "pool_state 应为账户 #5")
	assert.Equal(t, testKey(0x16), event.Mint, "base_mint 应为账户 #6")

	require.NotNil(t, event.Meta)
	assert.Equal(t, uint8(6), event.Meta.Decimals)
	assert.Equal(t, "Test Coin", event.Meta.Name)
	assert.Equal(t, "TEST", event.Meta.Symbol)

	require.NotNil(t, event.Curve)
	assert.Equal(t, uint8(0), event.Curve.CurveType)
	assert.Equal(t, uint64(793_100_000_000_000), event.Curve.TotalBaseSell)
	assert.Equal(t, uint64(85_000_000_000), event.Curve.TotalQuoteFundRaising)
}

func TestDecodeBuySell(t *testing.T) {
	ix := buildSwapIx(BuyExactIn, 500_000_000, 123_456, 0)
	tx := testTx(200, ix)

	event, decodeErr := DecodeInstruction(tx.Slot, tx, ix)
	require.Nil(t, decodeErr)
	assert.Equal(t, KindBuy, event.Kind)
	assert.Equal(t, uint64(500_000_000), event.AmountIn)
	assert.Equal(t, uint64(123_456), event.MinAmountOut)
	assert.Equal(t, testKey(1), event.Wallet, "payer 应为账户 #0")
	assert.Equal(t, testKey(5), event.Pool, "pool_state 应为账户 #4")
	assert.Equal(t, testKey(10), event.Mint, "base_mint 应为账户 #9")

	sellIx := buildSwapIx(SellExact, 42, 0, 0)
	sellEvent, decodeErr := DecodeInstruction(tx.Slot, tx, sellIx)
	require.Nil(t, decodeErr)
	assert.Equal(t, KindSell, sellEvent.Kind)
	assert.Equal(t, uint64(42), sellEvent.AmountIn)
}

// 相同输入字节解码两次必须得到相同结果
func TestDecodeDeterministic(t *testing.T) {
	ix := buildSwapIx(BuyExactIn, 999, 888, 777)
	tx := testTx(300, ix)

	e1, err1 := DecodeInstruction(tx.Slot, tx, ix)
	e2, err2 := DecodeInstruction(tx.Slot, tx, ix)
	require.Nil(t, err1)
	require.Nil(t, err2)
	assert.Equal(t, e1, e2)
}

func TestDecodeTruncatedData(t *testing.T) {
	// 仅 3 字节，连 discriminator 都不完整
	ix := &core.AdaptedInstruction{
		ProgramID: consts.LaunchpadProgram,
		Accounts:  []core.AccountMeta{testMeta(1, true, true)},
		Data:      []byte{0xaf, 0xaf, 0x6d},
	}
	tx := testTx(400, ix)

	event, decodeErr := DecodeInstruction(tx.Slot, tx, ix)
	assert.Nil(t, event)
	require.NotNil(t, decodeErr)
	assert.Equal(t, ErrTruncated, decodeErr.Kind)

	// discriminator 完整但参数区被截断
	short := buildSwapIx(BuyExactIn, 1, 1, 1)
	short.Data = short.Data[:20]
	event, decodeErr = DecodeInstruction(tx.Slot, tx, short)
	assert.Nil(t, event)
	require.NotNil(t, decodeErr)
	assert.Equal(t, ErrTruncated, decodeErr.Kind)
}

func TestDecodeUnknownDiscriminator(t *testing.T) {
	ix := buildSwapIx(0xdeadbeefdeadbeef, 1, 1, 1)
	tx := testTx(500, ix)

	event, decodeErr := DecodeInstruction(tx.Slot, tx, ix)
	assert.Nil(t, event)
	require.NotNil(t, decodeErr)
	assert.Equal(t, ErrUnknownDiscriminator, decodeErr.Kind)
}

func TestDecodeSwapAccountsTooFew(t *testing.T) {
	ix := buildSwapIx(BuyExactIn, 1, 1, 1)
	ix.Accounts = ix.Accounts[:10]
	tx := testTx(600, ix)

	event, decodeErr := DecodeInstruction(tx.Slot, tx, ix)
	assert.Nil(t, event)
	require.NotNil(t, decodeErr)
	assert.Equal(t, ErrAccountOutOfRange, decodeErr.Kind)
}

func TestExtractTxEvents(t *testing.T) {
	buyIx := buildSwapIx(BuyExactIn, 100, 1, 0)

	// System Transfer: tag=2 + lamports
	transferData := make([]byte, 12)
	binary.LittleEndian.PutUint32(transferData[:4], systemTransferTag)
	binary.LittleEndian.PutUint64(transferData[4:12], 5_000_000)
	transferIx := &core.AdaptedInstruction{
		ProgramID: consts.SystemProgram,
		Accounts:  []core.AccountMeta{testMeta(0x30, true, true), testMeta(0x31, false, true)},
		Data:      transferData,
	}

	// 截断的发射台指令：参数区只剩一半
	badIx := buildSwapIx(SellExact, 1, 1, 1)
	badIx.Data = badIx.Data[:16]

	// 未注册 discriminator：不产出事件，但与截断一样计入失败
	otherIx := buildSwapIx(0x0102030405060708, 1, 1, 1)

	tx := testTx(700, buyIx, transferIx, badIx, otherIx)
	result, fails := ExtractTxEvents(tx)

	assert.Equal(t, 2, fails, "截断与未知 discriminator 都计入解码失败")
	require.Len(t, result.Events, 1)
	assert.Equal(t, KindBuy, result.Events[0].Kind)

	require.Len(t, result.Transfers, 1)
	assert.Equal(t, testKey(0x30), result.Transfers[0].From)
	assert.Equal(t, testKey(0x31), result.Transfers[0].To)
	assert.Equal(t, uint64(5_000_000), result.Transfers[0].Lamports)
}
