package launchpad

import (
	"launch-sniper-sol/internal/logic/core"

	"github.com/near/borsh-go"
)

// initializeArgs 对应 LaunchLab initialize 指令参数（borsh 布局）。
// 曲线参数为 Rust 枚举：Constant(0) / Fixed(1) / Linear(2)。
type initializeArgs struct {
	BaseMintParam mintParams
	CurveParam    curveParams
	VestingParam  vestingParams
}

type mintParams struct {
	Decimals uint8
	Name     string
	Symbol   string
	Uri      string
}

type constantCurve struct {
	Supply                uint64
	TotalBaseSell         uint64
	TotalQuoteFundRaising uint64
	MigrateType           uint8
}

type fixedCurve struct {
	Supply                uint64
	TotalQuoteFundRaising uint64
	MigrateType           uint8
}

type linearCurve struct {
	Supply                uint64
	TotalQuoteFundRaising uint64
	MigrateType           uint8
}

type curveParams struct {
	Enum     borsh.Enum `borsh_enum:"true"`
	Constant constantCurve
	Fixed    fixedCurve
	Linear   linearCurve
}

type vestingParams struct {
	TotalLockedAmount uint64
	CliffPeriod       uint64
	UnlockPeriod      uint64
}

// LaunchLab - Initialize 指令账户布局：
//
// #0 - Payer（创建者钱包，signer）
// #1 - Creator（平台记账上的创建者）
// #2 - Global 配置账户
// #3 - Platform 配置账户
// #4 - Authority（程序派生权限地址）
// #5 - Pool State（池子主账户）
// #6 - Base Mint（新发射的 Token Mint）
// #7 - Quote Mint（WSOL）
// #8+ - vault、metadata、各 program 账户
func decodeInitialize(slot uint64, tx *core.AdaptedTx, ix *core.AdaptedInstruction) (*Event, *DecodeError) {
	if len(ix.Accounts) < 8 {
		return nil, newDecodeError(ErrAccountOutOfRange,
			"initialize accounts too few: got=%d, expect>=8", len(ix.Accounts))
	}

	var args initializeArgs
	if err := borsh.Deserialize(&args, ix.Data[DiscriminatorLen:]); err != nil {
		return nil, newDecodeError(ErrBadPayload, "initialize args deserialize failed: %v", err)
	}

	curve := &CurveSnapshot{}
	switch uint8(args.CurveParam.Enum) {
	case 0:
		c := args.CurveParam.Constant
		curve.CurveType = 0
		curve.Supply = c.Supply
		curve.TotalBaseSell = c.TotalBaseSell
		curve.TotalQuoteFundRaising = c.TotalQuoteFundRaising
		curve.MigrateType = c.MigrateType
	case 1:
		c := args.CurveParam.Fixed
		curve.CurveType = 1
		curve.Supply = c.Supply
		curve.TotalQuoteFundRaising = c.TotalQuoteFundRaising
		curve.MigrateType = c.MigrateType
	case 2:
		c := args.CurveParam.Linear
		curve.CurveType = 2
		curve.Supply = c.Supply
		curve.TotalQuoteFundRaising = c.TotalQuoteFundRaising
		curve.MigrateType = c.MigrateType
	default:
		return nil, newDecodeError(ErrBadPayload, "unknown curve type: %d", uint8(args.CurveParam.Enum))
	}

	payer := ix.Accounts[0]
	pool := ix.Accounts[5]
	baseMint := ix.Accounts[6]

	return &Event{
		Kind:      KindInitialize,
		Slot:      slot,
		Signature: tx.Signature,
		Mint:      baseMint.Key,
		Wallet:    payer.Key,
		Pool:      pool.Key,
		Meta: &TokenMeta{
			Decimals: args.BaseMintParam.Decimals,
			Name:     args.BaseMintParam.Name,
			Symbol:   args.BaseMintParam.Symbol,
			Uri:      args.BaseMintParam.Uri,
		},
		Curve: curve,
		Wallets: []WalletRef{
			{Wallet: payer.Key, Role: payer.Role()},
			{Wallet: baseMint.Key, Role: baseMint.Role()},
			{Wallet: pool.Key, Role: pool.Role()},
		},
	}, nil
}
