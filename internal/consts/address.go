package consts

import "launch-sniper-sol/internal/types"

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	// Programs
	SystemProgramStr          = "11111111111111111111111111111111"
	TokenProgramStr           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	TokenProgram2022Str       = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	AssociatedTokenProgramStr = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	ComputeBudgetProgramStr   = "ComputeBudget111111111111111111111111111111"

	// Launchpad: Raydium LaunchLab（bonk.fun 发射台）
	LaunchpadProgramStr = "LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eADduJ3uj"

	// Quote 资产
	WSOLMintStr = "So11111111111111111111111111111111111111112"
)

var (
	// Programs
	SystemProgram          = types.PubkeyFromBase58(SystemProgramStr)
	TokenProgram           = types.PubkeyFromBase58(TokenProgramStr)
	TokenProgram2022       = types.PubkeyFromBase58(TokenProgram2022Str)
	AssociatedTokenProgram = types.PubkeyFromBase58(AssociatedTokenProgramStr)
	ComputeBudgetProgram   = types.PubkeyFromBase58(ComputeBudgetProgramStr)

	// Launchpad Program
	LaunchpadProgram = types.PubkeyFromBase58(LaunchpadProgramStr)

	// Quote 资产
	WSOLMint = types.PubkeyFromBase58(WSOLMintStr)
)

// IsSPLTokenProgram 判断是否为标准 SPL Token 程序（Token / Token2022）
func IsSPLTokenProgram(p types.Pubkey) bool {
	return p == TokenProgram || p == TokenProgram2022
}
