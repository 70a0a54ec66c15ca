package filter

import (
	"math/big"
	"strings"

	"launch-sniper-sol/internal/config"
	"launch-sniper-sol/internal/logic/bundle"
	"launch-sniper-sol/internal/logic/launchpad"
	"launch-sniper-sol/internal/types"
)

const lamportsPerSol = 1_000_000_000

// MetadataProvider 提供代币元数据的链下补充信息（社交链接等）。
// 实现方自行决定数据来源（元数据 JSON 缓存、第三方 API），
// 过滤引擎只消费结论。
type MetadataProvider interface {
	HasSocialLinks(uri string) bool
}

// Result 为过滤判定结果。未通过时 FailedRule 记录第一条失败的规则名，
// 规则短路求值，后续规则不再执行。
type Result struct {
	Pass       bool
	FailedRule string
}

func pass() Result            { return Result{Pass: true} }
func fail(rule string) Result { return Result{FailedRule: rule} }

// Engine 对 Qualified Bundle 做纯函数式过滤判定。
// 规则只读取 Bundle 已有字段与静态配置，不做任何链上查询。
type Engine struct {
	conf               config.FilterConfig
	minDistinctWallets int
	meta               MetadataProvider // 可为 nil，此时社交规则跳过
}

func NewEngine(conf config.FilterConfig, minDistinctWallets int, meta MetadataProvider) (*Engine, error) {
	if conf.ListsFile != "" {
		lists, err := LoadLists(conf.ListsFile)
		if err != nil {
			return nil, err
		}
		conf.NameAllowList = lists.Allow
		conf.NameDenyList = lists.Deny
	}
	return &Engine{conf: conf, minDistinctWallets: minDistinctWallets, meta: meta}, nil
}

// Evaluate 按固定顺序执行规则，第一条失败即返回
func (e *Engine) Evaluate(b *bundle.Bundle) Result {
	if b.DistinctWallets() < e.minDistinctWallets {
		return fail("min_distinct_wallets")
	}
	if !e.checkDominance(b) {
		return fail("wallet_dominance")
	}
	if !e.checkDevBuy(b) {
		return fail("dev_buy_limit")
	}
	if !e.checkTokenName(b) {
		return fail("token_name")
	}
	if !e.checkSocial(b) {
		return fail("social_links")
	}
	return pass()
}

// checkDominance 单钱包 buy 金额占比不得超过上限。0 表示不限制。
func (e *Engine) checkDominance(b *bundle.Bundle) bool {
	limit := e.conf.MaxWalletDominancePct
	if limit <= 0 || limit >= 100 {
		return true
	}
	total := b.TotalBuyAmountIn()
	if total == 0 {
		return true
	}

	perWallet := make(map[types.Pubkey]uint64, len(b.Contributions))
	var maxAmount uint64
	for _, c := range b.Contributions {
		if c.Kind != launchpad.KindBuy {
			continue
		}
		perWallet[c.Wallet] += c.AmountIn
		if perWallet[c.Wallet] > maxAmount {
			maxAmount = perWallet[c.Wallet]
		}
	}
	// maxAmount/total <= limit/100。金额直接来自指令载荷，
	// uint64 乘法可被恶意大额回绕，必须走 big.Int
	lhs := new(big.Int).Mul(new(big.Int).SetUint64(maxAmount), big.NewInt(100))
	rhs := new(big.Int).Mul(new(big.Int).SetUint64(total), big.NewInt(int64(limit)))
	return lhs.Cmp(rhs) <= 0
}

// checkDevBuy 创建者自买金额不得超过配置上限
func (e *Engine) checkDevBuy(b *bundle.Bundle) bool {
	if !e.conf.DevBuyCheck {
		return true
	}
	limitLamports := uint64(e.conf.DevBuyMaxSol * lamportsPerSol)
	return b.WalletAmountIn(b.Initializer) <= limitLamports
}

// checkTokenName 名称先过 deny 再过 allow；allow 为空表示不限制
func (e *Engine) checkTokenName(b *bundle.Bundle) bool {
	if !e.conf.TokenNameCheck || b.Meta == nil {
		return true
	}
	name := strings.ToLower(b.Meta.Name)
	for _, deny := range e.conf.NameDenyList {
		if deny != "" && strings.Contains(name, strings.ToLower(deny)) {
			return false
		}
	}
	if len(e.conf.NameAllowList) == 0 {
		return true
	}
	for _, allow := range e.conf.NameAllowList {
		if allow != "" && strings.Contains(name, strings.ToLower(allow)) {
			return true
		}
	}
	return false
}

// checkSocial 元数据须存在社交链接。未配置提供方时跳过。
func (e *Engine) checkSocial(b *bundle.Bundle) bool {
	if !e.conf.SocialCheck || e.meta == nil || b.Meta == nil {
		return true
	}
	return e.meta.HasSocialLinks(b.Meta.Uri)
}
