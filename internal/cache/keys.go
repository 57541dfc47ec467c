package cache

import "fmt"

const WalletSummaryPrefix = "wallet_summary:"

func WalletSummaryKey(agentID int64) string {
	return fmt.Sprintf("%s%d", WalletSummaryPrefix, agentID)
}
