package state

import ethcrypto "github.com/ethereum/go-ethereum/crypto"

// Iterable records keep their raw prefix so storage can range over them;
// singleton records are addressed by hashed keys.
var (
	rewardsAccountPrefix = []byte("rewards/account/")
	stakingAccountPrefix = []byte("staking/account/")
	collectorPrefix      = []byte("collector/state/")
	tokenBalancePrefix   = []byte("token/balance/")
	tokenSupplyPrefix    = []byte("token/supply/")
	pausePrefix          = []byte("pause/")

	rewardsGlobalKey = ethcrypto.Keccak256([]byte("rewards/global"))
	stakingGlobalKey = ethcrypto.Keccak256([]byte("staking/global"))
	emissionStateKey = ethcrypto.Keccak256([]byte("emission/state"))
	stateVersionKey  = ethcrypto.Keccak256([]byte("state/version"))
)

func prefixed(prefix []byte, parts ...[]byte) []byte {
	size := len(prefix)
	for _, part := range parts {
		size += len(part)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, prefix...)
	for _, part := range parts {
		buf = append(buf, part...)
	}
	return buf
}
