package config

// Staking configures the principal pool.
type Staking struct {
	Asset string `toml:"Asset"`
	Vault string `toml:"Vault"`
}

// Rewards configures the reward ledger.
type Rewards struct {
	Asset string `toml:"Asset"`
	Vault string `toml:"Vault"`
	// ZeroSharePolicy is "escrow" (default) or "reject".
	ZeroSharePolicy string `toml:"ZeroSharePolicy"`
}

// Emission configures the throttled reserve release into the pool.
type Emission struct {
	Enabled bool `toml:"Enabled"`
	// Mode is "time" (default) or "block".
	Mode           string `toml:"Mode"`
	Interval       uint64 `toml:"Interval"`
	RatePerUnit    string `toml:"RatePerUnit"`
	MaxPerEmission string `toml:"MaxPerEmission"`
	BountyPercent  uint8  `toml:"BountyPercent"`
	Reserve        string `toml:"Reserve"`
}

// FeeRoute diverts part of every taxed transfer of an asset. Exactly one of
// Collector (a collector name) or Sink (an address) must be set.
type FeeRoute struct {
	Name      string `toml:"Name"`
	Bps       uint32 `toml:"Bps"`
	Collector string `toml:"Collector"`
	Sink      string `toml:"Sink"`
}

// Asset declares a token and its transfer tax.
type Asset struct {
	Symbol string     `toml:"Symbol"`
	Exempt []string   `toml:"Exempt"`
	Fees   []FeeRoute `toml:"Fees"`
}

// Collector declares a fee collector.
type Collector struct {
	Name    string `toml:"Name"`
	Kind    string `toml:"Kind"`
	Address string `toml:"Address"`
	// Dividend collectors only.
	SlippageBps  uint32   `toml:"SlippageBps"`
	DeadlineSecs uint64   `toml:"DeadlineSecs"`
	Path         []string `toml:"Path"`
}

// Rate is a fixed conversion From -> To of Num/Den.
type Rate struct {
	From string `toml:"From"`
	To   string `toml:"To"`
	Num  string `toml:"Num"`
	Den  string `toml:"Den"`
}

// Swap configures the fixed-rate router used by dividend collectors.
type Swap struct {
	Reserve   string `toml:"Reserve"`
	ImpactBps uint32 `toml:"ImpactBps"`
	Rates     []Rate `toml:"Rates"`
}

// Allocation mints Amount of Asset to Address at genesis.
type Allocation struct {
	Asset   string `toml:"Asset"`
	Address string `toml:"Address"`
	Amount  string `toml:"Amount"`
}

// Redemption lets holders burn the staking asset for a pro-rata share of
// the reserve's holdings of Assets.
type Redemption struct {
	Enabled bool     `toml:"Enabled"`
	Reserve string   `toml:"Reserve"`
	Assets  []string `toml:"Assets"`
}

// Pauses lists modules paused at startup.
type Pauses struct {
	Staking    bool `toml:"Staking"`
	Rewards    bool `toml:"Rewards"`
	Collector  bool `toml:"Collector"`
	Emission   bool `toml:"Emission"`
	Redemption bool `toml:"Redemption"`
}

// Global bundles the protocol parameters enforced by ValidateConfig.
type Global struct {
	Staking    Staking      `toml:"Staking"`
	Rewards    Rewards      `toml:"Rewards"`
	Emission   Emission     `toml:"Emission"`
	Assets     []Asset      `toml:"Assets"`
	Collectors []Collector  `toml:"Collectors"`
	Swap       Swap         `toml:"Swap"`
	Redemption Redemption   `toml:"Redemption"`
	Genesis    []Allocation `toml:"Genesis"`
	Pauses     Pauses       `toml:"Pauses"`
}
