package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadGlobal reads the protocol parameters from path, writing a default file
// when none exists. Unknown keys are rejected.
func LoadGlobal(path string) (*Global, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := &Global{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("config file %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}
	normalise(cfg)
	if err := ValidateConfig(*cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func normalise(cfg *Global) {
	cfg.Staking.Asset = normaliseSymbol(cfg.Staking.Asset)
	cfg.Rewards.Asset = normaliseSymbol(cfg.Rewards.Asset)
	for i := range cfg.Assets {
		cfg.Assets[i].Symbol = normaliseSymbol(cfg.Assets[i].Symbol)
	}
	for i := range cfg.Genesis {
		cfg.Genesis[i].Asset = normaliseSymbol(cfg.Genesis[i].Asset)
	}
	for i := range cfg.Redemption.Assets {
		cfg.Redemption.Assets[i] = normaliseSymbol(cfg.Redemption.Assets[i])
	}
	for i := range cfg.Collectors {
		cfg.Collectors[i].Name = strings.TrimSpace(cfg.Collectors[i].Name)
		cfg.Collectors[i].Kind = strings.ToLower(strings.TrimSpace(cfg.Collectors[i].Kind))
	}
}

func normaliseSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Default returns a self-contained development configuration: a taxed
// principal token feeding both collector variants, an emission reserve, a
// swap reserve and a redemption reserve.
func Default() Global {
	return Global{
		Staking: Staking{Asset: "STK", Vault: "0x00000000000000000000000000000000000005a1"},
		Rewards: Rewards{Asset: "RWD", Vault: "0x00000000000000000000000000000000000007a1", ZeroSharePolicy: "escrow"},
		Emission: Emission{
			Enabled:        true,
			Mode:           "time",
			Interval:       3600,
			RatePerUnit:    "1000000000000000",
			MaxPerEmission: "10000000000000000000",
			BountyPercent:  1,
			Reserve:        "0x00000000000000000000000000000000000000e0",
		},
		Assets: []Asset{
			{
				Symbol: "STK",
				Exempt: []string{"0x00000000000000000000000000000000000000e0"},
				Fees: []FeeRoute{
					{Name: "reinvest", Bps: 100, Collector: "reinvest"},
					{Name: "dividend", Bps: 200, Collector: "dividend"},
				},
			},
			{Symbol: "RWD"},
		},
		Collectors: []Collector{
			{Name: "reinvest", Kind: "reinvest", Address: "0x00000000000000000000000000000000000000c1"},
			{Name: "dividend", Kind: "dividend", Address: "0x00000000000000000000000000000000000000c2", SlippageBps: 100, DeadlineSecs: 300},
		},
		Swap: Swap{
			Reserve: "0x00000000000000000000000000000000000000fe",
			Rates:   []Rate{{From: "STK", To: "RWD", Num: "1", Den: "1"}},
		},
		Redemption: Redemption{
			Enabled: true,
			Reserve: "0x00000000000000000000000000000000000000d0",
			Assets:  []string{"RWD"},
		},
		Genesis: []Allocation{
			{Asset: "STK", Address: "0x00000000000000000000000000000000000000e0", Amount: "1000000000000000000000000"},
			{Asset: "RWD", Address: "0x00000000000000000000000000000000000000fe", Amount: "1000000000000000000000000"},
			{Asset: "RWD", Address: "0x00000000000000000000000000000000000000d0", Amount: "100000000000000000000000"},
		},
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Global, error) {
	cfg := Default()
	if err := persist(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func persist(path string, cfg *Global) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
