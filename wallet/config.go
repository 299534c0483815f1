package wallet

import "github.com/bsv-blockchain/brc100-wallet-core/walletservices"

// Config is the environment-driven configuration for a wallet instance,
// following the teacher's loadConfig convention (jessevdk/go-flags tags
// naming each field's CLI flag and WALLET_-prefixed env var).
type Config struct {
	Chain      string               `long:"chain" description:"network chain: main or test" env:"WALLET_CHAIN" default:"main"`
	DBPath     string               `long:"db-path" description:"storage directory for the embedded wallet database" env:"WALLET_DB_PATH" default:"./wallet-data"`
	RootKeyHex string               `long:"root-key" description:"hex-encoded master private key" env:"WALLET_ROOT_KEY"`
	Services   walletservices.Config
}

func (c Config) network() Network {
	if c.Chain == "test" {
		return NetworkTest
	}
	return NetworkMain
}
