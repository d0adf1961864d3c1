package config

const (
	// FarmsProgramID is deployed at the same address on every cluster.
	FarmsProgramID = "FarmsPZpWu9i7Kky8tPN37rs2TpmMrAZrC7S7vJa91Hr"

	// Mainnet constants.
	MainnetSolanaRPCURL = "https://api.mainnet-beta.solana.com"

	// Devnet constants.
	DevnetSolanaRPCURL = "https://api.devnet.solana.com"

	// Localnet constants.
	LocalnetSolanaRPCURL = "http://127.0.0.1:8899"
)
