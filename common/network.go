package common

type Network string

const (
	NetworkMainnet  Network = "mainnet"
	NetworkChipnet  Network = "chipnet"
	NetworkTestnet4 Network = "testnet4"
)

var supportedNetworks = map[Network]struct{}{
	NetworkMainnet:  {},
	NetworkChipnet:  {},
	NetworkTestnet4: {},
}

// cashTokensActivationHeight is the first block where token outputs can appear.
var cashTokensActivationHeight = map[Network]int64{
	NetworkMainnet: 792772,
}

func (n Network) IsSupported() bool {
	_, ok := supportedNetworks[n]
	return ok
}

// ActivationHeight returns the CashTokens activation height of the network, or 0 if unknown.
func (n Network) ActivationHeight() int64 {
	return cashTokensActivationHeight[n]
}

func (n Network) String() string {
	return string(n)
}
