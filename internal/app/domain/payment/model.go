// Package payment defines the transfer transaction domain model.
package payment

// GasDecimals is the decimal precision of the GAS token.
const GasDecimals = 8

// GasFactor converts whole GAS amounts to the smallest indivisible unit.
const GasFactor = int64(100_000_000)

// Memo is the structured payload attached to a transfer for off-chain
// interpretation. It is serialized to JSON bytes and passed as the data
// argument of the NEP-17 transfer.
type Memo struct {
	Action      string  `json:"action"`
	ChannelName string  `json:"channelName"`
	Fee         float64 `json:"fee"`
}

// UnsignedTransaction is a fully specified GAS transfer lacking only the
// payer's signature. Script is the NEP-17 transfer invocation; Amount is in
// GAS fractions (1e-8). ValidUntilBlock binds the transaction to a fresh
// ledger checkpoint and is fetched per build, never cached.
type UnsignedTransaction struct {
	Script          []byte `json:"script"`
	Nonce           uint32 `json:"nonce"`
	Sender          string `json:"sender"`
	Recipient       string `json:"recipient"`
	Amount          int64  `json:"amount"`
	SignerScope     string `json:"signerScope"`
	ValidUntilBlock uint32 `json:"validUntilBlock"`
	Network         uint32 `json:"network"`
	Memo            []byte `json:"memo"`
}

// Metadata is the self-describing discovery payload for a channel.
type Metadata struct {
	Icon        string `json:"icon"`
	Label       string `json:"label"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ActionResponse wraps an unsigned transaction in the client-facing signable
// envelope together with a human-readable follow-up message.
type ActionResponse struct {
	Transaction UnsignedTransaction `json:"transaction"`
	Message     string              `json:"message"`
}
