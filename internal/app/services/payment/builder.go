// Package payment builds unsigned GAS transfer transactions for resolved
// channels. This is the only component that touches the ledger network.
package payment

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	nio "github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/callflag"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/emit"

	"github.com/payaction/channel_layer/internal/app/domain/channel"
	paydomain "github.com/payaction/channel_layer/internal/app/domain/payment"
	apperr "github.com/payaction/channel_layer/internal/errors"
	"github.com/payaction/channel_layer/pkg/logger"
)

// gasTokenLE is the native GAS contract hash in little-endian hex.
const gasTokenLE = "d2a4cff31913016155e38e474a2c06d08be276cf"

// DefaultValidUntilIncrement is how many blocks past the current height the
// built transaction stays valid. Matches the network's default transaction
// lifetime (~24h at 15s blocks).
const DefaultValidUntilIncrement = 5760

// MemoAction tags the memo payload of every channel payment.
const MemoAction = "channel-payment"

// Ledger is the narrow view of the chain client the builder depends on.
type Ledger interface {
	BlockCount(ctx context.Context) (uint32, error)
	GasBalance(ctx context.Context, addr string) (int64, error)
}

// BuilderConfig holds transaction construction policy.
type BuilderConfig struct {
	Network             uint32
	ValidUntilIncrement uint32
	SkipBalanceCheck    bool
}

// Builder constructs unsigned transfer transactions.
type Builder struct {
	ledger Ledger
	cfg    BuilderConfig
	log    *logger.Logger
}

// NewBuilder constructs a transaction builder.
func NewBuilder(ledger Ledger, cfg BuilderConfig, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.NewDefault("payment")
	}
	if cfg.ValidUntilIncrement == 0 {
		cfg.ValidUntilIncrement = DefaultValidUntilIncrement
	}
	return &Builder{ledger: ledger, cfg: cfg, log: log}
}

// Build produces an unsigned GAS transfer paying the channel fee from payer
// to the channel owner, with the channel memo as the transfer data argument.
// The ledger checkpoint is fetched fresh on every call.
func (b *Builder) Build(ctx context.Context, rec channel.Record, payerAddress string) (paydomain.UnsignedTransaction, error) {
	payerAddress = strings.TrimSpace(payerAddress)
	payer, err := address.StringToUint160(payerAddress)
	if err != nil {
		return paydomain.UnsignedTransaction{}, apperr.InvalidPayerAddress("account is not a valid Neo N3 address")
	}

	// Owner was validated at registration; re-parse defensively.
	owner, err := address.StringToUint160(strings.TrimSpace(rec.OwnerAddress))
	if err != nil {
		return paydomain.UnsignedTransaction{}, apperr.InvalidAddress("channel owner address is not a valid Neo N3 address")
	}

	// Convert the fee to GAS fractions once; only integers from here on.
	amount := int64(math.Round(rec.Fee * float64(paydomain.GasFactor)))

	if !b.cfg.SkipBalanceCheck {
		balance, err := b.ledger.GasBalance(ctx, payerAddress)
		if err != nil {
			b.log.WithError(err).Warn("balance lookup failed")
			return paydomain.UnsignedTransaction{}, apperr.LedgerUnavailable("ledger node unavailable")
		}
		if balance < amount {
			return paydomain.UnsignedTransaction{}, apperr.InsufficientFunds(
				fmt.Sprintf("payer holds %d GAS fractions, fee requires %d", balance, amount))
		}
	}

	memo, err := json.Marshal(paydomain.Memo{
		Action:      MemoAction,
		ChannelName: rec.ChannelName,
		Fee:         rec.Fee,
	})
	if err != nil {
		return paydomain.UnsignedTransaction{}, fmt.Errorf("encode memo: %w", err)
	}

	script, err := transferScript(payer, owner, amount, memo)
	if err != nil {
		return paydomain.UnsignedTransaction{}, fmt.Errorf("build transfer script: %w", err)
	}

	height, err := b.ledger.BlockCount(ctx)
	if err != nil {
		b.log.WithError(err).Warn("block count lookup failed")
		return paydomain.UnsignedTransaction{}, apperr.LedgerUnavailable("ledger node unavailable")
	}

	tx := paydomain.UnsignedTransaction{
		Script:          script,
		Nonce:           randomNonce(),
		Sender:          address.Uint160ToString(payer),
		Recipient:       address.Uint160ToString(owner),
		Amount:          amount,
		SignerScope:     transaction.CalledByEntry.String(),
		ValidUntilBlock: height + b.cfg.ValidUntilIncrement,
		Network:         b.cfg.Network,
		Memo:            memo,
	}

	b.log.WithField("route", rec.Route).
		WithField("amount", amount).
		WithField("valid_until", tx.ValidUntilBlock).
		Debug("payment transaction built")
	return tx, nil
}

// transferScript emits the NEP-17 GAS transfer(payer, owner, amount, memo)
// invocation script.
func transferScript(payer, owner util.Uint160, amount int64, memo []byte) ([]byte, error) {
	gasHash, err := util.Uint160DecodeStringLE(gasTokenLE)
	if err != nil {
		return nil, err
	}

	w := nio.NewBufBinWriter()
	emit.AppCall(w.BinWriter, gasHash, "transfer", callflag.All, payer, owner, amount, memo)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

func randomNonce() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(buf[:])
}
