package payment

import (
	"fmt"
	"strconv"

	"github.com/payaction/channel_layer/internal/app/domain/channel"
	paydomain "github.com/payaction/channel_layer/internal/app/domain/payment"
)

// Describe translates a resolved record into its self-describing discovery
// metadata.
func Describe(rec channel.Record) paydomain.Metadata {
	return paydomain.Metadata{
		Icon:        rec.CoverImage,
		Label:       fmt.Sprintf("Pay %s GAS", formatFee(rec.Fee)),
		Title:       rec.ChannelName,
		Description: rec.Description,
	}
}

// Present wraps a built transaction in the signable response envelope with a
// human-readable follow-up message.
func Present(tx paydomain.UnsignedTransaction, rec channel.Record) paydomain.ActionResponse {
	return paydomain.ActionResponse{
		Transaction: tx,
		Message: fmt.Sprintf("Thanks for supporting %s! You will be redirected to %s. Questions? Reach out at %s.",
			rec.ChannelName, rec.ExternalLink, rec.ContactLink),
	}
}

func formatFee(fee float64) string {
	return strconv.FormatFloat(fee, 'f', -1, 64)
}
