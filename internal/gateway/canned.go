package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/matheus3301/inbox/internal/inbox"
)

type cannedReply struct {
	keyword string
	text    string
	sources []Source
}

var cannedReplies = []cannedReply{
	{
		keyword: "refund",
		text:    "Your refund will be processed in 2-3 business days.",
		sources: []Source{{ID: "kb-refunds", Title: "Refund policy"}},
	},
	{
		keyword: "receipt",
		text:    "You can download the receipt from the Orders page, or I can email a copy to the address on file.",
		sources: []Source{{ID: "kb-receipts", Title: "Finding your receipts"}},
	},
	{
		keyword: "shipping",
		text:    "Orders ship within one business day and usually arrive in 3-5 days.",
		sources: []Source{{ID: "kb-shipping", Title: "Shipping times"}},
	},
	{
		keyword: "price",
		text:    "This product costs ₹1299 with free delivery.",
		sources: []Source{{ID: "kb-pricing", Title: "Current pricing"}},
	},
	{
		keyword: "issue",
		text:    "Please elaborate your issue, we're here to help.",
	},
}

var cannedDefaults = []string{
	"Thanks for reaching out! Let me check that for you.",
	"I understand. Could you share a few more details?",
	"Happy to help. One moment while I look into it.",
}

// Canned answers offline from a fixed keyword table. It never fails unless
// the context ends first.
type Canned struct {
	Delay time.Duration
}

func (c *Canned) Ask(ctx context.Context, prompt string, contextMessages []inbox.Message) (Reply, error) {
	if c.Delay > 0 {
		t := time.NewTimer(c.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return Reply{}, classify("canned", ctx.Err())
		}
	}
	return cannedAnswer(prompt, contextMessages), nil
}

// cannedAnswer matches the prompt first, then the latest customer message.
func cannedAnswer(prompt string, contextMessages []inbox.Message) Reply {
	candidates := []string{strings.ToLower(prompt)}
	for i := len(contextMessages) - 1; i >= 0; i-- {
		if contextMessages[i].Sender == inbox.Customer {
			candidates = append(candidates, strings.ToLower(contextMessages[i].Text))
			break
		}
	}
	for _, text := range candidates {
		for _, r := range cannedReplies {
			if strings.Contains(text, r.keyword) {
				return Reply{Text: r.text, Sources: append([]Source(nil), r.sources...)}
			}
		}
	}
	return Reply{Text: cannedDefaults[len(prompt)%len(cannedDefaults)]}
}
