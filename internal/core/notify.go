package core

import (
	"context"
	"fmt"
	"sync"

	"assetcore/pkg/domain"
)

// Message is one outbound notification. Bodies carry both HTML and plain
// text; transports pick whichever they support.
type Message struct {
	To       string
	CC       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Notifier delivers workflow notifications. Delivery is best effort: the
// workflows treat a send failure as a logged event, never a state change.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier records notifications to the structured log instead of
// delivering them. It is the default transport in development setups.
type LogNotifier struct {
	logger domain.Logger
}

// NewLogNotifier constructs a notifier logging each message at info level.
func NewLogNotifier(logger domain.Logger) *LogNotifier {
	if logger == nil {
		logger = domain.NopLogger()
	}
	return &LogNotifier{logger: logger}
}

// Send implements Notifier.
func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.logger.Info("notification", "to", msg.To, "cc", msg.CC, "subject", msg.Subject)
	return nil
}

// MemoryNotifier captures sent messages for assertions in tests.
type MemoryNotifier struct {
	mu   sync.Mutex
	sent []Message
}

// NewMemoryNotifier constructs an empty capture notifier.
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

// Send implements Notifier.
func (n *MemoryNotifier) Send(_ context.Context, msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

// Sent returns a copy of all captured messages in send order.
func (n *MemoryNotifier) Sent() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Message, len(n.sent))
	copy(out, n.sent)
	return out
}

func confirmationRequestMessage(form domain.AccountabilityRecord, asset domain.Asset) Message {
	subject := fmt.Sprintf("Asset assignment confirmation required: %s", asset.AssetTag)
	detail := fmt.Sprintf("%s %s %s (%s)", asset.Brand, asset.Model, asset.Category, asset.AssetTag)
	return Message{
		To:      form.EmployeeEmail,
		Subject: subject,
		HTMLBody: fmt.Sprintf(
			"<p>Hello %s,</p><p>Asset %s has been assigned to you under accountability form <b>%s</b>. Please confirm receipt.</p>",
			form.EmployeeName, detail, form.FormID),
		TextBody: fmt.Sprintf(
			"Hello %s,\n\nAsset %s has been assigned to you under accountability form %s. Please confirm receipt.\n",
			form.EmployeeName, detail, form.FormID),
	}
}

func confirmationReceivedMessage(form domain.AccountabilityRecord) Message {
	subject := fmt.Sprintf("Asset assignment confirmed: %s", form.AssetTag)
	return Message{
		To:      form.EmployeeEmail,
		Subject: subject,
		HTMLBody: fmt.Sprintf(
			"<p>Form <b>%s</b> for asset %s is now confirmed. Keep this message for your records.</p>",
			form.FormID, form.AssetTag),
		TextBody: fmt.Sprintf(
			"Form %s for asset %s is now confirmed. Keep this message for your records.\n",
			form.FormID, form.AssetTag),
	}
}

func returnRecordedMessage(form domain.AccountabilityRecord) Message {
	subject := fmt.Sprintf("Asset return recorded: %s", form.AssetTag)
	return Message{
		To:      form.EmployeeEmail,
		Subject: subject,
		HTMLBody: fmt.Sprintf(
			"<p>The return of asset %s under form <b>%s</b> has been recorded in condition %q.</p>",
			form.AssetTag, form.FormID, form.ReturnCondition),
		TextBody: fmt.Sprintf(
			"The return of asset %s under form %s has been recorded in condition %q.\n",
			form.AssetTag, form.FormID, form.ReturnCondition),
	}
}

func disposalApprovalRequestMessage(req domain.DisposalRecord) Message {
	subject := fmt.Sprintf("Disposal approval required: %s", req.AssetTag)
	return Message{
		To:      req.ApproverEmail,
		Subject: subject,
		HTMLBody: fmt.Sprintf(
			"<p>Hello %s,</p><p>Disposal request <b>%s</b> for asset %s (%s) is awaiting your approval. Reason: %s.</p>",
			req.ApproverName, req.DisposalID, req.AssetTag, req.Method, req.Reason),
		TextBody: fmt.Sprintf(
			"Hello %s,\n\nDisposal request %s for asset %s (%s) is awaiting your approval. Reason: %s.\n",
			req.ApproverName, req.DisposalID, req.AssetTag, req.Method, req.Reason),
	}
}

func disposalDecisionMessage(req domain.DisposalRecord) Message {
	verdict := "rejected"
	if req.Status == domain.DisposalApproved {
		verdict = "approved"
	}
	subject := fmt.Sprintf("Disposal request %s %s", req.DisposalID, verdict)
	return Message{
		To:      req.ApproverEmail,
		Subject: subject,
		HTMLBody: fmt.Sprintf(
			"<p>Disposal request <b>%s</b> for asset %s has been %s.</p>",
			req.DisposalID, req.AssetTag, verdict),
		TextBody: fmt.Sprintf(
			"Disposal request %s for asset %s has been %s.\n",
			req.DisposalID, req.AssetTag, verdict),
	}
}

func disposalCancelledMessage(req domain.DisposalRecord) Message {
	subject := fmt.Sprintf("Disposal request %s cancelled", req.DisposalID)
	return Message{
		To:      req.ApproverEmail,
		Subject: subject,
		HTMLBody: fmt.Sprintf(
			"<p>Disposal request <b>%s</b> for asset %s has been cancelled and needs no further action.</p>",
			req.DisposalID, req.AssetTag),
		TextBody: fmt.Sprintf(
			"Disposal request %s for asset %s has been cancelled and needs no further action.\n",
			req.DisposalID, req.AssetTag),
	}
}
