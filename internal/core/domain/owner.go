package domain

import "fmt"

// OwnerRef is an opaque tagged reference to the external record that owns a
// wallet. The ledger never interprets Kind beyond deriving account codes and
// writing through the cached wallet balance.
type OwnerRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// WalletCode derives the deterministic code of the owner's wallet account.
func (o OwnerRef) WalletCode() string {
	return fmt.Sprintf("wallet:%s:%s", o.Kind, o.ID)
}

// ReservedCode derives the code of the owner's reserved sub-account.
func (o OwnerRef) ReservedCode() string {
	return o.WalletCode() + ":reserved"
}

// WalletName derives the display name used when the wallet account is created lazily.
func (o OwnerRef) WalletName() string {
	return fmt.Sprintf("Wallet for %s %s", o.Kind, o.ID)
}

// ReservedName derives the display name of the reserved sub-account.
func (o OwnerRef) ReservedName() string {
	return fmt.Sprintf("Reserved funds for %s %s", o.Kind, o.ID)
}

// SourceCode derives the code of the system account credited by deposits.
// The tag comes from the operation's external source, defaulting to "other".
func SourceCode(tag string) string {
	return "source:" + normalizeTag(tag)
}

// SourceName derives the display name of a source account.
func SourceName(tag string) string {
	return normalizeTag(tag) + " source"
}

// SinkCode derives the code of the system account debited by spends and captures.
func SinkCode(tag string) string {
	return "sink:" + normalizeTag(tag)
}

// SinkName derives the display name of a sink account.
func SinkName(tag string) string {
	return normalizeTag(tag) + " sink"
}

func normalizeTag(tag string) string {
	if tag == "" {
		return "other"
	}
	return tag
}
