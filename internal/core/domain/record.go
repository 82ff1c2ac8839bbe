package domain

// RecordInput is the full request accepted by the posting engine. The named
// operations build fixed entry templates and feed them through here; Adjust
// passes caller-supplied entries directly.
type RecordInput struct {
	Kind                TransactionKind
	Description         string
	Entries             []EntryInput // Lock acquisition follows this order
	Owner               *OwnerRef
	ParentTransactionID *string
	ExternalSource      *string
	ExternalID          *string
	Metadata            map[string]string
}
