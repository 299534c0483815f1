// Package wdk holds the typed BRC-100 argument envelopes the transport
// layer decodes into before handing them to the Wallet Orchestrator: one
// struct per method, each checked by a ValidXxxArgs function (the field
// and output types carry their own Validate methods) performing the
// structural checks (non-empty, well-formed, in-range) that belong at
// the wire boundary rather than inside the orchestrator itself. Grounded
// on the wdk.InternalizeActionArgs / output.Validate() convention from
// the broader wallet-toolbox design this module continues.
package wdk

import "fmt"

// Description is a free-text action/output/label description, length-
// bounded per BRC-100's 5-2000 character rule.
type Description string

// Validate reports whether d is within BRC-100's description length
// bounds.
func (d Description) Validate() error {
	if len(d) < 5 || len(d) > 2000 {
		return fmt.Errorf("must be between 5 and 2000 characters, got %d", len(d))
	}
	return nil
}

// Label is a short tag attached to an action, length-bounded per
// BRC-100's 1-300 character rule.
type Label string

// Validate reports whether l is within BRC-100's label length bounds.
func (l Label) Validate() error {
	if len(l) < 1 || len(l) > 300 {
		return fmt.Errorf("between 1 and 300 characters, got %d", len(l))
	}
	return nil
}

// OutputProtocol names how InternalizeAction should treat one output of
// an externally-supplied transaction.
type OutputProtocol string

const (
	WalletPaymentProtocol   OutputProtocol = "wallet payment"
	BasketInsertionProtocol OutputProtocol = "basket insertion"
)

// CreateActionOutput is one requested output of a CreateActionArgs call.
type CreateActionOutput struct {
	Satoshis      int64
	LockingScript []byte
	Description   Description
}

// Validate checks a requested output is well-formed: a positive value
// and a non-empty locking script, per BRC-100's output shape.
func (o CreateActionOutput) Validate() error {
	if o.Satoshis <= 0 {
		return fmt.Errorf("satoshis must be positive, got %d", o.Satoshis)
	}
	if len(o.LockingScript) == 0 {
		return fmt.Errorf("locking script cannot be empty")
	}
	return o.Description.Validate()
}

// CreateActionArgs is createAction's wire-level argument envelope (§6).
type CreateActionArgs struct {
	Description            Description
	Outputs                []CreateActionOutput
	Labels                 []Label
	NoSend                 bool
	AcceptDelayedBroadcast bool
	FeeRateSatPerByte      float64
}

// ValidCreateActionArgs checks args against §4.B/§6's createAction
// preconditions.
func ValidCreateActionArgs(args *CreateActionArgs) error {
	if err := args.Description.Validate(); err != nil {
		return fmt.Errorf("description must be %w", err)
	}
	if len(args.Outputs) == 0 {
		return fmt.Errorf("outputs cannot be empty")
	}
	for i, o := range args.Outputs {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("invalid output [%d]: %w", i, err)
		}
	}
	for i, l := range args.Labels {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("label [%d] must be %w", i, err)
		}
	}
	if args.FeeRateSatPerByte < 0 {
		return fmt.Errorf("fee rate cannot be negative")
	}
	return nil
}

// SignActionArgs is signAction's wire-level argument envelope (§6).
type SignActionArgs struct {
	Reference string
}

// ValidSignActionArgs checks that Reference was actually supplied.
func ValidSignActionArgs(args *SignActionArgs) error {
	if args.Reference == "" {
		return fmt.Errorf("reference cannot be empty")
	}
	return nil
}

// AbortActionArgs is abortAction's wire-level argument envelope (§6).
type AbortActionArgs struct {
	Reference string
}

// ValidAbortActionArgs checks that Reference was actually supplied.
func ValidAbortActionArgs(args *AbortActionArgs) error {
	if args.Reference == "" {
		return fmt.Errorf("reference cannot be empty")
	}
	return nil
}

// ListActionsArgs is listActions' wire-level argument envelope (§6).
type ListActionsArgs struct {
	Labels        []Label
	IncludeLabels bool
	Limit         int
	Offset        int
}

// ValidListActionsArgs checks limit/offset are non-negative and every
// label is well-formed.
func ValidListActionsArgs(args *ListActionsArgs) error {
	if args.Limit < 0 || args.Offset < 0 {
		return fmt.Errorf("limit and offset cannot be negative")
	}
	for i, l := range args.Labels {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("label [%d] must be %w", i, err)
		}
	}
	return nil
}

// ListOutputsArgs is listOutputs' wire-level argument envelope (§6).
type ListOutputsArgs struct {
	Basket string
	Limit  int
	Offset int
}

// ValidListOutputsArgs checks limit/offset are non-negative.
func ValidListOutputsArgs(args *ListOutputsArgs) error {
	if args.Limit < 0 || args.Offset < 0 {
		return fmt.Errorf("limit and offset cannot be negative")
	}
	return nil
}

// InternalizeOutput is one output of an externally-supplied transaction
// InternalizeActionArgs is asking the wallet to adopt.
type InternalizeOutput struct {
	OutputIndex  uint32
	Protocol     OutputProtocol
	Basket       string
	KeyID        string
	Counterparty string
}

// Validate checks an internalize output names a recognized protocol and,
// for a wallet-payment output, carries the keyID needed to recompute its
// expected locking script.
func (o InternalizeOutput) Validate() error {
	switch o.Protocol {
	case WalletPaymentProtocol:
		if o.KeyID == "" {
			return fmt.Errorf("wallet payment output requires a keyID")
		}
	case BasketInsertionProtocol:
		if o.Basket == "" {
			return fmt.Errorf("basket insertion output requires a basket name")
		}
	default:
		return fmt.Errorf("unexpected protocol: %s", o.Protocol)
	}
	return nil
}

// InternalizeActionArgs is internalizeAction's wire-level argument
// envelope (§6), named after the upstream wdk.InternalizeActionArgs
// convention this package's Validate-method layering is grounded on.
type InternalizeActionArgs struct {
	Tx          []byte
	Outputs     []InternalizeOutput
	Description Description
	Labels      []Label
}

// ValidInternalizeActionArgs checks the structural preconditions
// internalizeAction requires before any script-matching work begins.
func ValidInternalizeActionArgs(args *InternalizeActionArgs) error {
	if len(args.Tx) == 0 {
		return fmt.Errorf("tx cannot be empty")
	}
	if len(args.Outputs) == 0 {
		return fmt.Errorf("outputs cannot be empty")
	}
	if err := args.Description.Validate(); err != nil {
		return fmt.Errorf("description must be %w", err)
	}
	for i, o := range args.Outputs {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("invalid output [%d]: %w", i, err)
		}
	}
	for i, l := range args.Labels {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("label [%d] must be %w", i, err)
		}
	}
	return nil
}

// RelinquishOutputArgs is relinquishOutput's wire-level argument
// envelope (§6).
type RelinquishOutputArgs struct {
	Basket string
	Output string // "txid.vout"
}

// ValidRelinquishOutputArgs checks that both Basket and Output were
// supplied.
func ValidRelinquishOutputArgs(args *RelinquishOutputArgs) error {
	if args.Basket == "" {
		return fmt.Errorf("basket cannot be empty")
	}
	if args.Output == "" {
		return fmt.Errorf("output cannot be empty")
	}
	return nil
}
