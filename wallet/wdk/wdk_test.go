package wdk

import "testing"

func TestDescriptionValidateEnforcesLengthBounds(t *testing.T) {
	if err := Description("too short").Validate(); err != nil {
		t.Errorf("expected a 9-character description to be valid, got %v", err)
	}
	if err := Description("abcd").Validate(); err == nil {
		t.Error("expected a 4-character description to be rejected")
	}
	long := make([]byte, 2001)
	if err := Description(long).Validate(); err == nil {
		t.Error("expected a 2001-character description to be rejected")
	}
}

func TestLabelValidateEnforcesLengthBounds(t *testing.T) {
	if err := Label("x").Validate(); err != nil {
		t.Errorf("expected a 1-character label to be valid, got %v", err)
	}
	if err := Label("").Validate(); err == nil {
		t.Error("expected an empty label to be rejected")
	}
	long := make([]byte, 301)
	if err := Label(long).Validate(); err == nil {
		t.Error("expected a 301-character label to be rejected")
	}
}

func TestCreateActionOutputValidateRejectsNonPositiveSatoshis(t *testing.T) {
	out := CreateActionOutput{Satoshis: 0, LockingScript: []byte{0x51}, Description: "valid desc"}
	if err := out.Validate(); err == nil {
		t.Error("expected a zero-satoshi output to be rejected")
	}
}

func TestCreateActionOutputValidateRejectsEmptyLockingScript(t *testing.T) {
	out := CreateActionOutput{Satoshis: 1000, Description: "valid desc"}
	if err := out.Validate(); err == nil {
		t.Error("expected an output with no locking script to be rejected")
	}
}

func validOutput() CreateActionOutput {
	return CreateActionOutput{Satoshis: 1000, LockingScript: []byte{0x51}, Description: "valid desc"}
}

func TestValidCreateActionArgsRejectsEmptyOutputs(t *testing.T) {
	args := &CreateActionArgs{Description: "valid desc"}
	if err := ValidCreateActionArgs(args); err == nil {
		t.Error("expected empty outputs to be rejected")
	}
}

func TestValidCreateActionArgsRejectsNegativeFeeRate(t *testing.T) {
	args := &CreateActionArgs{
		Description:       "valid desc",
		Outputs:           []CreateActionOutput{validOutput()},
		FeeRateSatPerByte: -1,
	}
	if err := ValidCreateActionArgs(args); err == nil {
		t.Error("expected a negative fee rate to be rejected")
	}
}

func TestValidCreateActionArgsAcceptsWellFormedArgs(t *testing.T) {
	args := &CreateActionArgs{
		Description: "valid desc",
		Outputs:     []CreateActionOutput{validOutput()},
		Labels:      []Label{"tag"},
	}
	if err := ValidCreateActionArgs(args); err != nil {
		t.Errorf("expected well-formed args to be accepted, got %v", err)
	}
}

func TestValidSignActionArgsRejectsEmptyReference(t *testing.T) {
	if err := ValidSignActionArgs(&SignActionArgs{}); err == nil {
		t.Error("expected an empty reference to be rejected")
	}
	if err := ValidSignActionArgs(&SignActionArgs{Reference: "ref-1"}); err != nil {
		t.Errorf("expected a non-empty reference to be accepted, got %v", err)
	}
}

func TestValidAbortActionArgsRejectsEmptyReference(t *testing.T) {
	if err := ValidAbortActionArgs(&AbortActionArgs{}); err == nil {
		t.Error("expected an empty reference to be rejected")
	}
}

func TestValidListActionsArgsRejectsNegativePagination(t *testing.T) {
	if err := ValidListActionsArgs(&ListActionsArgs{Limit: -1}); err == nil {
		t.Error("expected a negative limit to be rejected")
	}
	if err := ValidListActionsArgs(&ListActionsArgs{Offset: -1}); err == nil {
		t.Error("expected a negative offset to be rejected")
	}
	if err := ValidListActionsArgs(&ListActionsArgs{Labels: []Label{""}}); err == nil {
		t.Error("expected an invalid label to be rejected")
	}
}

func TestValidListOutputsArgsRejectsNegativePagination(t *testing.T) {
	if err := ValidListOutputsArgs(&ListOutputsArgs{Limit: -1}); err == nil {
		t.Error("expected a negative limit to be rejected")
	}
}

func TestInternalizeOutputValidateRequiresProtocolSpecificFields(t *testing.T) {
	if err := InternalizeOutput{Protocol: WalletPaymentProtocol}.Validate(); err == nil {
		t.Error("expected a wallet-payment output with no keyID to be rejected")
	}
	if err := InternalizeOutput{Protocol: WalletPaymentProtocol, KeyID: "k"}.Validate(); err != nil {
		t.Errorf("expected a well-formed wallet-payment output to be accepted, got %v", err)
	}
	if err := InternalizeOutput{Protocol: BasketInsertionProtocol}.Validate(); err == nil {
		t.Error("expected a basket-insertion output with no basket to be rejected")
	}
	if err := InternalizeOutput{Protocol: BasketInsertionProtocol, Basket: "b"}.Validate(); err != nil {
		t.Errorf("expected a well-formed basket-insertion output to be accepted, got %v", err)
	}
	if err := InternalizeOutput{Protocol: "unknown"}.Validate(); err == nil {
		t.Error("expected an unrecognized protocol to be rejected")
	}
}

func TestValidInternalizeActionArgsRejectsEmptyTxOrOutputs(t *testing.T) {
	base := &InternalizeActionArgs{
		Tx:          []byte{0x01},
		Outputs:     []InternalizeOutput{{Protocol: WalletPaymentProtocol, KeyID: "k"}},
		Description: "valid desc",
	}
	if err := ValidInternalizeActionArgs(base); err != nil {
		t.Errorf("expected well-formed args to be accepted, got %v", err)
	}

	noTx := &InternalizeActionArgs{Outputs: base.Outputs, Description: base.Description}
	if err := ValidInternalizeActionArgs(noTx); err == nil {
		t.Error("expected empty tx bytes to be rejected")
	}

	noOutputs := &InternalizeActionArgs{Tx: base.Tx, Description: base.Description}
	if err := ValidInternalizeActionArgs(noOutputs); err == nil {
		t.Error("expected empty outputs to be rejected")
	}
}

func TestValidRelinquishOutputArgsRequiresBasketAndOutput(t *testing.T) {
	if err := ValidRelinquishOutputArgs(&RelinquishOutputArgs{}); err == nil {
		t.Error("expected empty basket and output to be rejected")
	}
	if err := ValidRelinquishOutputArgs(&RelinquishOutputArgs{Basket: "default"}); err == nil {
		t.Error("expected a missing output reference to be rejected")
	}
	if err := ValidRelinquishOutputArgs(&RelinquishOutputArgs{Basket: "default", Output: "txid.0"}); err != nil {
		t.Errorf("expected well-formed args to be accepted, got %v", err)
	}
}
