package walletmethods

import (
	"context"
	"testing"

	"github.com/bsv-blockchain/brc100-wallet-core/beef"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

type fakeBroadcaster struct {
	outcomes map[string]*BroadcastOutcome
	errs     map[string]error
}

func (f *fakeBroadcaster) PostBeef(ctx context.Context, beefBytes []byte) (*BroadcastOutcome, error) {
	key := string(beefBytes)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return f.outcomes[key], nil
}

func rawTxFixture(marker byte) []byte {
	return []byte{
		0x01, 0x00, 0x00, marker, // version, varied by marker to produce a distinct txid
		0x00,                   // 0 inputs
		0x00,                   // 0 outputs
		0x00, 0x00, 0x00, 0x00, // locktime
	}
}

func TestAttemptToPostReqsToNetworkAcceptsAll(t *testing.T) {
	raw := rawTxFixture(0xAA)
	bundle, err := beef.AssembleAtomic(raw, nil)
	if err != nil {
		t.Fatal(err)
	}
	broadcaster := &fakeBroadcaster{
		outcomes: map[string]*BroadcastOutcome{
			string(bundle): {Accepted: true, TxID: "abc"},
		},
	}
	results := AttemptToPostReqsToNetwork(context.Background(), broadcaster, []PendingBroadcast{
		{ReqID: 1, RawTx: raw},
	})
	if len(results) != 1 || !results[0].Accepted || results[0].TxID != "abc" {
		t.Fatalf("expected accepted result, got %+v", results)
	}
}

func TestAttemptToPostReqsToNetworkReportsRejection(t *testing.T) {
	raw := rawTxFixture(0xBB)
	bundle, err := beef.AssembleAtomic(raw, nil)
	if err != nil {
		t.Fatal(err)
	}
	broadcaster := &fakeBroadcaster{
		errs: map[string]error{
			string(bundle): walleterr.New(walleterr.BroadcastRejected, "double spend"),
		},
	}
	results := AttemptToPostReqsToNetwork(context.Background(), broadcaster, []PendingBroadcast{
		{ReqID: 2, RawTx: raw},
	})
	if len(results) != 1 || results[0].Accepted || results[0].Error == "" {
		t.Fatalf("expected rejected result with an error message, got %+v", results)
	}
}
