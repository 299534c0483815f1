package wdk

import "github.com/bsv-blockchain/brc100-wallet-core/wallet"

func stripLabels(labels []Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}

// ToCreateActionRequest converts a validated CreateActionArgs into the
// orchestrator's CreateActionRequest.
func ToCreateActionRequest(args *CreateActionArgs) wallet.CreateActionRequest {
	outputs := make([]wallet.ActionOutputSpec, len(args.Outputs))
	for i, o := range args.Outputs {
		outputs[i] = wallet.ActionOutputSpec{
			Satoshis:          o.Satoshis,
			LockingScript:     o.LockingScript,
			OutputDescription: string(o.Description),
		}
	}
	return wallet.CreateActionRequest{
		Description:            string(args.Description),
		Outputs:                outputs,
		Labels:                 stripLabels(args.Labels),
		NoSend:                 args.NoSend,
		AcceptDelayedBroadcast: args.AcceptDelayedBroadcast,
		FeeRateSatPerByte:      args.FeeRateSatPerByte,
	}
}

// ToSignActionRequest converts a validated SignActionArgs into the
// orchestrator's SignActionRequest.
func ToSignActionRequest(args *SignActionArgs) wallet.SignActionRequest {
	return wallet.SignActionRequest{Reference: args.Reference}
}

// ToAbortActionRequest converts a validated AbortActionArgs into the
// orchestrator's AbortActionRequest.
func ToAbortActionRequest(args *AbortActionArgs) wallet.AbortActionRequest {
	return wallet.AbortActionRequest{Reference: args.Reference}
}

// ToListActionsRequest converts a validated ListActionsArgs into the
// orchestrator's ListActionsRequest.
func ToListActionsRequest(args *ListActionsArgs) wallet.ListActionsRequest {
	return wallet.ListActionsRequest{
		Labels:        stripLabels(args.Labels),
		IncludeLabels: args.IncludeLabels,
		Limit:         args.Limit,
		Offset:        args.Offset,
	}
}

// ToListOutputsRequest converts a validated ListOutputsArgs into the
// orchestrator's ListOutputsRequest.
func ToListOutputsRequest(args *ListOutputsArgs) wallet.ListOutputsRequest {
	return wallet.ListOutputsRequest{Basket: args.Basket, Limit: args.Limit, Offset: args.Offset}
}

// ToInternalizeActionRequest converts a validated InternalizeActionArgs
// into the orchestrator's InternalizeActionRequest.
func ToInternalizeActionRequest(args *InternalizeActionArgs) wallet.InternalizeActionRequest {
	outputs := make([]wallet.InternalizeOutputSpec, len(args.Outputs))
	for i, o := range args.Outputs {
		outputs[i] = wallet.InternalizeOutputSpec{
			Vout:         o.OutputIndex,
			Basket:       o.Basket,
			KeyID:        o.KeyID,
			Counterparty: o.Counterparty,
		}
	}
	return wallet.InternalizeActionRequest{
		RawTx:       args.Tx,
		Outputs:     outputs,
		Description: string(args.Description),
	}
}

// ToRelinquishOutputRequest converts a validated RelinquishOutputArgs
// into the orchestrator's RelinquishOutputRequest.
func ToRelinquishOutputRequest(args *RelinquishOutputArgs) wallet.RelinquishOutputRequest {
	return wallet.RelinquishOutputRequest{Basket: args.Basket, Output: args.Output}
}
