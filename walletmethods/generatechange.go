package walletmethods

import (
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcwallet/wallet/txrules"

	"github.com/bsv-blockchain/brc100-wallet-core/txsize"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

// SpendableOutput is the coin-selection view of a stored output: only the
// fields generateChange needs, decoupled from walletdb.Output so this
// package stays independent of the storage schema.
type SpendableOutput struct {
	OutputID          uint64
	Satoshis          int64
	UnlockingScriptLen int
}

// ChangeRequest carries the inputs to generateChange: the funding pool
// sorted by the caller's basket policy, the amount the action's explicit
// outputs already commit to spending, the fee rate, and the locking/
// unlocking script sizes generateChange should assume for any change
// output it must add.
//
// NumberOfDesiredUTXOs and MinimumDesiredUTXOValue carry the destination
// basket's hints (walletdb.Basket) and CurrentBasketCount the basket's
// present output count, so generateChange can split change per §4.G
// step 5 instead of always emitting a single change output.
type ChangeRequest struct {
	Available               []SpendableOutput
	TargetSatoshis          int64
	FeeRateSatPerByte       float64
	FixedOutputScriptSizes  []int // locking script sizes of the action's explicit (non-change) outputs
	ChangeLockingScriptSize int

	NumberOfDesiredUTXOs    uint32
	MinimumDesiredUTXOValue int64
	CurrentBasketCount      int
}

// ChangePlan is generateChange's result: which inputs to spend and how
// much change (if any) to return to the wallet. ChangeOutputs holds one
// entry per change output to create (possibly split per step 5); their
// sum equals ChangeSatoshis, which is 0 exactly when ChangeOutputs is empty.
type ChangePlan struct {
	Inputs         []SpendableOutput
	ChangeOutputs  []int64
	ChangeSatoshis int64
	Fee            int64
}

// desiredChangeSplit reports how many equal change outputs step 5 asks
// for: the basket's desired UTXO count minus however many it already
// holds, floored at 1.
func desiredChangeSplit(req ChangeRequest) int {
	if req.NumberOfDesiredUTXOs == 0 {
		return 1
	}
	n := int(req.NumberOfDesiredUTXOs) - req.CurrentBasketCount
	if n < 1 {
		return 1
	}
	return n
}

// relayFeePerKB matches the teacher's btcwallet/wallet/txrules dust-floor
// convention: the standard 1000 sat/kB minimum relay fee used to decide
// whether a would-be change output is worth creating at all.
const relayFeePerKB = btcutil.Amount(1000)

// GenerateChange performs greedy coin selection, ported from
// original_source's utils/generate_change.py: sort the funding pool
// ascending by value (ties by lowest OutputID) and accumulate inputs
// until the target plus estimated fee is met. The check that drops the
// most recently added input re-tests the selection the previous loop
// iteration already rejected, so it never changes the result: the
// selection is always the shortest ascending prefix of the pool that
// covers target plus fee. No other combination, such as a single larger
// output on its own, is considered.
func GenerateChange(req ChangeRequest) (*ChangePlan, error) {
	if req.TargetSatoshis < 0 {
		return nil, walleterr.New(walleterr.InvalidArgument, "walletmethods: negative target satoshis")
	}

	if req.TargetSatoshis == 0 && len(req.FixedOutputScriptSizes) == 0 {
		return &ChangePlan{Fee: 0}, nil
	}

	changeCount := desiredChangeSplit(req)

	pool := make([]SpendableOutput, len(req.Available))
	copy(pool, req.Available)
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Satoshis != pool[j].Satoshis {
			return pool[i].Satoshis < pool[j].Satoshis
		}
		return pool[i].OutputID < pool[j].OutputID
	})

	var selected []SpendableOutput
	var selectedTotal int64

	for _, out := range pool {
		selected = append(selected, out)
		selectedTotal += out.Satoshis

		fee, err := estimateFee(req, selected, changeCount)
		if err != nil {
			return nil, err
		}
		if selectedTotal >= req.TargetSatoshis+fee {
			// Backtrack: if dropping the most recently added (largest so
			// far, since pool is ascending) input still covers the
			// target, prefer the smaller selection.
			if len(selected) > 1 {
				trialSelected := selected[:len(selected)-1]
				trialTotal := selectedTotal - out.Satoshis
				trialFee, err := estimateFee(req, trialSelected, changeCount)
				if err == nil && trialTotal >= req.TargetSatoshis+trialFee {
					selected = trialSelected
					selectedTotal = trialTotal
					fee = trialFee
				}
			}
			return finishPlan(req, selected, selectedTotal, fee, changeCount)
		}
	}

	return nil, walleterr.New(walleterr.InsufficientFunds, "walletmethods: insufficient funds for requested action")
}

func estimateFee(req ChangeRequest, selected []SpendableOutput, changeCount int) (fee int64, err error) {
	inputSizes := make([]int, len(selected))
	for i, s := range selected {
		inputSizes[i] = s.UnlockingScriptLen
	}
	outputSizes := append([]int{}, req.FixedOutputScriptSizes...)
	// Assume changeCount change outputs for the estimate; collapsed to
	// fewer (or none) in finishPlan once the actual remainder is known.
	for i := 0; i < changeCount; i++ {
		outputSizes = append(outputSizes, req.ChangeLockingScriptSize)
	}

	size, err := txsize.TransactionSize(inputSizes, outputSizes)
	if err != nil {
		return 0, err
	}
	return txsize.EstimateFee(size, req.FeeRateSatPerByte), nil
}

// finishPlan turns a selected input set and its estimated fee into a
// ChangePlan, splitting the remainder into up to changeCount equal
// change outputs per §4.G step 5. A remainder at or below the dust floor
// is folded into the fee with no change output. Otherwise the split count
// is reduced until each share clears both the dust floor and the
// basket's MinimumDesiredUTXOValue hint (when set); if no split of two or
// more does, a single change output carries the whole remainder, even
// when it is below MinimumDesiredUTXOValue.
func finishPlan(req ChangeRequest, selected []SpendableOutput, total, fee int64, changeCount int) (*ChangePlan, error) {
	remainder := total - req.TargetSatoshis - fee
	if remainder < 0 {
		return nil, walleterr.New(walleterr.InsufficientFunds, "walletmethods: insufficient funds for requested action")
	}

	dustLimit := int64(txrules.GetDustThreshold(req.ChangeLockingScriptSize, relayFeePerKB))
	floor := dustLimit
	if req.MinimumDesiredUTXOValue > floor {
		floor = req.MinimumDesiredUTXOValue
	}

	if remainder <= dustLimit {
		// Change would be uneconomical to create; fold it into the fee
		// instead, matching the teacher's dust-floor treatment.
		return &ChangePlan{Inputs: selected, Fee: fee + remainder}, nil
	}

	for n := changeCount; n > 1; n-- {
		if remainder/int64(n) >= floor {
			return &ChangePlan{
				Inputs:         selected,
				ChangeOutputs:  splitEqually(remainder, n),
				ChangeSatoshis: remainder,
				Fee:            fee,
			}, nil
		}
	}
	return &ChangePlan{Inputs: selected, ChangeOutputs: []int64{remainder}, ChangeSatoshis: remainder, Fee: fee}, nil
}

// splitEqually divides total into n outputs as evenly as possible,
// folding the division remainder into the first output so the sum is
// exact and every later output is identical, matching step 5's "equal
// outputs" requirement as closely as integer satoshis allow.
func splitEqually(total int64, n int) []int64 {
	base := total / int64(n)
	out := make([]int64, n)
	for i := range out {
		out[i] = base
	}
	out[0] += total - base*int64(n)
	return out
}
