// Package walletservices implements the Services Facade: a uniform
// client over the broadcaster (ARC), the header service (BHS), and
// miner-API raw-tx/merkle-path lookups, all driven by
// github.com/cenkalti/backoff/v4's jittered exponential backoff the way
// the teacher's sweep package drives on-chain confirmation polling. Batch
// submissions pass through a github.com/lightningnetwork/lnd/queue intake
// queue and are posted one at a time.
package walletservices

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cenkalti/backoff/v4"
	"github.com/lightningnetwork/lnd/queue"

	"github.com/bsv-blockchain/brc100-wallet-core/beef"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

// log is the package-level leveled logger, silent until a caller wires a
// backend via UseLogger, following the teacher's per-package log.go
// convention.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the Services Facade.
func UseLogger(logger btclog.Logger) { log = logger }

// Config holds the environment-driven settings consumed by the Services
// Facade constructor (§6's WALLET_ARC_URL, WALLET_ARC_API_KEY,
// WALLET_BHS_URL) plus retry/pool tuning.
type Config struct {
	ARCURL         string `long:"arc-url" description:"ARC broadcaster base URL" env:"WALLET_ARC_URL"`
	ARCAPIKey      string `long:"arc-api-key" description:"ARC API key" env:"WALLET_ARC_API_KEY"`
	BHSURL         string `long:"bhs-url" description:"Block Headers Service base URL" env:"WALLET_BHS_URL"`
	MaxAttempts    int    `long:"max-attempts" description:"maximum retry attempts for transient service errors" default:"5"`
	WorkerPoolSize int    `long:"worker-pool-size" description:"bounded worker pool size for batch submissions" default:"8"`
}

// Facade is the Services Facade implementation. It is stateless beyond
// its HTTP client and can be shared freely across concurrent wallet
// method calls (§5).
type Facade struct {
	cfg    Config
	client *http.Client
}

// New constructs a Services Facade from cfg.
func New(cfg Config) *Facade {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 8
	}
	return &Facade{cfg: cfg, client: &http.Client{Timeout: 30 * time.Second}}
}

// backoffPolicy builds the jittered exponential backoff policy used for
// every retried call, bounded to maxAttempts tries.
func (f *Facade) backoffPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	withCtx := backoff.WithContext(b, ctx)
	return backoff.WithMaxRetries(withCtx, uint64(f.cfg.MaxAttempts-1))
}

// isRetriable classifies an HTTP status per the §4.E retry policy:
// network errors and 5xx retry; 4xx (except 429) do not.
func isRetriable(statusCode int, err error) bool {
	if err != nil {
		return true
	}
	if statusCode == 429 {
		return true
	}
	return statusCode >= 500
}

// Height is the current chain tip, per getHeight's wire shape.
type Height struct {
	Height uint32 `json:"height"`
}

// GetHeight returns the current chain tip from BHS.
func (f *Facade) GetHeight(ctx context.Context) (uint32, error) {
	var result Height
	err := f.getJSONWithRetry(ctx, f.cfg.BHSURL+"/chain/tip/height", &result)
	if err != nil {
		return 0, err
	}
	return result.Height, nil
}

// GetRawTx fetches a raw transaction by id, with bounded retry.
func (f *Facade) GetRawTx(ctx context.Context, txid chainhash.Hash) ([]byte, error) {
	var result struct {
		RawTxHex string `json:"rawTxHex"`
	}
	if err := f.getJSONWithRetry(ctx, f.cfg.ARCURL+"/tx/"+txid.String(), &result); err != nil {
		return nil, err
	}
	return decodeHexString(result.RawTxHex)
}

// GetMerklePathForTransaction returns the merkle path for txid, or nil
// if the transaction is unmined. Best-effort: errors from the
// underlying call are surfaced so AssembleForTxID can decide whether to
// tolerate them.
func (f *Facade) GetMerklePathForTransaction(ctx context.Context, txid chainhash.Hash) (*beef.MerklePath, error) {
	var result struct {
		BlockHeight uint32 `json:"blockHeight"`
		Path        []struct {
			Hash  string `json:"hash"`
			Right bool   `json:"right"`
		} `json:"path"`
		Unmined bool `json:"unmined"`
	}
	if err := f.getJSONWithRetry(ctx, f.cfg.BHSURL+"/merkle-path/"+txid.String(), &result); err != nil {
		return nil, err
	}
	if result.Unmined {
		return nil, nil
	}

	path := make([]beef.MerkleLeaf, len(result.Path))
	for i, leaf := range result.Path {
		h, err := chainhash.NewHashFromStr(leaf.Hash)
		if err != nil {
			return nil, walleterr.Newf(walleterr.ServiceUnavailable, "walletservices: invalid merkle leaf hash: %v", err)
		}
		path[i] = beef.MerkleLeaf{Hash: *h, SubjectIsRight: leaf.Right}
	}
	return &beef.MerklePath{BlockHeight: result.BlockHeight, Path: path}, nil
}

// UTXOStatusDetail is one entry of GetUTXOStatus's response.
type UTXOStatusDetail struct {
	Outpoint string `json:"outpoint"`
	Spent    bool   `json:"spent"`
}

// GetUTXOStatus reports spent/unspent status for every output of a
// locking script, keyed by its hash.
func (f *Facade) GetUTXOStatus(ctx context.Context, scriptHash string) ([]UTXOStatusDetail, error) {
	var result struct {
		Details []UTXOStatusDetail `json:"details"`
	}
	if err := f.getJSONWithRetry(ctx, f.cfg.BHSURL+"/utxo-status/"+scriptHash, &result); err != nil {
		return nil, err
	}
	return result.Details, nil
}

// ScriptHistory is GetScriptHistory's response shape.
type ScriptHistory struct {
	Confirmed   []string `json:"confirmed"`
	Unconfirmed []string `json:"unconfirmed"`
}

// GetScriptHistory returns the confirmed/unconfirmed txids touching a
// locking script hash.
func (f *Facade) GetScriptHistory(ctx context.Context, scriptHash string) (*ScriptHistory, error) {
	var result ScriptHistory
	if err := f.getJSONWithRetry(ctx, f.cfg.BHSURL+"/script-history/"+scriptHash, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TransactionStatus is GetTransactionStatus's response shape.
type TransactionStatus struct {
	Status        string `json:"status"`
	Confirmations int    `json:"confirmations,omitempty"`
}

// GetTransactionStatus reports a transaction's current broadcast/confirmation state.
func (f *Facade) GetTransactionStatus(ctx context.Context, txid chainhash.Hash) (*TransactionStatus, error) {
	var result TransactionStatus
	if err := f.getJSONWithRetry(ctx, f.cfg.ARCURL+"/tx/"+txid.String()+"/status", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PostBeefResult is the per-submission outcome shared by PostBeef and
// PostBeefArray.
type PostBeefResult struct {
	Accepted bool   `json:"accepted"`
	TxID     string `json:"txid"`
	Message  string `json:"message"`
}

// PostBeef submits a single BEEF/AtomicBEEF binary to ARC. A terminal
// rejection is never retried; transient network/5xx errors are, up to
// MaxAttempts.
func (f *Facade) PostBeef(ctx context.Context, beefBytes []byte) (*PostBeefResult, error) {
	var result PostBeefResult
	err := f.postWithRetry(ctx, f.cfg.ARCURL+"/tx", beefBytes, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PostBeefArray submits beefs as a batch. Each item passes through an
// lnd/queue.ConcurrentQueue (WorkerPoolSize sets its buffer size) and is
// posted by the calling goroutine, one submission at a time, so the batch
// never has more than one request to ARC in flight. Results preserve the
// input order; a per-element failure does not abort the others.
func (f *Facade) PostBeefArray(ctx context.Context, beefs [][]byte) ([]*PostBeefResult, error) {
	results := make([]*PostBeefResult, len(beefs))

	type job struct {
		index int
		data  []byte
	}

	q := queue.NewConcurrentQueue(f.cfg.WorkerPoolSize)
	q.Start()
	defer q.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i, b := range beefs {
			q.ChanIn() <- job{index: i, data: b}
		}
	}()

	remaining := len(beefs)
	for remaining > 0 {
		select {
		case <-ctx.Done():
			return results, walleterr.New(walleterr.Canceled, "walletservices: post_beef_array canceled")
		case item := <-q.ChanOut():
			j := item.(job)
			res, err := f.PostBeef(ctx, j.data)
			if err != nil {
				res = &PostBeefResult{Accepted: false, Message: err.Error()}
			}
			results[j.index] = res
			remaining--
		}
	}
	<-done
	return results, nil
}

// ChainTracker is an opaque handle used by BEEF verification; the core
// treats it as a capability token, not a structure it inspects.
type ChainTracker struct {
	facade *Facade
}

// GetChainTracker returns the opaque chain-tracker handle for this
// Facade.
func (f *Facade) GetChainTracker() *ChainTracker {
	return &ChainTracker{facade: f}
}

func (f *Facade) getJSONWithRetry(ctx context.Context, url string, out interface{}) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(walleterr.Newf(walleterr.InvalidArgument, "walletservices: %v", err))
		}
		f.setHeaders(req)

		resp, err := f.client.Do(req)
		if isRetriable(statusCodeOf(resp), err) {
			if err != nil {
				return walleterr.Newf(walleterr.ServiceUnavailable, "walletservices: %v", err)
			}
			return walleterr.Newf(walleterr.ServiceUnavailable, "walletservices: status %d", resp.StatusCode)
		}
		if err != nil {
			return backoff.Permanent(walleterr.Newf(walleterr.ServiceUnavailable, "walletservices: %v", err))
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return backoff.Permanent(walleterr.Newf(walleterr.InvalidArgument, "walletservices: status %d", resp.StatusCode))
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	if err := backoff.Retry(operation, f.backoffPolicy(ctx)); err != nil {
		log.Errorf("service call to %s failed: %v", url, err)
		return asWalletErr(err)
	}
	return nil
}

func (f *Facade) postWithRetry(ctx context.Context, url string, body []byte, out interface{}) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(walleterr.Newf(walleterr.InvalidArgument, "walletservices: %v", err))
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		f.setHeaders(req)

		resp, err := f.client.Do(req)
		if isRetriable(statusCodeOf(resp), err) {
			if err != nil {
				return walleterr.Newf(walleterr.BroadcastTransient, "walletservices: %v", err)
			}
			return walleterr.Newf(walleterr.BroadcastTransient, "walletservices: status %d", resp.StatusCode)
		}
		if err != nil {
			return backoff.Permanent(walleterr.Newf(walleterr.BroadcastRejected, "walletservices: %v", err))
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return backoff.Permanent(walleterr.Newf(walleterr.BroadcastRejected, "walletservices: status %d", resp.StatusCode))
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	if err := backoff.Retry(operation, f.backoffPolicy(ctx)); err != nil {
		return asWalletErr(err)
	}
	return nil
}

func (f *Facade) setHeaders(req *http.Request) {
	if f.cfg.ARCAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.cfg.ARCAPIKey)
	}
}

func statusCodeOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func asWalletErr(err error) error {
	if e, ok := err.(*walleterr.Error); ok {
		return e
	}
	return walleterr.Newf(walleterr.ServiceUnavailable, "walletservices: %v", err)
}

func decodeHexString(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, walleterr.Newf(walleterr.ServiceUnavailable, "walletservices: invalid raw tx hex: %v", err)
	}
	return b, nil
}
