// Command walletcli is a control-plane client for an embedded BRC-100
// wallet core, grounded on the teacher's cmd/lncli: a urfave/cli app whose
// global options load from the environment with jessevdk/go-flags before
// any subcommand runs, mirroring lncli's main.go flag-then-command shape.
//
// Unlike lncli, walletcli does not dial a remote daemon over gRPC: it
// opens the wallet's own storage directly. Most commands covered by the
// BRC-100 binary ABI (package abiwire) round-trip their request through
// abiwire's Encode/Decode before dispatching, and the session and crypto
// commands round-trip their response as well, so the wire codec is
// exercised rather than left unused. list-failed-actions and get-balance
// call the wallet without the codec.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/btcsuite/btcd/btcec/v2"
	flags "github.com/jessevdk/go-flags"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/urfave/cli"

	"github.com/bsv-blockchain/brc100-wallet-core/abiwire"
	"github.com/bsv-blockchain/brc100-wallet-core/keyderiver"
	"github.com/bsv-blockchain/brc100-wallet-core/wallet"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[walletcli] %v\n", err)
	os.Exit(1)
}

// loadConfig resolves wallet.Config purely from the environment and its
// field defaults, the way lnd.go's go-flags parser resolves daemon config,
// except walletcli never takes config from argv: argv is urfave/cli's.
func loadConfig() (wallet.Config, error) {
	var cfg wallet.Config
	if _, err := flags.NewParser(&cfg, flags.Default).ParseArgs([]string{}); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// openWallet resolves the master key (from WALLET_ROOT_KEY, or a freshly
// generated ephemeral one if unset) and opens the wallet's storage.
func openWallet() *wallet.Wallet {
	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}

	var masterPriv *btcec.PrivateKey
	if cfg.RootKeyHex != "" {
		keyBytes, err := hex.DecodeString(cfg.RootKeyHex)
		if err != nil {
			fatal(fmt.Errorf("WALLET_ROOT_KEY is not valid hex: %w", err))
		}
		masterPriv, _ = btcec.PrivKeyFromBytes(keyBytes)
	} else {
		masterPriv, err = btcec.NewPrivateKey()
		if err != nil {
			fatal(err)
		}
		fmt.Fprintf(os.Stderr, "[walletcli] no WALLET_ROOT_KEY set, using an ephemeral key "+
			"(identity will not persist across runs): %x\n", masterPriv.Serialize())
	}

	w, err := wallet.New(cfg, masterPriv, clock.NewDefaultClock())
	if err != nil {
		fatal(err)
	}
	return w
}

var keyContextFlags = []cli.Flag{
	cli.StringFlag{Name: "protocol", Value: "wallet payment", Usage: "BRC-42 protocol name"},
	cli.IntFlag{Name: "security-level", Value: 2, Usage: "BRC-42 protocol security level, 0-2"},
	cli.StringFlag{Name: "key-id", Usage: "BRC-42 key id"},
	cli.StringFlag{Name: "counterparty", Value: keyderiver.CounterpartySelf, Usage: "counterparty identity key, or \"self\""},
}

func keyContextFromFlags(ctx *cli.Context) abiwire.KeyContext {
	return abiwire.KeyContext{
		SecurityLevel: byte(ctx.Int("security-level")),
		ProtocolName:  ctx.String("protocol"),
		KeyID:         ctx.String("key-id"),
		Counterparty:  ctx.String("counterparty"),
	}
}

// roundTripRequest frames req through EncodeRequestFrame/DecodeRequestFrame
// and returns the decoded copy, so every command exercises the same byte
// encoding a real transport would use instead of calling the wallet with
// the in-memory struct directly.
func roundTripRequest(req abiwire.Request) abiwire.Request {
	frame, err := abiwire.EncodeRequestFrame(req)
	if err != nil {
		fatal(err)
	}
	decoded, err := abiwire.DecodeRequestFrame(frame)
	if err != nil {
		fatal(err)
	}
	return decoded
}

// roundTripResponse is roundTripRequest's response-side counterpart: resp
// is encoded, then decoded into a fresh zero value of the same concrete
// type via into, so callers read back only what the wire actually carried.
func roundTripResponse(resp abiwire.Response, into abiwire.Response) abiwire.Response {
	payload, err := abiwire.EncodeResponse(resp)
	if err != nil {
		fatal(err)
	}
	if err := abiwire.DecodeResponse(payload, into); err != nil {
		fatal(err)
	}
	return into
}

var getHeightCommand = cli.Command{
	Name:  "get-height",
	Usage: "print the chain tip height known to the Services Facade",
	Action: func(ctx *cli.Context) error {
		w := openWallet()
		roundTripRequest(&abiwire.GetHeightRequest{})

		height, err := w.GetHeight(context.Background())
		if err != nil {
			return err
		}
		resp := roundTripResponse(&abiwire.GetHeightResponse{Height: height}, &abiwire.GetHeightResponse{})
		fmt.Println(resp.(*abiwire.GetHeightResponse).Height)
		return nil
	},
}

var getNetworkCommand = cli.Command{
	Name:  "get-network",
	Usage: "print the configured chain (mainnet or testnet)",
	Action: func(ctx *cli.Context) error {
		w := openWallet()
		roundTripRequest(&abiwire.GetNetworkRequest{})

		network, err := w.GetNetwork(context.Background())
		if err != nil {
			return err
		}
		code := abiwire.NetworkMain
		if network == wallet.NetworkTest {
			code = abiwire.NetworkTest
		}
		resp := roundTripResponse(&abiwire.GetNetworkResponse{Network: code}, &abiwire.GetNetworkResponse{})
		if resp.(*abiwire.GetNetworkResponse).Network == abiwire.NetworkTest {
			fmt.Println("testnet")
		} else {
			fmt.Println("mainnet")
		}
		return nil
	},
}

var getPublicKeyCommand = cli.Command{
	Name:  "get-public-key",
	Usage: "derive and print a BRC-42 public key",
	Flags: append(keyContextFlags, cli.BoolFlag{Name: "identity", Usage: "return the wallet's identity key instead of deriving"}),
	Action: func(ctx *cli.Context) error {
		w := openWallet()
		req := roundTripRequest(&abiwire.GetPublicKeyRequest{
			Context:     keyContextFromFlags(ctx),
			ForIdentity: ctx.Bool("identity"),
		}).(*abiwire.GetPublicKeyRequest)

		pub, err := w.GetPublicKey(context.Background(), req.Context.Counterparty,
			keyderiver.Protocol{SecurityLevel: int(req.Context.SecurityLevel), Name: req.Context.ProtocolName},
			req.Context.KeyID, req.ForIdentity)
		if err != nil {
			return err
		}
		resp := roundTripResponse(&abiwire.GetPublicKeyResponse{PublicKey: pub.SerializeCompressed()}, &abiwire.GetPublicKeyResponse{})
		fmt.Println(hex.EncodeToString(resp.(*abiwire.GetPublicKeyResponse).PublicKey))
		return nil
	},
}

var encryptCommand = cli.Command{
	Name:  "encrypt",
	Usage: "encrypt a plaintext string under a BRC-42 key",
	Flags: append(keyContextFlags, cli.StringFlag{Name: "plaintext", Usage: "plaintext to encrypt"}),
	Action: func(ctx *cli.Context) error {
		w := openWallet()
		req := roundTripRequest(&abiwire.EncryptRequest{
			Context:   keyContextFromFlags(ctx),
			Plaintext: []byte(ctx.String("plaintext")),
		}).(*abiwire.EncryptRequest)

		ciphertext, err := w.Encrypt(context.Background(), req.Context.Counterparty,
			keyderiver.Protocol{SecurityLevel: int(req.Context.SecurityLevel), Name: req.Context.ProtocolName},
			req.Context.KeyID, req.Plaintext)
		if err != nil {
			return err
		}
		resp := roundTripResponse(&abiwire.EncryptResponse{Ciphertext: ciphertext}, &abiwire.EncryptResponse{})
		fmt.Println(hex.EncodeToString(resp.(*abiwire.EncryptResponse).Ciphertext))
		return nil
	},
}

var decryptCommand = cli.Command{
	Name:  "decrypt",
	Usage: "decrypt a hex-encoded ciphertext produced by encrypt",
	Flags: append(keyContextFlags, cli.StringFlag{Name: "ciphertext", Usage: "hex-encoded ciphertext"}),
	Action: func(ctx *cli.Context) error {
		w := openWallet()
		ciphertext, err := hex.DecodeString(ctx.String("ciphertext"))
		if err != nil {
			return err
		}
		req := roundTripRequest(&abiwire.DecryptRequest{
			Context:    keyContextFromFlags(ctx),
			Ciphertext: ciphertext,
		}).(*abiwire.DecryptRequest)

		plaintext, err := w.Decrypt(context.Background(), req.Context.Counterparty,
			keyderiver.Protocol{SecurityLevel: int(req.Context.SecurityLevel), Name: req.Context.ProtocolName},
			req.Context.KeyID, req.Ciphertext)
		if err != nil {
			return err
		}
		resp := roundTripResponse(&abiwire.DecryptResponse{Plaintext: plaintext}, &abiwire.DecryptResponse{})
		fmt.Println(string(resp.(*abiwire.DecryptResponse).Plaintext))
		return nil
	},
}

var createHmacCommand = cli.Command{
	Name:  "create-hmac",
	Usage: "compute an HMAC over data under a BRC-42 key",
	Flags: append(keyContextFlags, cli.StringFlag{Name: "data", Usage: "data to authenticate"}),
	Action: func(ctx *cli.Context) error {
		w := openWallet()
		req := roundTripRequest(&abiwire.CreateHmacRequest{
			Context: keyContextFromFlags(ctx),
			Data:    []byte(ctx.String("data")),
		}).(*abiwire.CreateHmacRequest)

		mac, err := w.CreateHmac(context.Background(), req.Context.Counterparty,
			keyderiver.Protocol{SecurityLevel: int(req.Context.SecurityLevel), Name: req.Context.ProtocolName},
			req.Context.KeyID, req.Data)
		if err != nil {
			return err
		}
		resp := roundTripResponse(&abiwire.CreateHmacResponse{Hmac: mac}, &abiwire.CreateHmacResponse{})
		fmt.Println(hex.EncodeToString(resp.(*abiwire.CreateHmacResponse).Hmac))
		return nil
	},
}

var verifyHmacCommand = cli.Command{
	Name:  "verify-hmac",
	Usage: "verify a hex-encoded HMAC over data under a BRC-42 key",
	Flags: append(keyContextFlags,
		cli.StringFlag{Name: "data", Usage: "data that was authenticated"},
		cli.StringFlag{Name: "hmac", Usage: "hex-encoded HMAC to verify"}),
	Action: func(ctx *cli.Context) error {
		w := openWallet()
		mac, err := hex.DecodeString(ctx.String("hmac"))
		if err != nil {
			return err
		}
		req := roundTripRequest(&abiwire.VerifyHmacRequest{
			Context: keyContextFromFlags(ctx),
			Data:    []byte(ctx.String("data")),
			Hmac:    mac,
		}).(*abiwire.VerifyHmacRequest)

		valid, err := w.VerifyHmac(context.Background(), req.Context.Counterparty,
			keyderiver.Protocol{SecurityLevel: int(req.Context.SecurityLevel), Name: req.Context.ProtocolName},
			req.Context.KeyID, req.Data, req.Hmac)
		if err != nil {
			return err
		}
		resp := roundTripResponse(&abiwire.VerifyHmacResponse{Valid: valid}, &abiwire.VerifyHmacResponse{})
		fmt.Println(resp.(*abiwire.VerifyHmacResponse).Valid)
		return nil
	},
}

var listActionsCommand = cli.Command{
	Name:  "list-actions",
	Usage: "list the wallet's actions, newest first",
	Flags: []cli.Flag{
		cli.IntFlag{Name: "limit", Value: 100},
		cli.IntFlag{Name: "offset", Value: 0},
		cli.BoolFlag{Name: "include-labels"},
		cli.StringFlag{Name: "failed-only", Usage: "non-empty to show only failed actions, mirroring list_failed_actions"},
	},
	Action: func(ctx *cli.Context) error {
		w := openWallet()
		req := roundTripRequest(&abiwire.ListActionsRequest{
			Limit:         uint32(ctx.Int("limit")),
			Offset:        uint32(ctx.Int("offset")),
			IncludeLabels: ctx.Bool("include-labels"),
		}).(*abiwire.ListActionsRequest)

		result, err := w.ListActions(context.Background(), wallet.ListActionsRequest{
			Labels:        req.Labels,
			IncludeLabels: req.IncludeLabels,
			Limit:         int(req.Limit),
			Offset:        int(req.Offset),
		})
		if err != nil {
			return err
		}
		for _, a := range result.Actions {
			if ctx.String("failed-only") != "" && a.Status != "failed" {
				continue
			}
			fmt.Printf("%d\t%s\t%s\t%d\t%s\n", a.ActionID, a.TxID, a.Status, a.Satoshis, a.Description)
		}
		fmt.Printf("total: %d\n", result.TotalCount)
		return nil
	},
}

var listFailedActionsCommand = cli.Command{
	Name:  "list-failed-actions",
	Usage: "list only the wallet's failed actions",
	Flags: []cli.Flag{
		cli.IntFlag{Name: "limit", Value: 100},
		cli.IntFlag{Name: "offset", Value: 0},
	},
	Action: func(ctx *cli.Context) error {
		w := openWallet()
		result, err := w.ListActions(context.Background(), wallet.ListActionsRequest{
			Limit:  int(ctx.Int("limit")),
			Offset: int(ctx.Int("offset")),
		})
		if err != nil {
			return err
		}
		for _, a := range result.Actions {
			if a.Status != "failed" {
				continue
			}
			fmt.Printf("%d\t%s\t%s\t%d\t%s\n", a.ActionID, a.TxID, a.Status, a.Satoshis, a.Description)
		}
		return nil
	},
}

var listOutputsCommand = cli.Command{
	Name:  "list-outputs",
	Usage: "list the wallet's outputs, optionally filtered to one basket",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "basket"},
		cli.IntFlag{Name: "limit", Value: 100},
		cli.IntFlag{Name: "offset", Value: 0},
	},
	Action: func(ctx *cli.Context) error {
		w := openWallet()
		req := roundTripRequest(&abiwire.ListOutputsRequest{
			Basket: ctx.String("basket"),
			Limit:  uint32(ctx.Int("limit")),
			Offset: uint32(ctx.Int("offset")),
		}).(*abiwire.ListOutputsRequest)

		result, err := w.ListOutputs(context.Background(), wallet.ListOutputsRequest{
			Basket: req.Basket,
			Limit:  int(req.Limit),
			Offset: int(req.Offset),
		})
		if err != nil {
			return err
		}
		for _, o := range result.Outputs {
			fmt.Printf("%d\t%d\t%v\n", o.OutputID, o.Satoshis, o.Spendable)
		}
		fmt.Printf("total: %d\n", result.TotalCount)
		return nil
	},
}

var getBalanceCommand = cli.Command{
	Name:  "get-balance",
	Usage: "sum the wallet's spendable outputs, mirroring the get_balance example",
	Action: func(ctx *cli.Context) error {
		w := openWallet()
		result, err := w.ListOutputs(context.Background(), wallet.ListOutputsRequest{Limit: 1 << 30})
		if err != nil {
			return err
		}
		var balance int64
		for _, o := range result.Outputs {
			if o.Spendable {
				balance += o.Satoshis
			}
		}
		fmt.Println(balance)
		return nil
	},
}

var abortActionCommand = cli.Command{
	Name:  "abort-action",
	Usage: "abort an unsigned or unbroadcast action by reference",
	Flags: []cli.Flag{cli.StringFlag{Name: "reference"}},
	Action: func(ctx *cli.Context) error {
		w := openWallet()
		req := roundTripRequest(&abiwire.AbortActionRequest{Reference: ctx.String("reference")}).(*abiwire.AbortActionRequest)

		result, err := w.AbortAction(context.Background(), wallet.AbortActionRequest{Reference: req.Reference})
		if err != nil {
			return err
		}
		fmt.Println(result.Aborted)
		return nil
	},
}

var relinquishOutputCommand = cli.Command{
	Name:  "relinquish-output",
	Usage: "drop the wallet's tracking of one output in a basket",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "basket"},
		cli.StringFlag{Name: "output", Usage: "\"txid.vout\""},
	},
	Action: func(ctx *cli.Context) error {
		w := openWallet()
		req := roundTripRequest(&abiwire.RelinquishOutputRequest{
			Basket: ctx.String("basket"),
			Output: ctx.String("output"),
		}).(*abiwire.RelinquishOutputRequest)

		result, err := w.RelinquishOutput(context.Background(), wallet.RelinquishOutputRequest{
			Basket: req.Basket,
			Output: req.Output,
		})
		if err != nil {
			return err
		}
		fmt.Println(result.Relinquished)
		return nil
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "walletcli"
	app.Version = "0.1"
	app.Usage = "control plane for an embedded BRC-100 wallet core"
	app.Commands = []cli.Command{
		getHeightCommand,
		getNetworkCommand,
		getPublicKeyCommand,
		encryptCommand,
		decryptCommand,
		createHmacCommand,
		verifyHmacCommand,
		listActionsCommand,
		listFailedActionsCommand,
		listOutputsCommand,
		getBalanceCommand,
		abortActionCommand,
		relinquishOutputCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
