package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/supabase/siwe/internal/conf"
	"github.com/supabase/siwe/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrChainIDMismatch is returned by Dial when the node serves a different
// chain than the configured one.
var ErrChainIDMismatch = errors.New("chain: RPC endpoint serves an unexpected chain")

// backend is the subset of ethclient.Client used here.
type backend interface {
	CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// Client is a read-only RPC client for wallet contracts. Every call is traced
// and nothing is retried.
type Client struct {
	chainID int64
	url     string
	backend backend
	tracer  trace.Tracer
}

// Dial connects to the configured RPC endpoint. When VerifyChainID is set the
// node's chain ID must match the configured one.
func Dial(ctx context.Context, config *conf.ChainConfiguration) (*Client, error) {
	dialCtx := ctx
	if config.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, config.DialTimeout)
		defer cancel()
	}

	ec, err := ethclient.DialContext(dialCtx, config.RPCURL)
	if err != nil {
		return nil, errors.Wrap(err, "chain: unable to dial RPC endpoint")
	}

	c := newClient(config, ec)

	if config.VerifyChainID {
		if err := c.verifyChainID(dialCtx); err != nil {
			ec.Close()
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"rpc_url":  config.RPCURL,
		"chain_id": config.ID,
	}).Info("connected to chain RPC endpoint")

	return c, nil
}

func newClient(config *conf.ChainConfiguration, b backend) *Client {
	return &Client{
		chainID: config.ID,
		url:     config.RPCURL,
		backend: b,
		tracer:  observability.Tracer("siwe/chain"),
	}
}

func (c *Client) verifyChainID(ctx context.Context) error {
	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return errors.Wrap(err, "chain: unable to read chain ID")
	}

	if id.Cmp(big.NewInt(c.chainID)) != 0 {
		return errors.Wrap(ErrChainIDMismatch, fmt.Sprintf("expected %d, got %s", c.chainID, id))
	}

	return nil
}

// ChainID returns the configured chain ID.
func (c *Client) ChainID() int64 {
	return c.chainID
}

// CodeAt returns the contract code of the given account.
func (c *Client) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "chain.CodeAt", trace.WithAttributes(
		attribute.String("chain.contract", contract.Hex()),
	))
	defer span.End()

	code, err := c.backend.CodeAt(ctx, contract, blockNumber)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	return code, err
}

// CallContract executes an eth_call against the given block, or the latest
// block when blockNumber is nil.
func (c *Client) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var to string
	if call.To != nil {
		to = call.To.Hex()
	}

	ctx, span := c.tracer.Start(ctx, "chain.CallContract", trace.WithAttributes(
		attribute.String("chain.contract", to),
		attribute.Int64("chain.id", c.chainID),
	))
	defer span.End()

	out, err := c.backend.CallContract(ctx, call, blockNumber)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		logrus.WithFields(logrus.Fields{
			"contract": to,
			"chain_id": c.chainID,
		}).WithError(err).Debug("eth_call failed")
	}

	return out, err
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.backend.Close()
}
