package siwe

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// DefaultRPCURL is the public endpoint used when no ChainReader is supplied.
// Wallets issuing these messages are Safe contracts on OP Mainnet.
const DefaultRPCURL = "https://mainnet.optimism.io"

// SignatureCheckerABI is the minimal interface of the wallet contract:
//
//	function checkSignatures(bytes32 dataHash, bytes data, bytes signature) external view;
//
// It reverts when the signatures are not valid for the wallet's owners.
const SignatureCheckerABI = `[
	{
		"type": "function",
		"name": "checkSignatures",
		"inputs": [
			{"name": "dataHash", "type": "bytes32"},
			{"name": "data", "type": "bytes"},
			{"name": "signature", "type": "bytes"}
		],
		"outputs": [],
		"stateMutability": "view"
	}
]`

// ChainReader is the read-only blockchain capability the verifier needs.
type ChainReader = bind.ContractCaller

// SignatureChecker calls checkSignatures on a smart contract wallet.
type SignatureChecker struct {
	address common.Address
	abi     abi.ABI
	caller  ChainReader
}

// NewSignatureChecker binds the checkSignatures interface to the wallet at
// address.
func NewSignatureChecker(address common.Address, caller ChainReader) (*SignatureChecker, error) {
	parsed, err := abi.JSON(strings.NewReader(SignatureCheckerABI))
	if err != nil {
		return nil, err
	}

	return &SignatureChecker{
		address: address,
		abi:     parsed,
		caller:  caller,
	}, nil
}

// Address returns the wallet address.
func (c *SignatureChecker) Address() common.Address {
	return c.address
}

// PackCheckSignatures packs the checkSignatures call data.
func (c *SignatureChecker) PackCheckSignatures(dataHash [32]byte, data, signature []byte) ([]byte, error) {
	return c.abi.Pack("checkSignatures", dataHash, data, signature)
}

// CheckSignatures returns nil when the wallet accepts signature for dataHash
// at the latest block. A revert is returned as an error, and so is an address
// without contract code, since a call to it never reverts.
func (c *SignatureChecker) CheckSignatures(ctx context.Context, dataHash [32]byte, data, signature []byte) error {
	code, err := c.caller.CodeAt(ctx, c.address, nil)
	if err != nil {
		return err
	}
	if len(code) == 0 {
		return ErrNoContractCode
	}

	calldata, err := c.PackCheckSignatures(dataHash, data, signature)
	if err != nil {
		return err
	}

	msg := ethereum.CallMsg{
		To:   &c.address,
		Data: calldata,
	}

	_, err = c.caller.CallContract(ctx, msg, nil)
	return err
}

// IsRevert reports whether err carries a contract revert rather than a
// transport or node failure.
func IsRevert(err error) bool {
	if err == nil {
		return false
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		return true
	}

	return strings.Contains(err.Error(), "execution reverted")
}

var (
	defaultReaderOnce sync.Once
	defaultReader     *ethclient.Client
	defaultReaderErr  error
)

// DefaultChainReader returns the process-wide client for DefaultRPCURL.
func DefaultChainReader() (ChainReader, error) {
	defaultReaderOnce.Do(func() {
		defaultReader, defaultReaderErr = ethclient.Dial(DefaultRPCURL)
	})

	if defaultReaderErr != nil {
		return nil, defaultReaderErr
	}

	return defaultReader, nil
}
