package chain

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/supabase/siwe/internal/conf"
	"github.com/supabase/siwe/internal/utilities/siwe"
	"gopkg.in/h2non/gock.v1"
)

const mockRPCHost = "http://localhost:8545"

func mockRPCConfig() *conf.ChainConfiguration {
	return &conf.ChainConfiguration{
		RPCURL:        mockRPCHost + "/rpc",
		ID:            10,
		VerifyChainID: true,
	}
}

func mockRPCResponse(body map[string]interface{}) {
	body["jsonrpc"] = "2.0"
	body["id"] = 1

	gock.New(mockRPCHost).
		Post("/rpc").
		MatchType("json").
		Reply(200).
		JSON(body)
}

func TestDialVerifiesChainID(t *testing.T) {
	defer gock.OffAll()

	mockRPCResponse(map[string]interface{}{"result": "0xa"})

	client, err := Dial(context.Background(), mockRPCConfig())
	require.NoError(t, err)
	defer client.Close()

	require.True(t, gock.IsDone())
}

func TestDialRejectsOtherChain(t *testing.T) {
	defer gock.OffAll()

	mockRPCResponse(map[string]interface{}{"result": "0x1"})

	_, err := Dial(context.Background(), mockRPCConfig())
	require.ErrorIs(t, err, ErrChainIDMismatch)
}

func TestCallContractRevert(t *testing.T) {
	defer gock.OffAll()

	config := mockRPCConfig()
	config.VerifyChainID = false

	client, err := Dial(context.Background(), config)
	require.NoError(t, err)
	defer client.Close()

	mockRPCResponse(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    3,
			"message": "execution reverted: GS026",
			"data":    "0x08c379a0",
		},
	})

	to := common.HexToAddress("0x196a28d05bA75C8dC35B0F6e71DD622D1aC82b7E")
	_, err = client.CallContract(context.Background(), ethereum.CallMsg{To: &to, Data: []byte{0x93, 0x4f, 0x3a, 0x11}}, nil)
	require.Error(t, err)
	require.True(t, siwe.IsRevert(err))
	require.True(t, gock.IsDone())
}
