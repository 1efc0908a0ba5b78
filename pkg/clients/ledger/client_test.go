package ledger

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const (
	tokenAddress       = "0x1000000000000000000000000000000000000001"
	stakingAddress     = "0x1000000000000000000000000000000000000002"
	collectibleAddress = "0x1000000000000000000000000000000000000003"
)

// fakeContractReader answers balanceOf calls with a fixed balance per contract.
type fakeContractReader struct {
	balances map[string]*big.Int
	fail     bool
}

func (f *fakeContractReader) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if f.fail {
		return nil, errors.New("rpc unavailable")
	}
	balance, ok := f.balances[msg.To.Hex()]
	if !ok {
		balance = big.NewInt(0)
	}
	return balance.FillBytes(make([]byte, 32)), nil
}

func newTestLedgerClient(reader *fakeContractReader) *Client {
	cfg := &config.EthereumRpcConfig{
		TokenAddress:       tokenAddress,
		StakingAddress:     stakingAddress,
		CollectibleAddress: collectibleAddress,
	}
	return NewClientWithContractReader(reader, cfg, zap.NewNop())
}

func Test_TotalHoldings(t *testing.T) {
	client := newTestLedgerClient(&fakeContractReader{
		balances: map[string]*big.Int{
			"0x1000000000000000000000000000000000000001": big.NewInt(100_000_000),
			"0x1000000000000000000000000000000000000002": big.NewInt(50_000_000),
		},
	})

	t.Run("Should sum wallet and staked balances across addresses", func(t *testing.T) {
		total, err := client.TotalHoldings(context.Background(), []string{
			"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			"0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		})
		assert.Nil(t, err)
		// (100M wallet + 50M staked) per address, two addresses.
		assert.Equal(t, big.NewInt(300_000_000), total)
	})

	t.Run("Should return zero for no addresses", func(t *testing.T) {
		total, err := client.TotalHoldings(context.Background(), nil)
		assert.Nil(t, err)
		assert.Equal(t, big.NewInt(0), total)
	})

	t.Run("Should fail the whole read when any call fails", func(t *testing.T) {
		failing := newTestLedgerClient(&fakeContractReader{fail: true})
		_, err := failing.TotalHoldings(context.Background(), []string{"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"})
		assert.NotNil(t, err)
	})
}

func Test_CollectibleCount(t *testing.T) {
	client := newTestLedgerClient(&fakeContractReader{
		balances: map[string]*big.Int{
			"0x1000000000000000000000000000000000000003": big.NewInt(3),
		},
	})

	count, err := client.CollectibleCount(context.Background(), []string{
		"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
	})
	assert.Nil(t, err)
	assert.Equal(t, int64(6), count)
}

func Test_TokenBalance(t *testing.T) {
	client := newTestLedgerClient(&fakeContractReader{
		balances: map[string]*big.Int{
			"0x1000000000000000000000000000000000000001": big.NewInt(42),
		},
	})

	balance, err := client.TokenBalance(context.Background(), "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(42), balance)
}
