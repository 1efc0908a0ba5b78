package ledger

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Minimal ABI shared by the token, staking and collectible contracts; the
// engine only ever reads balances.
const balanceOfAbiJson = `[{"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

var balanceOfAbi = mustParseAbi(balanceOfAbiJson)

func mustParseAbi(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

type ContractReader interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type Client struct {
	contractReader ContractReader
	Logger         *zap.Logger
	Config         *config.EthereumRpcConfig
}

func NewClient(cfg *config.EthereumRpcConfig, l *zap.Logger) (*Client, error) {
	ec, err := ethclient.Dial(cfg.BaseUrl)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial ethereum rpc")
	}
	return NewClientWithContractReader(ec, cfg, l), nil
}

func NewClientWithContractReader(cr ContractReader, cfg *config.EthereumRpcConfig, l *zap.Logger) *Client {
	return &Client{
		contractReader: cr,
		Logger:         l,
		Config:         cfg,
	}
}

func (c *Client) balanceOf(ctx context.Context, contractAddress string, holder string) (*big.Int, error) {
	if c.Config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Config.RequestTimeout)
		defer cancel()
	}

	callData, err := balanceOfAbi.Pack("balanceOf", common.HexToAddress(holder))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack balanceOf call")
	}

	contract := common.HexToAddress(contractAddress)
	result, err := c.contractReader.CallContract(ctx, ethereum.CallMsg{
		To:   &contract,
		Data: callData,
	}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "balanceOf call failed")
	}

	unpacked, err := balanceOfAbi.Unpack("balanceOf", result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack balanceOf result")
	}
	balance, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected balanceOf result type")
	}
	return balance, nil
}

func (c *Client) TokenBalance(ctx context.Context, address string) (*big.Int, error) {
	return c.balanceOf(ctx, c.Config.TokenAddress, address)
}

func (c *Client) StakedBalance(ctx context.Context, address string) (*big.Int, error) {
	return c.balanceOf(ctx, c.Config.StakingAddress, address)
}

func (c *Client) CollectibleBalance(ctx context.Context, address string) (*big.Int, error) {
	return c.balanceOf(ctx, c.Config.CollectibleAddress, address)
}

// TotalHoldings sums wallet and staked balances across all of a participant's
// addresses. Lookups fan out in parallel and join; a failure on any address
// fails the whole read so the caller can degrade the signal.
func (c *Client) TotalHoldings(ctx context.Context, addresses []string) (*big.Int, error) {
	total := big.NewInt(0)
	if len(addresses) == 0 {
		return total, nil
	}

	var mu sync.Mutex
	pool := pond.NewPool(len(addresses) * 2)
	group := pool.NewGroupContext(ctx)

	for _, address := range addresses {
		addr := address
		group.SubmitErr(func() error {
			wallet, err := c.TokenBalance(ctx, addr)
			if err != nil {
				return err
			}
			mu.Lock()
			total.Add(total, wallet)
			mu.Unlock()
			return nil
		})
		group.SubmitErr(func() error {
			staked, err := c.StakedBalance(ctx, addr)
			if err != nil {
				return err
			}
			mu.Lock()
			total.Add(total, staked)
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	pool.StopAndWait()
	return total, nil
}

// CollectibleCount sums collectible balances across a participant's addresses.
func (c *Client) CollectibleCount(ctx context.Context, addresses []string) (int64, error) {
	total := big.NewInt(0)
	if len(addresses) == 0 {
		return 0, nil
	}

	var mu sync.Mutex
	pool := pond.NewPool(len(addresses))
	group := pool.NewGroupContext(ctx)

	for _, address := range addresses {
		addr := address
		group.SubmitErr(func() error {
			balance, err := c.CollectibleBalance(ctx, addr)
			if err != nil {
				return err
			}
			mu.Lock()
			total.Add(total, balance)
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return 0, err
	}
	pool.StopAndWait()
	return total.Int64(), nil
}
