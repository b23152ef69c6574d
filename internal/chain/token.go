package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Confidential token interfaces. Amounts move as ciphertext, so the ERC20
// surface takes bytes where a public token takes uint256.
const privateERC20ABIJSON = `[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"type":"uint8"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"type":"address"}],"outputs":[{"type":"bytes"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"type":"address"},{"type":"bytes"}],"outputs":[{"type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"type":"address"},{"type":"bytes"}],"outputs":[{"type":"bool"}]}
]`

const privateERC721ABIJSON = `[
	{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"type":"address"},{"type":"string"}],"outputs":[]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"type":"address"},{"type":"address"},{"type":"uint256"}],"outputs":[]},
	{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"type":"uint256"}],"outputs":[{"type":"address"}]},
	{"type":"function","name":"tokenURI","stateMutability":"view","inputs":[{"type":"uint256"}],"outputs":[{"type":"string"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"type":"uint256"}]}
]`

var (
	privateERC20ABI  = mustABI(privateERC20ABIJSON)
	privateERC721ABI = mustABI(privateERC721ABIJSON)
)

func mustABI(src string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		panic(fmt.Sprintf("parse builtin ABI: %v", err))
	}
	return parsed
}

// ERC20 packs and unpacks private ERC20 calls.
type ERC20 struct{}

func (ERC20) PackName() []byte     { return mustPack(privateERC20ABI, "name") }
func (ERC20) PackSymbol() []byte   { return mustPack(privateERC20ABI, "symbol") }
func (ERC20) PackDecimals() []byte { return mustPack(privateERC20ABI, "decimals") }

func (ERC20) PackBalanceOf(account string) []byte {
	return mustPack(privateERC20ABI, "balanceOf", common.HexToAddress(account))
}

func (ERC20) PackTransfer(to string, encryptedAmount []byte) []byte {
	return mustPack(privateERC20ABI, "transfer", common.HexToAddress(to), encryptedAmount)
}

func (ERC20) PackApprove(spender string, encryptedAmount []byte) []byte {
	return mustPack(privateERC20ABI, "approve", common.HexToAddress(spender), encryptedAmount)
}

func (ERC20) UnpackBalanceOf(output []byte) ([]byte, error) {
	values, err := privateERC20ABI.Unpack("balanceOf", output)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	ciphertext, ok := values[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("unpack balanceOf: unexpected type %T", values[0])
	}
	return ciphertext, nil
}

func (ERC20) UnpackString(method string, output []byte) (string, error) {
	values, err := privateERC20ABI.Unpack(method, output)
	if err != nil {
		return "", fmt.Errorf("unpack %s: %w", method, err)
	}
	text, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("unpack %s: unexpected type %T", method, values[0])
	}
	return text, nil
}

func (ERC20) UnpackDecimals(output []byte) (uint8, error) {
	values, err := privateERC20ABI.Unpack("decimals", output)
	if err != nil {
		return 0, fmt.Errorf("unpack decimals: %w", err)
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unpack decimals: unexpected type %T", values[0])
	}
	return decimals, nil
}

// ERC721 packs and unpacks private ERC721 calls.
type ERC721 struct{}

func (ERC721) PackMint(to, tokenURI string) []byte {
	return mustPack(privateERC721ABI, "mint", common.HexToAddress(to), tokenURI)
}

func (ERC721) PackTransferFrom(from, to string, tokenID *big.Int) []byte {
	return mustPack(privateERC721ABI, "transferFrom", common.HexToAddress(from), common.HexToAddress(to), tokenID)
}

func (ERC721) PackOwnerOf(tokenID *big.Int) []byte {
	return mustPack(privateERC721ABI, "ownerOf", tokenID)
}

func (ERC721) PackTokenURI(tokenID *big.Int) []byte {
	return mustPack(privateERC721ABI, "tokenURI", tokenID)
}

func (ERC721) PackTotalSupply() []byte { return mustPack(privateERC721ABI, "totalSupply") }

func (ERC721) UnpackOwnerOf(output []byte) (string, error) {
	values, err := privateERC721ABI.Unpack("ownerOf", output)
	if err != nil {
		return "", fmt.Errorf("unpack ownerOf: %w", err)
	}
	owner, ok := values[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("unpack ownerOf: unexpected type %T", values[0])
	}
	return owner.Hex(), nil
}

func (ERC721) UnpackTokenURI(output []byte) (string, error) {
	values, err := privateERC721ABI.Unpack("tokenURI", output)
	if err != nil {
		return "", fmt.Errorf("unpack tokenURI: %w", err)
	}
	uri, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("unpack tokenURI: unexpected type %T", values[0])
	}
	return uri, nil
}

func (ERC721) UnpackTotalSupply(output []byte) (*big.Int, error) {
	values, err := privateERC721ABI.Unpack("totalSupply", output)
	if err != nil {
		return nil, fmt.Errorf("unpack totalSupply: %w", err)
	}
	supply, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unpack totalSupply: unexpected type %T", values[0])
	}
	return supply, nil
}

func mustPack(parsed abi.ABI, method string, args ...any) []byte {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		panic(fmt.Sprintf("pack %s: %v", method, err))
	}
	return data
}
