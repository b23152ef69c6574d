package chain

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestERC20PackTransferSelector(t *testing.T) {
	data := ERC20{}.PackTransfer("0x1CBd3b2770909D4e10f157cABC84C7264073C9Ec", []byte{0xde, 0xad})
	want := privateERC20ABI.Methods["transfer"].ID
	if !bytes.HasPrefix(data, want) {
		t.Fatalf("transfer calldata selector %x, want %x", data[:4], want)
	}
}

func TestERC20BalanceRoundTrip(t *testing.T) {
	ciphertext := []byte{1, 2, 3, 4}
	packed, err := privateERC20ABI.Methods["balanceOf"].Outputs.Pack(ciphertext)
	if err != nil {
		t.Fatalf("pack output: %v", err)
	}

	got, err := ERC20{}.UnpackBalanceOf(packed)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !bytes.Equal(got, ciphertext) {
		t.Fatalf("got %x, want %x", got, ciphertext)
	}
}

func TestERC20UnpackDecimals(t *testing.T) {
	packed, err := privateERC20ABI.Methods["decimals"].Outputs.Pack(uint8(6))
	if err != nil {
		t.Fatalf("pack output: %v", err)
	}
	decimals, err := ERC20{}.UnpackDecimals(packed)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if decimals != 6 {
		t.Fatalf("got %d, want 6", decimals)
	}
}

func TestERC721OwnerRoundTrip(t *testing.T) {
	owner := common.HexToAddress("0x1CBd3b2770909D4e10f157cABC84C7264073C9Ec")
	packed, err := privateERC721ABI.Methods["ownerOf"].Outputs.Pack(owner)
	if err != nil {
		t.Fatalf("pack output: %v", err)
	}

	got, err := ERC721{}.UnpackOwnerOf(packed)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if got != owner.Hex() {
		t.Fatalf("got %q, want %q", got, owner.Hex())
	}
}

func TestERC721PackTransferFrom(t *testing.T) {
	data := ERC721{}.PackTransferFrom(
		"0x1CBd3b2770909D4e10f157cABC84C7264073C9Ec",
		"0x2c0863a69102937d6231471b5dbb6204fe512961",
		big.NewInt(5),
	)
	want := privateERC721ABI.Methods["transferFrom"].ID
	if !bytes.HasPrefix(data, want) {
		t.Fatalf("transferFrom selector %x, want %x", data[:4], want)
	}
}

func TestERC721TotalSupplyRoundTrip(t *testing.T) {
	packed, err := privateERC721ABI.Methods["totalSupply"].Outputs.Pack(big.NewInt(12))
	if err != nil {
		t.Fatalf("pack output: %v", err)
	}
	supply, err := ERC721{}.UnpackTotalSupply(packed)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if supply.Int64() != 12 {
		t.Fatalf("got %d, want 12", supply.Int64())
	}
}
