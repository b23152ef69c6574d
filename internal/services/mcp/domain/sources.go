package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// Builtin Solidity sources for the one-call token deploy tools. Token
// parameters are baked into the constructor so the deployment transaction
// carries no constructor calldata.

const privateERC20SourceTemplate = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.20;

import {PrivateERC20} from "veil-contracts/tokens/PrivateERC20.sol";

contract %s is PrivateERC20 {
    constructor() PrivateERC20(%q, %q, %d) {}
}
`

const privateERC721SourceTemplate = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.20;

import {PrivateERC721} from "veil-contracts/tokens/PrivateERC721.sol";

contract %s is PrivateERC721 {
    constructor() PrivateERC721(%q, %q) {}
}
`

func privateERC20Source(contract, name, symbol string, decimals uint8) string {
	return fmt.Sprintf(privateERC20SourceTemplate, contract, name, symbol, decimals)
}

func privateERC721Source(contract, name, symbol string) string {
	return fmt.Sprintf(privateERC721SourceTemplate, contract, name, symbol)
}

// contractIdentifier turns a display name into a Solidity identifier,
// falling back when nothing usable remains.
func contractIdentifier(name, fallback string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || (b.Len() > 0 && unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}
