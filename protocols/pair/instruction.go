package pair

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// InstructionKind says how the host executes an Instruction.
type InstructionKind string

const (
	// InstructionNativeSend sends native currency from Owner (the pool custody) to Recipient.
	InstructionNativeSend InstructionKind = "native_send"
	// InstructionTokenTransfer calls transfer(Recipient, Amount) on Contract from Owner.
	InstructionTokenTransfer InstructionKind = "token_transfer"
	// InstructionTokenTransferFrom calls transferFrom(Owner, Recipient, Amount) on Contract.
	InstructionTokenTransferFrom InstructionKind = "token_transfer_from"
)

// Instruction is a transfer the host must execute after the pool commits its new
// reserves. The pool never executes or awaits instructions itself.
type Instruction struct {
	Kind      InstructionKind `json:"kind"`
	Asset     string          `json:"asset"`
	Contract  *common.Address `json:"contract,omitempty"`
	Owner     common.Address  `json:"owner"`
	Recipient common.Address  `json:"recipient"`
	Amount    *uint256.Int    `json:"amount"`
	Calldata  hexutil.Bytes   `json:"calldata,omitempty"`
}

const erc20TransferABI = `[
	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable",
	 "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`

var erc20ABI = mustParseABI(erc20TransferABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("invalid erc20 abi: " + err.Error())
	}
	return parsed
}
