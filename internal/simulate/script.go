// Package simulate replays scripted trading sessions against a single pool
// backed by the in-memory ledger and a virtual clock.
package simulate

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Step operations.
const (
	OpFund             = "fund"
	OpBuy              = "buy"
	OpSell             = "sell"
	OpAdvance          = "advance"
	OpPause            = "pause"
	OpUnpause          = "unpause"
	OpDepositFees      = "deposit_fees"
	OpWithdrawTreasury = "withdraw_treasury"
	OpSetCRR           = "set_crr"
	OpSetFees          = "set_fees"
	OpSetMaxTradeBps   = "set_max_trade_bps"
	OpSetFeeDepositor  = "set_fee_depositor"
	OpTransferGovernor = "transfer_governor"
)

// Step is one line of a simulation script. Accounts are hex addresses or
// aliases such as "alice"; aliases map to a stable derived address.
type Step struct {
	Op             string `json:"op"`
	Account        string `json:"account,omitempty"`
	To             string `json:"to,omitempty"`
	Amount         string `json:"amount,omitempty"`
	MinOut         string `json:"min_out,omitempty"`
	Duration       string `json:"duration,omitempty"`
	Deadline       string `json:"deadline,omitempty"`
	CRRPpm         uint32 `json:"crr_ppm,omitempty"`
	TradeFeeBps    uint32 `json:"trade_fee_bps,omitempty"`
	ProtocolFeeBps uint32 `json:"protocol_fee_bps,omitempty"`
	MaxTradeBps    uint32 `json:"max_trade_bps,omitempty"`
	Authorized     *bool  `json:"authorized,omitempty"`

	line int
}

// Line returns the script line the step was read from.
func (s Step) Line() int { return s.line }

// LoadScript reads a JSONL script from path.
func LoadScript(path string) ([]Step, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer file.Close()
	return ParseScript(file)
}

// ParseScript reads one JSON step per line. Blank lines and lines starting
// with '#' are skipped.
func ParseScript(r io.Reader) ([]Step, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var steps []Step
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		var step Step
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&step); err != nil {
			return nil, fmt.Errorf("line %d: decode step: %w", lineNo, err)
		}
		step.line = lineNo
		if err := step.validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan script: %w", err)
	}
	return steps, nil
}

func (s Step) validate() error {
	switch s.Op {
	case OpFund, OpBuy, OpSell:
		if s.Account == "" {
			return fmt.Errorf("%s: account required", s.Op)
		}
		if _, err := s.amount(); err != nil {
			return err
		}
	case OpDepositFees, OpWithdrawTreasury:
		if _, err := s.amount(); err != nil {
			return err
		}
	case OpAdvance:
		if s.Duration == "" {
			return fmt.Errorf("advance: duration required")
		}
	case OpSetFeeDepositor:
		if s.To == "" || s.Authorized == nil {
			return fmt.Errorf("%s: to and authorized required", s.Op)
		}
	case OpTransferGovernor:
		if s.To == "" {
			return fmt.Errorf("%s: to required", s.Op)
		}
	case OpPause, OpUnpause, OpSetCRR, OpSetFees, OpSetMaxTradeBps:
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}

	if s.MinOut != "" {
		if _, err := ParseAmount(s.MinOut); err != nil {
			return fmt.Errorf("min_out: %w", err)
		}
	}
	if s.Duration != "" {
		if _, err := time.ParseDuration(s.Duration); err != nil {
			return fmt.Errorf("duration: %w", err)
		}
	}
	if s.Deadline != "" {
		if _, err := time.ParseDuration(s.Deadline); err != nil {
			return fmt.Errorf("deadline: %w", err)
		}
	}
	for _, name := range []string{s.Account, s.To} {
		if name == "" {
			continue
		}
		if _, err := ResolveAccount(name); err != nil {
			return err
		}
	}
	return nil
}

func (s Step) amount() (*big.Int, error) {
	if s.Amount == "" {
		return nil, fmt.Errorf("%s: amount required", s.Op)
	}
	v, err := ParseAmount(s.Amount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Op, err)
	}
	return v, nil
}

// ParseAmount parses a decimal integer, allowing "_" separators.
func ParseAmount(value string) (*big.Int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), "_", "")
	v, ok := new(big.Int).SetString(cleaned, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", value)
	}
	return v, nil
}

// ResolveAccount converts a hex address or alias into an address.
func ResolveAccount(name string) (common.Address, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return common.Address{}, fmt.Errorf("empty account")
	}
	if strings.HasPrefix(name, "0x") {
		if !common.IsHexAddress(name) {
			return common.Address{}, fmt.Errorf("invalid address: %s", name)
		}
		return common.HexToAddress(name), nil
	}
	return common.BytesToAddress(crypto.Keccak256([]byte(strings.ToLower(name)))[12:]), nil
}
