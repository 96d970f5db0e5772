// Package rpc implements the upstream RPC client contract consumed by the
// application: getSlot (latest confirmed tip) and getBlocks (confirmed
// slots in a range). Solana's JSON-RPC API is spoken over bare JSON-RPC
// 2.0/HTTP, so the transport is built on go-ethereum's generic rpc.Client
// rather than anything chain-specific — that package implements the
// JSON-RPC 2.0 envelope only and has no Ethereum-specific decoding baked
// into CallContext.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// ErrFailure is the sentinel every call failure (transport or protocol)
// satisfies via errors.Is. The application layer does not distinguish the
// two per spec: both are surfaced identically as RpcFailure.
var ErrFailure = errors.New("rpc call failed")

// CallError carries structured detail about a failed RPC call for logging,
// while still unwrapping to ErrFailure.
type CallError struct {
	Method  string
	Code    int  // JSON-RPC error code, 0 if this was a transport failure
	Timeout bool // true if the call hit its context deadline
	cause   error
}

func (e *CallError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("rpc: %s: protocol error %d: %v", e.Method, e.Code, e.cause)
	}
	return fmt.Sprintf("rpc: %s: transport error: %v", e.Method, e.cause)
}

func (e *CallError) Unwrap() error {
	return errors.Join(ErrFailure, e.cause)
}

// Client talks to a single Solana-compatible JSON-RPC endpoint.
type Client struct {
	inner   *gethrpc.Client
	timeout time.Duration
}

// Dial connects to the upstream RPC endpoint. The returned Client issues
// every call with a per-call timeout of timeout.
func Dial(ctx context.Context, url string, timeout time.Duration) (*Client, error) {
	c, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("rpc: dial %s: %w", url, err)
	}
	return &Client{inner: c, timeout: timeout}, nil
}

// Close releases the underlying transport.
func (c *Client) Close() {
	c.inner.Close()
}

func (c *Client) call(ctx context.Context, method string, result any, args ...any) error {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.inner.CallContext(cctx, result, method, args...)
	if err == nil {
		return nil
	}

	var protoErr gethrpc.Error
	if errors.As(err, &protoErr) {
		return &CallError{Method: method, Code: protoErr.ErrorCode(), cause: err}
	}
	return &CallError{Method: method, Timeout: errors.Is(err, context.DeadlineExceeded), cause: err}
}

// GetSlot returns the latest confirmed slot known to the endpoint.
func (c *Client) GetSlot(ctx context.Context) (uint64, error) {
	var slot uint64
	if err := c.call(ctx, "getSlot", &slot); err != nil {
		return 0, err
	}
	return slot, nil
}

// GetBlocks returns the confirmed slots in [start, end] in ascending
// order. An empty result means no slot in the range is confirmed. The
// endpoint's response is normalized rather than trusted blindly: entries
// outside [start, end] are dropped and the rest are sorted. Duplicate
// entries are not removed.
func (c *Client) GetBlocks(ctx context.Context, start, end uint64) ([]uint64, error) {
	var slots []uint64
	if err := c.call(ctx, "getBlocks", &slots, start, end); err != nil {
		return nil, err
	}

	filtered := slots[:0]
	for _, s := range slots {
		if s >= start && s <= end {
			filtered = append(filtered, s)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i] < filtered[j] })

	return filtered, nil
}
