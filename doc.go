// Package papertrade provides the core logic for a paper-trading account:
// a simulated cash balance, stock holdings, and an append-only transaction
// log, together with the market-data clients that feed it.
//
// The core functionalities include:
//   - Trade Engine: A pure, atomic state transition that applies a buy or
//     sell order to an account snapshot, rejecting invalid, unaffordable,
//     or over-sized orders without ever leaving a partial state.
//   - Persistence: A small key-value substrate storing the cash balance,
//     holdings, and transaction history under stable keys, seeded with the
//     starting balance and resilient to corrupted records.
//   - Predictions: A client for a price-forecast service with soft and hard
//     deadlines, a degraded fast path, retry with backoff, and a normalizer
//     that turns loosely-shaped upstream payloads into validated records.
//   - Quotes: A batched quote client with polite request spacing.
//
// This package serves as the foundational logic for the `pt` command-line
// tool.
package papertrade
