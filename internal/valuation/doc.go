// Package valuation rebuilds a portfolio's daily mark-to-market value from its
// order ledger and projects a dollar-cost-averaged benchmark over the same range.
//
// The package is pure computation: prices come from an injected PriceSource,
// the valuation cutoff is always passed in, and no state is shared between calls.
//
// Two behaviors are reproduced on purpose and should not be changed without
// product sign-off:
//   - A SELL subtracts quantity * unit price from the instrument's column on the
//     sell date and every later date. It does not reduce a share count, so the
//     remaining position does not keep tracking the price.
//   - The benchmark counts an instrument as 0 on days it did not trade instead of
//     holding its previous close.
package valuation
