// README: Common money value object used across modules.
package types

// Money is an amount in minor units (cents) with its currency code.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}
