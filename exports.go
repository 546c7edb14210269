package folio

import "github.com/xraph/folio/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Money constructors
var (
	ZAR        = types.ZAR
	USD        = types.USD
	EUR        = types.EUR
	GBP        = types.GBP
	Zero       = types.Zero
	Sum        = types.Sum
	ParseMoney = types.Parse
)
