package types

type PositionDirection string

type TransactionKind string

type TransactionStatus string

type AssetCategory string

type DepositCurrency string

type MarketBias string

const (
	PositionLong  PositionDirection = "LONG"
	PositionShort PositionDirection = "SHORT"
)

const (
	TransactionDeposit    TransactionKind = "DEPOSIT"
	TransactionWithdrawal TransactionKind = "WITHDRAWAL"
	TransactionFee        TransactionKind = "FEE"
)

const (
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionPending   TransactionStatus = "PENDING"
	TransactionFailed    TransactionStatus = "FAILED"
)

const (
	AssetCrypto  AssetCategory = "crypto"
	AssetForex   AssetCategory = "forex"
	AssetFutures AssetCategory = "futures"
)

const (
	CurrencyUSD DepositCurrency = "USD"
	CurrencyEUR DepositCurrency = "EUR"
	CurrencyRUB DepositCurrency = "RUB"
)

const (
	BiasNeutral MarketBias = "NEUTRAL"
	BiasBullish MarketBias = "BULLISH"
	BiasBearish MarketBias = "BEARISH"
)
