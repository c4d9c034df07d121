package domain

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusRejected  TransactionStatus = "rejected"
)

type TransactionType string

const (
	TransactionTypeTopup    TransactionType = "topup"
	TransactionTypeGiftCode TransactionType = "giftcode"
)
