package models

import (
	"time"
)

// WalletMirror caches the last observed on-chain USDC balance for a user's
// wallet. Display-only: the balance endpoint prefers a live RPC read and
// falls back to this row when the chain is unreachable.
type WalletMirror struct {
	ID                 string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID             string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Address            string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"address"`
	Token              string    `gorm:"type:varchar(16);not null;default:'USDC'" json:"token"`
	Balance            string    `gorm:"type:varchar(64)" json:"balance"` // decimal string, 6 dp
	LastBalanceCheckAt time.Time `json:"last_balance_check_at"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
