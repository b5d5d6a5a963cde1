package workers

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"codecall-platform/models"
	"codecall-platform/services"
)

// WalletSyncWorker periodically refreshes the wallet_mirrors table from the
// chain so that the balance endpoint has a fallback when live RPC reads
// fail. It is deliberately slow-paced: balances are display data, not a
// source of truth for payouts.
type WalletSyncWorker struct {
	DB       *gorm.DB
	ZkSync   *services.ZkSyncClient
	Interval time.Duration
}

func NewWalletSyncWorker(db *gorm.DB, zk *services.ZkSyncClient) *WalletSyncWorker {
	return &WalletSyncWorker{
		DB:       db,
		ZkSync:   zk,
		Interval: 10 * time.Minute,
	}
}

func (w *WalletSyncWorker) Start(ctx context.Context) {
	log.Println("Starting wallet sync worker (chain → wallet_mirrors)")
	go w.run(ctx)
}

func (w *WalletSyncWorker) run(ctx context.Context) {
	// Refresh once at startup so a fresh deployment has fallback data.
	w.syncOnce(ctx)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Wallet sync worker stopped")
			return
		case <-ticker.C:
			w.syncOnce(ctx)
		}
	}
}

func (w *WalletSyncWorker) syncOnce(ctx context.Context) {
	var users []models.User
	if err := w.DB.Where("wallet_address <> ''").Find(&users).Error; err != nil {
		log.Printf("Wallet sync: failed to list users: %v", err)
		return
	}

	var mirrors []models.WalletMirror
	for _, u := range users {
		if ctx.Err() != nil {
			return
		}
		balance, err := w.ZkSync.USDCBalance(ctx, u.WalletAddress)
		if err != nil {
			// Skip; the existing mirror row keeps its last known value.
			log.Printf("Wallet sync: balance read failed for %s: %v", u.WalletAddress, err)
			continue
		}
		mirrors = append(mirrors, models.WalletMirror{
			ID:                 uuid.New().String(),
			UserID:             u.ID,
			Address:            u.WalletAddress,
			Token:              "USDC",
			Balance:            balance,
			LastBalanceCheckAt: time.Now().UTC(),
		})
	}

	if len(mirrors) == 0 {
		return
	}

	if err := w.DB.Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "address"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"user_id",
				"token",
				"balance",
				"last_balance_check_at",
				"updated_at",
			}),
		},
	).Create(&mirrors).Error; err != nil {
		log.Printf("Wallet sync: failed to upsert %d mirror(s): %v", len(mirrors), err)
		return
	}
	log.Printf("Wallet sync: refreshed %d wallet balance(s)", len(mirrors))
}
