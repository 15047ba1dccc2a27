package repository

import (
	"app/internal/domain/model"
	"context"
)

// 在庫列だけを触る窓口。減算は必ず現在値を条件にする。
type InventoryRepository interface {
	// 在庫が足りるときだけ減算（stock >= qty を同一文で確認）
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセル時）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	// 管理者による在庫の現在値の設定
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
