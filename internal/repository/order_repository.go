package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

// 条件付きステータス更新で、現在値が期待と違った（他所が先に遷移した）
var ErrStatusConflict = errors.New("status conflict")

// 注文INSERTが (user_id, idempotency_key) の一意制約に当たった
var ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

// 注文一覧の絞り込み。UserID が nil なら全ユーザー（管理者用）。
type OrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 新しい順。総件数も返す。
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	// 一意制約違反は ErrDuplicateIdempotencyKey で返す
	Create(ctx context.Context, order model.Order) (int64, error)

	// ステータスが from のときだけ to へ更新する。
	// 0行更新は ErrStatusConflict。同時キャンセルや管理者遷移との
	// 競合で二重の在庫戻しが起きないよう、遷移の勝者をここで決める。
	UpdateStatus(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus) error

	// 同じキーなら同じ注文を返すための検索
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
}
