package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// 取得対象なし（所有違いも含めて同じ扱いにする）
var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *int64
	MaxPrice *int64
}

// カタログの窓口。注文コアから見ると価格・在庫・名前の読み取り元。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
}
