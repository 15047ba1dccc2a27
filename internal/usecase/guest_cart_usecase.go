package usecase

import (
	"context"
)

// GuestCartUsecase はログイン直後に、クライアント側で持っていた
// 匿名カートをサーバー側カートへ取り込む。
// まとめて1トランザクションにはしない：在庫切れで1品落ちても
// 他の品の取り込みとログイン自体は成立させる（再追加で回復できる）。
type GuestCartUsecase struct {
	cartUC *CartUsecase
}

func NewGuestCartUsecase(cartUC *CartUsecase) *GuestCartUsecase {
	return &GuestCartUsecase{cartUC: cartUC}
}

type GuestCartItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// 品目ごとの取り込み結果。失敗は握りつぶさず理由付きで返す。
type GuestCartMergeResult struct {
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Merged    bool   `json:"merged"`
	Reason    string `json:"reason,omitempty"`
}

// Merge は匿名カートの各品目を通常のカート追加と同じ手順
// （同一商品は数量加算、在庫チェックあり）で取り込む。
// 戻り値はエラーではなく品目ごとの結果。呼び出し元を失敗させない。
func (u *GuestCartUsecase) Merge(ctx context.Context, userID int64, items []GuestCartItemInput) []GuestCartMergeResult {
	results := make([]GuestCartMergeResult, 0, len(items))

	for _, it := range items {
		res := GuestCartMergeResult{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		}

		_, err := u.cartUC.AddToCart(ctx, userID, AddCartInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
		if err != nil {
			if he, ok := AsHTTPError(err); ok {
				res.Reason = he.Message
			} else {
				res.Reason = "internal error"
			}
		} else {
			res.Merged = true
		}

		results = append(results, res)
	}

	return results
}
