package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type OrderItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type Order struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id"`
	Status     string      `json:"status"`
	TotalPrice int64       `json:"total_price"`
	CreatedAt  string      `json:"created_at"`
	Items      []OrderItem `json:"items"`
}

type CartResponse struct {
	Items         []OrderItem `json:"items"`
	ItemCount     int         `json:"item_count"`
	TotalQuantity int64       `json:"total_quantity"`
	Subtotal      int64       `json:"subtotal"`
}

func mustDecodeOrder(t *testing.T, body []byte) Order {
	t.Helper()
	var v Order
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(Order) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeCart(t *testing.T, body []byte) CartResponse {
	t.Helper()
	var v CartResponse
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(CartResponse) failed: %v body=%s", err, string(body))
	}
	return v
}

func addToCart(t *testing.T, c *TestClient, ctx context.Context, access string, productID int64, qty int64) CartResponse {
	t.Helper()

	reqJSON, err := json.Marshal(map[string]int64{
		"product_id": productID,
		"quantity":   qty,
	})
	if err != nil {
		t.Fatalf("json.Marshal(AddCartRequest) failed: %v", err)
	}

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/cart", access, nil, reqJSON)
	requireStatus(t, resp, http.StatusOK, body)
	return mustDecodeCart(t, body)
}

func getCart(t *testing.T, c *TestClient, ctx context.Context, access string) CartResponse {
	t.Helper()

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/cart", access, nil, nil)
	requireStatus(t, resp, http.StatusOK, body)
	return mustDecodeCart(t, body)
}

func orderCreateJSON(t *testing.T) []byte {
	t.Helper()

	b, err := json.Marshal(map[string]any{
		"shipping_address": map[string]string{
			"name":     "山田 太郎",
			"phone":    "090-0000-0000",
			"street":   "1-2-3 Chiyoda",
			"city":     "Tokyo",
			"state":    "Tokyo",
			"country":  "JP",
			"zip_code": "100-0001",
		},
		"payment_method": "CREDIT_CARD",
	})
	if err != nil {
		t.Fatalf("json.Marshal(OrderCreateRequest) failed: %v", err)
	}
	return b
}

func placeOrder(t *testing.T, c *TestClient, ctx context.Context, access string, idemKey string) (*http.Response, []byte) {
	t.Helper()

	var headers map[string]string
	if idemKey != "" {
		headers = map[string]string{"X-Idempotency-Key": idemKey}
	}
	return c.doJSON(ctx, t, http.MethodPost, "/orders", access, headers, orderCreateJSON(t))
}

// カート確定の基本フロー。注文が作られ、在庫が減り、カートが空になる。
func TestOrders_PlaceOrderFlow(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	access := registerAndLogin(t, c, ctx)
	name := fmt.Sprintf("order-flow-%s", time.Now().Format("20060102-150405.000000000"))
	productID := seedProduct(t, c, name, 1000, 10)

	addToCart(t, c, ctx, access, productID, 3)

	resp, body := placeOrder(t, c, ctx, access, "")
	requireStatus(t, resp, http.StatusCreated, body)

	order := mustDecodeOrder(t, body)
	if order.Status != "PENDING" {
		t.Fatalf("status=%s want=PENDING", order.Status)
	}
	if order.TotalPrice != 3000 {
		t.Fatalf("total_price=%d want=3000", order.TotalPrice)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 3 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}

	if got := currentStock(t, c, productID); got != 7 {
		t.Fatalf("stock=%d want=7", got)
	}

	cart := getCart(t, c, ctx, access)
	if cart.ItemCount != 0 {
		t.Fatalf("cart not cleared: %+v", cart)
	}
}

// 同じX-Idempotency-Keyの再送は同じ注文を返し、在庫は1回分しか減らない
func TestOrders_IdempotencyKeyReplay(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	access := registerAndLogin(t, c, ctx)
	name := fmt.Sprintf("order-idem-%s", time.Now().Format("20060102-150405.000000000"))
	productID := seedProduct(t, c, name, 1000, 10)

	addToCart(t, c, ctx, access, productID, 2)

	key := fmt.Sprintf("key-%s", name)

	resp, body := placeOrder(t, c, ctx, access, key)
	requireStatus(t, resp, http.StatusCreated, body)
	first := mustDecodeOrder(t, body)

	resp, body = placeOrder(t, c, ctx, access, key)
	requireStatus(t, resp, http.StatusCreated, body)
	second := mustDecodeOrder(t, body)

	if first.ID != second.ID {
		t.Fatalf("replay created a new order: first=%d second=%d", first.ID, second.ID)
	}
	if got := currentStock(t, c, productID); got != 8 {
		t.Fatalf("stock=%d want=8", got)
	}
}

// 別ユーザーが同じキー文字列を使っても自分の注文は作れる
func TestOrders_IdempotencyKeyScopedPerUser(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	name := fmt.Sprintf("order-idem-scope-%s", time.Now().Format("20060102-150405.000000000"))
	productID := seedProduct(t, c, name, 1000, 10)
	key := fmt.Sprintf("key-%s", name)

	accessA := registerAndLogin(t, c, ctx)
	addToCart(t, c, ctx, accessA, productID, 1)
	resp, body := placeOrder(t, c, ctx, accessA, key)
	requireStatus(t, resp, http.StatusCreated, body)
	orderA := mustDecodeOrder(t, body)

	accessB := registerAndLogin(t, c, ctx)
	addToCart(t, c, ctx, accessB, productID, 1)
	resp, body = placeOrder(t, c, ctx, accessB, key)
	requireStatus(t, resp, http.StatusCreated, body)
	orderB := mustDecodeOrder(t, body)

	if orderA.ID == orderB.ID {
		t.Fatalf("key collision across users: both got order %d", orderA.ID)
	}
}

// 在庫を超える注文は409で、在庫は減らずカートも残る
func TestOrders_OutOfStockRejected(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	access := registerAndLogin(t, c, ctx)
	name := fmt.Sprintf("order-oos-%s", time.Now().Format("20060102-150405.000000000"))
	productID := seedProduct(t, c, name, 1000, 2)

	addToCart(t, c, ctx, access, productID, 2)

	// カート投入後に在庫が別で減った状況を作る
	if err := c.DB.Exec(
		"UPDATE products SET stock = 1 WHERE id = ?", productID,
	).Error; err != nil {
		t.Fatalf("shrink stock failed: %v", err)
	}

	resp, body := placeOrder(t, c, ctx, access, "")
	requireStatus(t, resp, http.StatusConflict, body)
	_ = mustDecodeError(t, body)

	if got := currentStock(t, c, productID); got != 1 {
		t.Fatalf("stock=%d want=1", got)
	}

	cart := getCart(t, c, ctx, access)
	if cart.ItemCount != 1 {
		t.Fatalf("cart should survive a failed order: %+v", cart)
	}
}

// キャンセルで在庫が明細の数量どおり戻る
func TestOrders_CancelRestoresStock(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	access := registerAndLogin(t, c, ctx)
	name := fmt.Sprintf("order-cancel-%s", time.Now().Format("20060102-150405.000000000"))
	productID := seedProduct(t, c, name, 1000, 10)

	addToCart(t, c, ctx, access, productID, 4)

	resp, body := placeOrder(t, c, ctx, access, "")
	requireStatus(t, resp, http.StatusCreated, body)
	order := mustDecodeOrder(t, body)

	if got := currentStock(t, c, productID); got != 6 {
		t.Fatalf("stock=%d want=6", got)
	}

	resp, body = c.doJSON(ctx, t, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", order.ID), access, nil, nil)
	requireStatus(t, resp, http.StatusOK, body)
	cancelled := mustDecodeOrder(t, body)
	if cancelled.Status != "CANCELLED" {
		t.Fatalf("status=%s want=CANCELLED", cancelled.Status)
	}

	if got := currentStock(t, c, productID); got != 10 {
		t.Fatalf("stock=%d want=10", got)
	}
}
