package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	cartdb "github.com/dwikikusuma/storefront/internal/cart/infra/postgres/cartdb"
	inventoryapp "github.com/dwikikusuma/storefront/internal/inventory/app"
	inventorypg "github.com/dwikikusuma/storefront/internal/inventory/infra/postgres"
	"github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/internal/order/infra/postgres/orderdb"
	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/contracts"
	"github.com/dwikikusuma/storefront/pkg/outbox"
	"github.com/dwikikusuma/storefront/pkg/postgres"
)

type OrderRepo struct {
	*orderdb.Queries
	db  *sql.DB
	dbx *sqlx.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{
		Queries: orderdb.New(db),
		db:      db,
		dbx:     sqlx.NewDb(db, postgres.DriverName),
	}
}

func (r *OrderRepo) execTX(ctx context.Context, fn func(tx *sql.Tx, q *orderdb.Queries) error) error {
	return postgres.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(tx, orderdb.New(tx))
	})
}

func (r *OrderRepo) PlaceOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	customerID, err := uuid.Parse(order.CustomerID)
	if err != nil {
		return domain.Order{}, apperr.NotFound("customer not found")
	}

	var created domain.Order
	err = r.execTX(ctx, func(tx *sql.Tx, q *orderdb.Queries) error {
		o, err := q.CreateOrder(ctx, orderdb.CreateOrderParams{
			CustomerID:        customerID,
			Status:            string(order.Status),
			PaymentStatus:     string(order.PaymentStatus),
			TotalAmount:       order.TotalAmount,
			ShippingName:      order.Address.ShippingName,
			ShippingPhone:     order.Address.ShippingPhone,
			AddressLine1:      order.Address.AddressLine1,
			AddressLine2:      order.Address.AddressLine2,
			City:              order.Address.City,
			State:             order.Address.State,
			PostalCode:        order.Address.PostalCode,
			Country:           order.Address.Country,
			PaymentOptionCode: order.PaymentOptionCode,
			PaymentOptionName: nullString(order.PaymentOptionName),
		})
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		items := make([]orderdb.OrderItem, 0, len(order.Items))
		for i, item := range order.Items {
			variantID, err := uuid.Parse(item.VariantID)
			if err != nil {
				return apperr.NotFound("product variant not found")
			}

			row, err := q.AddOrderItem(ctx, orderdb.AddOrderItemParams{
				OrderID:          o.ID,
				ProductVariantID: variantID,
				Quantity:         int32(item.Quantity),
				UnitPrice:        item.UnitPrice,
			})
			if err != nil {
				return fmt.Errorf("failed to insert item %d: %w", i, err)
			}
			items = append(items, row)
		}

		// Claim the cart before touching stock: a second submit of the same
		// cart blocks on these rows and then finds nothing to delete.
		if err := claimCart(ctx, cartdb.New(tx), customerID, order.Items); err != nil {
			return err
		}

		// Fixed lock order across checkouts that share variants.
		ledger := inventoryapp.NewLedger(inventorypg.NewStockRepo(tx))
		for _, item := range sortedByVariant(order.Items) {
			if _, err := ledger.Reserve(ctx, item.VariantID, item.Quantity); err != nil {
				return err
			}
		}

		created = toDomainOrder(o, items)
		ev := outbox.NewOrderEvent(contracts.EventOrderPlaced, created.ID, map[string]any{
			"customer_id":  created.CustomerID,
			"total_amount": created.TotalAmount.StringFixed(2),
			"lines":        len(created.Items),
			"payment":      created.PaymentOptionCode,
		})
		return outbox.Insert(ctx, tx, contracts.TopicOrders, ev)
	})
	if err != nil {
		return domain.Order{}, err
	}
	return created, nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return domain.Order{}, app.ErrNotFound
	}

	o, err := r.GetOrder(ctx, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}

	items, err := r.ListOrderItems(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("list order items: %w", err)
	}
	return toDomainOrder(o, items), nil
}

func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Order, error) {
	cid, err := uuid.Parse(customerID)
	if err != nil {
		return nil, nil
	}

	rows, err := r.ListOrdersByCustomer(ctx, orderdb.ListOrdersByCustomerParams{CustomerID: cid, Limit: int32(limit)})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainOrder(row, nil))
	}
	return out, nil
}

type adminOrderRow struct {
	orderdb.Order
	CustomerEmail    string `db:"customer_email"`
	CustomerFullName string `db:"customer_full_name"`
}

const listAdminOrders = `
SELECT ` + orderdb.OrderColumns + `, c.email AS customer_email, c.full_name AS customer_full_name
FROM orders o
JOIN customers c ON c.id = o.customer_id
WHERE ($2::timestamptz IS NULL OR (o.created_at, o.id) < ($2::timestamptz, $3::uuid))
ORDER BY o.created_at DESC, o.id DESC
LIMIT $1`

func (r *OrderRepo) ListForAdmin(ctx context.Context, limit int, cursor string) ([]domain.AdminOrder, string, error) {
	var (
		afterTime sql.NullTime
		afterID   uuid.NullUUID
	)
	if strings.TrimSpace(cursor) != "" {
		t, id, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", apperr.Validation("invalid cursor")
		}
		afterTime = sql.NullTime{Time: t, Valid: true}
		afterID = uuid.NullUUID{UUID: id, Valid: true}
	}

	var rows []adminOrderRow
	if err := r.dbx.SelectContext(ctx, &rows, listAdminOrders, limit, afterTime, afterID); err != nil {
		return nil, "", fmt.Errorf("list admin orders: %w", err)
	}

	out := make([]domain.AdminOrder, 0, len(rows))
	var next string
	for _, row := range rows {
		out = append(out, domain.AdminOrder{
			Order: toDomainOrder(row.Order, nil),
			Customer: domain.CustomerSummary{
				ID:       row.CustomerID.String(),
				Email:    row.CustomerEmail,
				FullName: row.CustomerFullName,
			},
		})
		next = encodeCursor(row.CreatedAt, row.ID)
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to domain.Status, payment domain.PaymentStatus) (domain.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return domain.Order{}, app.ErrNotFound
	}

	var updated domain.Order
	err = r.execTX(ctx, func(tx *sql.Tx, q *orderdb.Queries) error {
		o, err := q.UpdateOrderStatus(ctx, orderdb.UpdateOrderStatusParams{
			ID:            orderID,
			PrevStatus:    string(from),
			Status:        string(to),
			PaymentStatus: string(payment),
		})
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := q.GetOrder(ctx, orderID); errors.Is(getErr, sql.ErrNoRows) {
				return app.ErrNotFound
			}
			return app.ErrConcurrentUpdate
		}
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		items, err := q.ListOrderItems(ctx, orderID)
		if err != nil {
			return fmt.Errorf("list order items: %w", err)
		}
		updated = toDomainOrder(o, items)

		ev := outbox.NewOrderEvent(contracts.EventOrderStatusChanged, updated.ID, map[string]any{
			"from":           string(from),
			"to":             string(to),
			"payment_status": string(payment),
		})
		return outbox.Insert(ctx, tx, contracts.TopicOrders, ev)
	})
	if err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}

type cartClaimer interface {
	ClaimCartByCustomerID(ctx context.Context, customerID uuid.UUID) ([]cartdb.ClaimedCartItem, error)
}

// claimCart deletes the customer's cart lines and fails unless they are the
// lines being ordered.
func claimCart(ctx context.Context, carts cartClaimer, customerID uuid.UUID, ordered []domain.OrderItem) error {
	rows, err := carts.ClaimCartByCustomerID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("failed to claim cart: %w", err)
	}

	claimed := make([]domain.OrderItem, 0, len(rows))
	for _, row := range rows {
		claimed = append(claimed, domain.OrderItem{
			VariantID: row.ProductVariantID.String(),
			Quantity:  int(row.Quantity),
			UnitPrice: row.UnitPrice,
		})
	}
	return app.MatchClaimedCart(ordered, claimed)
}

func sortedByVariant(items []domain.OrderItem) []domain.OrderItem {
	out := append([]domain.OrderItem(nil), items...)
	sort.Slice(out, func(i, j int) bool { return out[i].VariantID < out[j].VariantID })
	return out
}

func encodeCursor(t time.Time, id uuid.UUID) string {
	return t.UTC().Format(time.RFC3339Nano) + "_" + id.String()
}

func decodeCursor(s string) (time.Time, uuid.UUID, error) {
	ts, rawID, ok := strings.Cut(strings.TrimSpace(s), "_")
	if !ok {
		return time.Time{}, uuid.Nil, errors.New("malformed cursor")
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}
	return t, id, nil
}

func toDomainOrder(o orderdb.Order, rows []orderdb.OrderItem) domain.Order {
	out := domain.Order{
		ID:            o.ID.String(),
		CustomerID:    o.CustomerID.String(),
		Status:        domain.Status(o.Status),
		PaymentStatus: domain.PaymentStatus(o.PaymentStatus),
		TotalAmount:   o.TotalAmount,
		Address: domain.Address{
			ShippingName:  o.ShippingName,
			ShippingPhone: o.ShippingPhone,
			AddressLine1:  o.AddressLine1,
			AddressLine2:  o.AddressLine2,
			City:          o.City,
			State:         o.State,
			PostalCode:    o.PostalCode,
			Country:       o.Country,
		},
		PaymentOptionCode: o.PaymentOptionCode,
		PaymentOptionName: stringPtr(o.PaymentOptionName),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	for _, it := range rows {
		out.Items = append(out.Items, domain.OrderItem{
			ID:        it.ID.String(),
			OrderID:   it.OrderID.String(),
			VariantID: it.ProductVariantID.String(),
			Quantity:  int(it.Quantity),
			UnitPrice: it.UnitPrice,
		})
	}
	return out
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
