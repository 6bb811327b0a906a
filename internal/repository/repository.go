package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"order-management-service/internal/entity"
)

var (
	// ErrNotFound is returned when a query matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate entry")
)

const mysqlDuplicateEntry = 1062

func translateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return ErrDuplicate
	}
	return err
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `INSERT INTO users (username, password) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, query, user.Username, user.Password)
	if err != nil {
		return nil, translateError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	user.ID = int(id)
	return user, nil
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	user := &entity.User{}
	query := `SELECT id, username, password FROM users WHERE username = ?`
	err := r.db.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Username, &user.Password)
	if err != nil {
		return nil, translateError(err)
	}

	return user, nil
}

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	query := `INSERT INTO orders (user_id, item, quantity) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, order.UserID, order.Item, order.Quantity)
	if err != nil {
		return nil, translateError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	order.ID = int(id)

	var username sql.NullString
	err = r.db.QueryRowContext(ctx, `SELECT username FROM users WHERE id = ?`, order.UserID).Scan(&username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if username.Valid {
		order.Username = &username.String
	}

	return order, nil
}

// ListOrdersByUser returns all orders owned by userID in insertion order.
// The ownership filter lives in the query itself.
func (r *OrderRepository) ListOrdersByUser(ctx context.Context, userID int) ([]entity.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.item, o.quantity, u.username
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.user_id = ?
		ORDER BY o.id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []entity.Order{}
	for rows.Next() {
		order := entity.Order{}
		var username sql.NullString
		err := rows.Scan(&order.ID, &order.UserID, &order.Item, &order.Quantity, &username)
		if err != nil {
			return nil, err
		}
		if username.Valid {
			order.Username = &username.String
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
