package postgres_test

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var (
	productCols = []string{"id", "retailer_id", "name", "category", "image_url", "rental_price_per_day", "security_deposit", "available"}
	rentalCols  = []string{"id", "rental_id", "user_id", "product_id", "start_date", "end_date", "total_days",
		"rental_price", "security_deposit", "total_amount", "payment_id", "payment_order_id",
		"status", "version", "created_at", "updated_at"}
	returnCols = []string{"id", "return_id", "rental_id", "user_id", "product_id", "pickup_date", "time_slot",
		"additional_notes", "status", "delivery_partner_id", "inspection", "version", "created_at", "updated_at"}
	customerCols = []string{"u_id", "u_name", "u_email", "u_phone", "u_role"}
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db, mock
}

func productValues() []driver.Value {
	return []driver.Value{"prod-1", "retailer-1", "Silk Saree", "ethnic", "https://img/1.jpg", int64(50000), int64(200000), true}
}

func rentalValues(id int64, rentalID, status string) []driver.Value {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return []driver.Value{id, rentalID, "cust-1", "prod-1", start, start.AddDate(0, 0, 5), int64(5),
		int64(250000), int64(200000), int64(450000), "pay_123", "order_123",
		status, int64(1), time.Now(), time.Now()}
}

func rentalRows(values ...[]driver.Value) *sqlmock.Rows {
	rows := sqlmock.NewRows(append(append([]string{}, rentalCols...), productCols...))
	for _, v := range values {
		rows.AddRow(append(v, productValues()...)...)
	}
	return rows
}

func returnValues(id int64, returnID, status string, partner, inspection any) []driver.Value {
	pickup := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	values := []driver.Value{id, returnID, int64(10), "cust-1", "prod-1", pickup, "9AM-12PM",
		"ring the bell", status, partner, inspection, int64(2), time.Now(), time.Now()}
	values = append(values, rentalValues(10, "RENT-AAAA1111", "return_scheduled")...)
	values = append(values, productValues()...)
	return values
}

func returnRows(customer bool, values ...[]driver.Value) *sqlmock.Rows {
	cols := append([]string{}, returnCols...)
	cols = append(cols, rentalCols...)
	cols = append(cols, productCols...)
	cols = append(cols, customerCols...)
	rows := sqlmock.NewRows(cols)
	for _, v := range values {
		if customer {
			v = append(v, "cust-1", "Asha", "asha@example.com", "+91-9000000000", "customer")
		} else {
			v = append(v, nil, nil, nil, nil, nil)
		}
		rows.AddRow(v...)
	}
	return rows
}
