package migrations

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the consignment POS backend.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			consignor_id INTEGER,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS consignors (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			commission_split NUMERIC(5,4) NOT NULL,
			booth_rent NUMERIC(12,2) NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id SERIAL PRIMARY KEY,
			consignor_id INTEGER NOT NULL REFERENCES consignors(id),
			sku TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 0,
			label_status TEXT NOT NULL DEFAULT 'pending',
			listed BOOLEAN NOT NULL DEFAULT FALSE,
			shopify_product_id TEXT,
			last_synced_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS customers (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS employees (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			pin_hash TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS time_entries (
			id SERIAL PRIMARY KEY,
			employee_id INTEGER NOT NULL REFERENCES employees(id),
			clock_in TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			clock_out TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS sales (
			id SERIAL PRIMARY KEY,
			number TEXT NOT NULL UNIQUE,
			subtotal NUMERIC(12,2) NOT NULL,
			discount_type TEXT,
			discount_value NUMERIC(12,2) NOT NULL DEFAULT 0,
			discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			tax_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			total NUMERIC(12,2) NOT NULL,
			payment_method TEXT NOT NULL,
			employee_id INTEGER REFERENCES employees(id),
			customer_id INTEGER REFERENCES customers(id),
			completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS sale_items (
			id SERIAL PRIMARY KEY,
			sale_id INTEGER NOT NULL REFERENCES sales(id),
			item_id INTEGER NOT NULL REFERENCES items(id),
			consignor_id INTEGER NOT NULL REFERENCES consignors(id),
			quantity INTEGER NOT NULL,
			unit_price NUMERIC(12,2) NOT NULL,
			commission_split NUMERIC(5,4) NOT NULL,
			subtotal NUMERIC(12,2) NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS refunds (
			id SERIAL PRIMARY KEY,
			number TEXT NOT NULL UNIQUE,
			sale_id INTEGER NOT NULL REFERENCES sales(id),
			total_amount NUMERIC(12,2) NOT NULL,
			tax_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS refund_items (
			id SERIAL PRIMARY KEY,
			refund_id INTEGER NOT NULL REFERENCES refunds(id),
			sale_item_id INTEGER NOT NULL REFERENCES sale_items(id),
			quantity INTEGER NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			restocked BOOLEAN NOT NULL DEFAULT FALSE
		);`,
		`CREATE TABLE IF NOT EXISTS payouts (
			id SERIAL PRIMARY KEY,
			number TEXT NOT NULL UNIQUE,
			consignor_id INTEGER NOT NULL REFERENCES consignors(id),
			period_start TIMESTAMPTZ NOT NULL,
			period_end TIMESTAMPTZ NOT NULL,
			gross_sales NUMERIC(12,2) NOT NULL,
			tax_collected NUMERIC(12,2) NOT NULL,
			consignor_share NUMERIC(12,2) NOT NULL,
			store_share NUMERIC(12,2) NOT NULL,
			item_count INTEGER NOT NULL,
			sale_count INTEGER NOT NULL,
			method TEXT NOT NULL DEFAULT 'check',
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS booth_rent_payments (
			id SERIAL PRIMARY KEY,
			consignor_id INTEGER NOT NULL REFERENCES consignors(id),
			amount NUMERIC(12,2) NOT NULL,
			period_month TEXT NOT NULL,
			method TEXT NOT NULL DEFAULT 'cash',
			notes TEXT NOT NULL DEFAULT '',
			paid_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_consignor ON items(consignor_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sale_items_consignor ON sale_items(consignor_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id);`,
		`CREATE INDEX IF NOT EXISTS idx_refund_items_sale_item ON refund_items(sale_item_id);`,
		`CREATE INDEX IF NOT EXISTS idx_payouts_consignor ON payouts(consignor_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_completed_at ON sales(completed_at);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
}
