package seed

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// EnsureAdmin creates the initial admin account if no admin user exists yet.
// Skipped when no initial password is configured.
func EnsureAdmin(db *sqlx.DB, email, password string) {
	if password == "" {
		return
	}

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM users WHERE role = 'admin'`); err != nil {
		log.Printf("unable to check for admin users: %v", err)
		return
	}
	if count > 0 {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("unable to hash initial admin password: %v", err)
		return
	}

	_, err = db.Exec(`INSERT INTO users (username, email, password, role) VALUES ($1, $2, $3, 'admin')`,
		"admin", email, hashed)
	if err != nil {
		log.Printf("unable to seed admin user: %v", err)
		return
	}
	log.Printf("seeded initial admin user %s", email)
}
