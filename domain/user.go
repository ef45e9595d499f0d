package domain

// User is a dashboard or vendor-portal account. Vendor users are linked to a
// consignor and only see their own inventory and earnings.
type User struct {
	ID          int64  `db:"id" json:"id"`
	Username    string `db:"username" json:"username"`
	Email       string `db:"email" json:"email"`
	Password    string `db:"password" json:"password,omitempty"`
	Role        string `db:"role" json:"role"`
	ConsignorID *int64 `db:"consignor_id" json:"consignor_id,omitempty"`
	CreatedAt   string `db:"created_at" json:"created_at,omitempty"`
}
