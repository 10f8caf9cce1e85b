package db_models

type Account struct {
	BaseModel
	Name         string
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	Role         string `gorm:"default:user"` // "user" | "admin"

	// External billing references. Customer id is mirrored here so checkout
	// and the portal can be opened without loading the subscription row.
	ProviderCustomerID string `gorm:"index"`

	DayInRoles []DayInRole
	Interviews []Interview
}
