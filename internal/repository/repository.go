package repository

import (
	"github.com/akozyrev/amazon-connect/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	Account AccountRepository
	Order   OrderRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		Account: NewAccountRepository(db),
		Order:   NewOrderRepository(db),
	}
}
