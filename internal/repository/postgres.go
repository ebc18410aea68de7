package repository

import "gorm.io/gorm"

// PostgresStore bundles the gorm repositories behind one value.
type PostgresStore struct {
	*ClientRepository
	*ContractRepository
	*VisitRepository
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{
		ClientRepository:   NewClientRepository(db),
		ContractRepository: NewContractRepository(db),
		VisitRepository:    NewVisitRepository(db),
	}
}
