package employees

import (
	cryptoutil "paycore/internal/platform/crypto"
	"paycore/internal/platform/querier"
)

type Store struct {
	DB     querier.Querier
	Crypto *cryptoutil.Service
}

func NewStore(db querier.Querier, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}
