package employees

import (
	"context"

	cryptoutil "paycore/internal/platform/crypto"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = masked(list[i])
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	emp, err := s.store.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	return masked(emp), nil
}

func (s *Service) IDByUserID(ctx context.Context, userID string) (string, error) {
	return s.store.IDByUserID(ctx, userID)
}

func masked(emp Employee) Employee {
	emp.SSSNumber = cryptoutil.Mask(emp.SSSNumber)
	emp.PhilHealthNumber = cryptoutil.Mask(emp.PhilHealthNumber)
	emp.PagIBIGNumber = cryptoutil.Mask(emp.PagIBIGNumber)
	return emp
}
