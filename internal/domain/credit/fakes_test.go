package credit

import (
	"context"
	"errors"
	"sort"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/domain/uow"
)

// store backs fakeCustomers and fakeLoans with shared in-memory state.
type store struct {
	customers map[int64]*customer.Customer
	loans     []*loan.Loan
	nextLoan  int64

	failCreateLoan error
	failListLoans  error
}

func newStore() *store {
	return &store{customers: map[int64]*customer.Customer{}, nextLoan: 1}
}

func (s *store) addCustomer(c *customer.Customer) *customer.Customer {
	s.customers[c.CustomerID] = c
	return c
}

func (s *store) addLoan(l loan.Loan) {
	if l.ID == 0 {
		l.ID = s.nextLoan
	}
	if l.ID >= s.nextLoan {
		s.nextLoan = l.ID + 1
	}
	s.loans = append(s.loans, &l)
}

func (s *store) repos() uow.Repos {
	return uow.Repos{Customers: &fakeCustomers{s}, Loans: &fakeLoans{s}}
}

type fakeCustomers struct{ s *store }

func (f *fakeCustomers) Create(_ context.Context, c *customer.Customer) error {
	f.s.customers[c.CustomerID] = c
	return nil
}

func (f *fakeCustomers) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	c, ok := f.s.customers[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomers) FindByIDForUpdate(ctx context.Context, id int64) (*customer.Customer, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeCustomers) NextCustomerID(context.Context) (int64, error) {
	var top int64
	for id := range f.s.customers {
		if id > top {
			top = id
		}
	}
	return top + 1, nil
}

func (f *fakeCustomers) UpdateCurrentDebt(_ context.Context, id int64, debt float64) error {
	c, ok := f.s.customers[id]
	if !ok {
		return customer.ErrNotFound
	}
	c.CurrentDebt = debt
	return nil
}

func (f *fakeCustomers) Upsert(_ context.Context, cs []*customer.Customer) (int, error) {
	for _, c := range cs {
		f.s.customers[c.CustomerID] = c
	}
	return len(cs), nil
}

func (f *fakeCustomers) RefreshCurrentDebt(context.Context, time.Time) (int64, error) {
	return 0, errors.New("not used")
}

type fakeLoans struct{ s *store }

func (f *fakeLoans) Create(_ context.Context, l *loan.Loan) error {
	if f.s.failCreateLoan != nil {
		return f.s.failCreateLoan
	}
	l.ID = f.s.nextLoan
	l.CreatedAt = time.Now()
	f.s.addLoan(*l)
	return nil
}

func (f *fakeLoans) FindByID(_ context.Context, id int64) (*loan.Loan, error) {
	for _, l := range f.s.loans {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, loan.ErrNotFound
}

func (f *fakeLoans) ListByCustomer(_ context.Context, customerID int64) ([]loan.Loan, error) {
	if f.s.failListLoans != nil {
		return nil, f.s.failListLoans
	}
	var out []loan.Loan
	for _, l := range f.s.loans {
		if l.CustomerID == customerID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeLoans) SumActivePrincipal(_ context.Context, customerID int64, asOf time.Time) (float64, error) {
	var sum float64
	for _, l := range f.s.loans {
		if l.CustomerID == customerID && l.IsActive(asOf) {
			sum += l.LoanAmount
		}
	}
	return sum, nil
}

func (f *fakeLoans) SumActiveMonthlyRepayment(_ context.Context, customerID int64, asOf time.Time) (float64, error) {
	var sum float64
	for _, l := range f.s.loans {
		if l.CustomerID == customerID && l.IsActive(asOf) {
			sum += l.MonthlyRepayment
		}
	}
	return sum, nil
}

func (f *fakeLoans) Upsert(_ context.Context, ls []*loan.Loan) (int, error) {
	for _, l := range ls {
		f.s.addLoan(*l)
	}
	return len(ls), nil
}

func (f *fakeLoans) SyncIDSequence(context.Context) error { return nil }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
