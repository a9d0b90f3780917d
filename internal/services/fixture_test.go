package services

import (
	"context"
	"testing"
	"time"

	"sales-order-service/internal/domain"
	"sales-order-service/internal/infra/kv"
	"sales-order-service/internal/infra/remote"
	"sales-order-service/internal/mocks"
	"sales-order-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testDeletePassword = "password"

type fixture struct {
	local        *kv.Memory
	publisher    *mocks.MockPublisher
	productsC    *repository.Collection[domain.Product]
	ordersC      *repository.Collection[domain.Order]
	customersC   *repository.Collection[domain.Customer]
	salespersonC *repository.Collection[domain.Salesperson]

	products     *ProductService
	orders       *OrderService
	customers    *CustomerService
	salespersons *SalespersonService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithRemote(t, nil)
}

func newFixtureWithRemote(t *testing.T, rc remote.ClientInterface) *fixture {
	t.Helper()
	local := kv.NewMemory()
	adapter := repository.NewAdapter(local, rc)

	pub := new(mocks.MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	f := &fixture{
		local:        local,
		publisher:    pub,
		productsC:    repository.NewCollection[domain.Product](adapter, repository.Products),
		ordersC:      repository.NewCollection[domain.Order](adapter, repository.Orders),
		customersC:   repository.NewCollection[domain.Customer](adapter, repository.Customers),
		salespersonC: repository.NewCollection[domain.Salesperson](adapter, repository.Salespersons),
	}
	clock := TickingClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local))

	f.products = NewProductService(f.productsC, pub)
	f.products.now = clock
	f.orders = NewOrderService(f.ordersC, f.customersC, f.productsC, pub, testDeletePassword)
	f.orders.now = clock
	f.customers = NewCustomerService(f.customersC)
	f.customers.now = clock
	f.salespersons = NewSalespersonService(f.salespersonC)
	f.salespersons.now = clock
	f.salespersons.cost = bcrypt.MinCost
	return f
}

func (f *fixture) seedProduct(t *testing.T, name string, price int64) domain.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), AdminActor(), ProductInput{Name: name, Price: decimal.NewFromInt(price)})
	require.NoError(t, err)
	return *p
}

func (f *fixture) seedCustomer(t *testing.T, name, address string) domain.Customer {
	t.Helper()
	c, err := f.customers.Create(context.Background(), CustomerInput{Name: name, Address: address, Contact: "Li", Phone: "123"})
	require.NoError(t, err)
	return *c
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
