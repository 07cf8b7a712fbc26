package controllers_test

import (
	"context"
	"sync"
	"time"

	"github.com/metrolabs/metro/app/models"
	"github.com/metrolabs/metro/app/repositories"
)

// In-memory repository fakes backing the HTTP-level tests.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]models.User{}}
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id int) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return models.User{}, repositories.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, id int, fields map[string]interface{}) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	if v, ok := fields["firstName"].(string); ok {
		u.FirstName = v
	}
	if v, ok := fields["lastName"].(string); ok {
		u.LastName = v
	}
	if v, ok := fields["email"].(string); ok {
		u.Email = v
	}
	if v, ok := fields["address"].(*models.UserAddress); ok {
		u.Address = v
	}
	u.UpdatedAt = time.Now()
	f.users[id] = u
	return u, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) All(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	nextID   int
	products map[int]models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[int]models.Product{}}
}

func (f *fakeProductRepo) seed(p models.Product) models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.products[p.ID] = p
	return p
}

func (f *fakeProductRepo) FindByID(_ context.Context, id int) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return models.Product{}, repositories.ErrNotFound
}

func (f *fakeProductRepo) FindByIDs(_ context.Context, ids []int) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Create(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	product.ID = f.nextID
	f.products[product.ID] = *product
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, id int, fields map[string]interface{}) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, repositories.ErrNotFound
	}
	if v, ok := fields["productName"].(string); ok {
		p.Name = v
	}
	if v, ok := fields["price"].(float64); ok {
		p.Price = v
	}
	if v, ok := fields["description"].(string); ok {
		p.Description = v
	}
	if v, ok := fields["imageUrl"].(string); ok {
		p.ImageURL = v
	}
	f.products[id] = p
	return p, nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) All(_ context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID int
	orders map[int]models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[int]models.Order{}}
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id int) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return models.Order{}, repositories.ErrNotFound
}

func (f *fakeOrderRepo) FindByUser(_ context.Context, userID int) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	order.ID = f.nextID
	order.Date = time.Now()
	order.UpdatedAt = order.Date
	f.orders[order.ID] = *order
	return nil
}

func (f *fakeOrderRepo) Update(_ context.Context, id int, fields map[string]interface{}) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return models.Order{}, repositories.ErrNotFound
	}
	if v, ok := fields["status"].(string); ok {
		o.Status = v
	}
	o.UpdatedAt = time.Now()
	f.orders[id] = o
	return o, nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderRepo) All(_ context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}
