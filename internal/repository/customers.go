package repository

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"notas/internal/logger"
	"notas/internal/schema"
	"notas/internal/store"
	"notas/pkg/models"
)

// CustomerPatch holds the fields to change in an Update. Nil fields are left
// untouched.
type CustomerPatch struct {
	Name    *string
	TaxID   *string
	Phone   *string
	Email   *string
	Address *string
}

func (p CustomerPatch) apply(d schema.CustomerDraft) schema.CustomerDraft {
	for _, f := range []struct {
		dst *string
		src *string
	}{
		{&d.Name, p.Name},
		{&d.TaxID, p.TaxID},
		{&d.Phone, p.Phone},
		{&d.Email, p.Email},
		{&d.Address, p.Address},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	return d
}

// CustomerRepository manages registered customers in a store file.
type CustomerRepository struct {
	file *store.File[models.Customer]
	opts options
	log  zerolog.Logger
}

// NewCustomerRepository creates a repository over the given store file.
func NewCustomerRepository(file *store.File[models.Customer], opts ...Option) *CustomerRepository {
	return &CustomerRepository{
		file: file,
		opts: newOptions(opts),
		log:  logger.WithComponent("repository"),
	}
}

// nameTaken reports whether another customer than skip already uses name.
func nameTaken(c *store.Collection[models.Customer], name string, skip int64) bool {
	return slices.ContainsFunc(c.Records, func(existing models.Customer) bool {
		return existing.ID != skip && strings.EqualFold(existing.Name, name)
	})
}

// Add validates a draft and stores it under a fresh id. Names are unique
// regardless of case.
func (r *CustomerRepository) Add(draft schema.CustomerDraft) (models.Customer, error) {
	customer, err := schema.ValidateCustomer(draft)
	if err != nil {
		return models.Customer{}, err
	}

	err = r.file.Update(func(c *store.Collection[models.Customer]) error {
		if nameTaken(c, customer.Name, 0) {
			return schema.NewValidationError("name", customer.Name, "is already registered")
		}
		now := r.opts.now()
		customer.ID = c.Allocate()
		customer.CreatedAt = now
		customer.UpdatedAt = now
		c.Records = append(c.Records, customer)
		return nil
	})
	if err != nil {
		return models.Customer{}, err
	}

	r.log.Info().
		Int64("customer_id", customer.ID).
		Str("name", customer.Name).
		Msg("Customer added")
	return customer, nil
}

// Get returns the customer with the given id.
func (r *CustomerRepository) Get(id int64) (models.Customer, error) {
	c, err := r.file.Load()
	if err != nil {
		return models.Customer{}, err
	}
	i := c.Index(id)
	if i < 0 {
		return models.Customer{}, &NotFoundError{Kind: "customer", ID: id}
	}
	return c.Records[i], nil
}

// FindByName looks a customer up by exact name, ignoring case.
func (r *CustomerRepository) FindByName(name string) (models.Customer, bool, error) {
	c, err := r.file.Load()
	if err != nil {
		return models.Customer{}, false, err
	}
	name = strings.TrimSpace(name)
	for _, customer := range c.Records {
		if strings.EqualFold(customer.Name, name) {
			return customer, true, nil
		}
	}
	return models.Customer{}, false, nil
}

// List returns the customers matching filter sorted by name, then id.
func (r *CustomerRepository) List(filter CustomerFilter) ([]models.Customer, error) {
	c, err := r.file.Load()
	if err != nil {
		return nil, err
	}

	result := make([]models.Customer, 0, c.Len())
	for _, customer := range c.Records {
		if filter.match(customer) {
			result = append(result, customer)
		}
	}
	slices.SortFunc(result, func(a, b models.Customer) int {
		if n := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

// Update merges patch into the stored customer and validates the result.
func (r *CustomerRepository) Update(id int64, patch CustomerPatch) (models.Customer, error) {
	var updated models.Customer

	err := r.file.Update(func(c *store.Collection[models.Customer]) error {
		i := c.Index(id)
		if i < 0 {
			return &NotFoundError{Kind: "customer", ID: id}
		}
		current := c.Records[i]

		merged, err := schema.ValidateCustomer(patch.apply(schema.CustomerDraftFrom(current)))
		if err != nil {
			return err
		}
		if nameTaken(c, merged.Name, id) {
			return schema.NewValidationError("name", merged.Name, "is already registered")
		}

		merged.ID = current.ID
		merged.CreatedAt = current.CreatedAt
		merged.UpdatedAt = touch(r.opts.now, current.CreatedAt)
		merged.Extra = current.Extra.Clone()
		c.Records[i] = merged
		updated = merged
		return nil
	})
	if err != nil {
		return models.Customer{}, err
	}

	r.log.Info().Int64("customer_id", id).Msg("Customer updated")
	return updated, nil
}

// Delete removes the customer with the given id. Invoices that reference it
// keep their customer_id and client_name.
func (r *CustomerRepository) Delete(id int64) error {
	err := r.file.Update(func(c *store.Collection[models.Customer]) error {
		i := c.Index(id)
		if i < 0 {
			return &NotFoundError{Kind: "customer", ID: id}
		}
		c.Records = append(c.Records[:i], c.Records[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Info().Int64("customer_id", id).Msg("Customer deleted")
	return nil
}

// DeleteAll removes every customer and returns how many were removed.
func (r *CustomerRepository) DeleteAll() (int, error) {
	var removed int
	err := r.file.Update(func(c *store.Collection[models.Customer]) error {
		removed = c.Len()
		c.Records = []models.Customer{}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.log.Info().Int("removed", removed).Msg("All customers deleted")
	return removed, nil
}

// Count returns the number of registered customers.
func (r *CustomerRepository) Count() (int, error) {
	c, err := r.file.Load()
	if err != nil {
		return 0, err
	}
	return c.Len(), nil
}
