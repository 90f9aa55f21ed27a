// Package exchange holds the stock-exchange aggregate. It is deliberately a
// plain CRUD-style aggregate: no events, no status machine, just guarded
// construction and updates.
package exchange

import (
	"strings"

	"finmarket/domain/shared"

	"github.com/google/uuid"
)

// EntityName is the registry name used for cache policies and audit entries.
const EntityName = "Exchange"

// Exchange is a trading venue such as Euronext or NASDAQ.
type Exchange struct {
	shared.EntityBase
	Name    string `json:"name"`
	Acronym string `json:"acronym"`
	Country string `json:"country"`
}

// New creates an exchange. The acronym is normalized to upper case.
func New(name, acronym, country string) (*Exchange, error) {
	if err := validate(name, acronym, country); err != nil {
		return nil, err
	}
	return &Exchange{
		EntityBase: shared.EntityBase{ID: uuid.New()},
		Name:       name,
		Acronym:    strings.ToUpper(acronym),
		Country:    country,
	}, nil
}

// UpdateDetails renames the exchange or moves it to another country. The
// acronym is the stable identifier and cannot change.
func (e *Exchange) UpdateDetails(name, country string) error {
	if err := validate(name, e.Acronym, country); err != nil {
		return err
	}
	e.Name = name
	e.Country = country
	return nil
}

func validate(name, acronym, country string) error {
	if name == "" {
		return shared.NewRuleError("exchanges.nameRequired", "an exchange needs a name")
	}
	if acronym == "" {
		return shared.NewRuleError("exchanges.acronymRequired", "an exchange needs an acronym")
	}
	if country == "" {
		return shared.NewRuleError("exchanges.countryRequired", "an exchange needs a country")
	}
	return nil
}

var _ shared.AggregateRoot = (*Exchange)(nil)
