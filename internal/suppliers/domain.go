package suppliers

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/brewops/brewops/internal/shared"
)

// Status is the activation state of a supplier.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Supplier is a leaf grower the factory buys from.
type Supplier struct {
	ID                int64     `json:"id"`
	Code              string    `json:"supplier_code"`
	Name              string    `json:"name"`
	ContactNumber     string    `json:"contact_number"`
	NICNumber         *string   `json:"nic_number"`
	Address           string    `json:"address"`
	BankAccountNumber string    `json:"bank_account_number"`
	BankName          string    `json:"bank_name"`
	Rate              float64   `json:"rate"`
	Status            Status    `json:"status"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Input is the create/update payload.
type Input struct {
	Name              string   `json:"name" validate:"required,min=2,max=100"`
	ContactNumber     string   `json:"contact_number" validate:"omitempty,min=9,max=15,numeric"`
	NICNumber         string   `json:"nic_number" validate:"omitempty,min=10,max=12,alphanum"`
	Address           string   `json:"address" validate:"max=255"`
	BankAccountNumber string   `json:"bank_account_number" validate:"omitempty,min=8,max=20"`
	BankName          string   `json:"bank_name" validate:"max=100"`
	Rate              *float64 `json:"rate" validate:"omitempty,gte=0"`
	IsActive          *bool    `json:"is_active"`
}

// ListFilter narrows List. Inactive suppliers are hidden unless IncludeInactive.
type ListFilter struct {
	IncludeInactive bool
	Search          string
}

const codePrefix = "SUP"

var codePattern = regexp.MustCompile(`^SUP(\d+)$`)

// NextCode returns the code after last, starting at SUP00001.
func NextCode(last string) string {
	next := 1
	if m := codePattern.FindStringSubmatch(last); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%05d", codePrefix, next)
}

var (
	// ErrSupplierNotFound is returned when a supplier id or code does not exist.
	ErrSupplierNotFound = shared.NewKindError(shared.ErrNotFound, "Supplier not found")
	// ErrDuplicateNIC is returned when another supplier holds the NIC number.
	ErrDuplicateNIC = shared.NewKindError(shared.ErrConflict, "A supplier with this NIC number already exists")
	// ErrDuplicateCode is returned when the generated code is already taken.
	ErrDuplicateCode = shared.NewKindError(shared.ErrConflict, "Supplier ID already exists")
)
