package receipt

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(uniqueItemIDs, Receipt{})
	return v
}

// uniqueItemIDs rejects two line items sharing an ID. Blank IDs are left for
// Editor.Replace to fill in.
func uniqueItemIDs(sl validator.StructLevel) {
	r := sl.Current().Interface().(Receipt)
	seen := make(map[string]bool, len(r.Items))
	for i, item := range r.Items {
		if item.ID == "" {
			continue
		}
		if seen[item.ID] {
			sl.ReportError(item.ID, fmt.Sprintf("Items[%d].ID", i), "ID", "unique", "")
		}
		seen[item.ID] = true
	}
}

// Validate checks the receipt fields the view layer may set freely
func (r Receipt) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid receipt: %w", err)
	}
	return nil
}
