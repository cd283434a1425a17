package receipt

import "time"

// DiscountType selects how Receipt.Discount is applied
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountAmount     DiscountType = "amount"
)

const (
	dateLayout           = "2006-01-02"
	defaultTheme         = "modern"
	defaultPaymentMethod = "cash"
)

// Details identifies a receipt
type Details struct {
	Number  string  `json:"number"`
	Date    string  `json:"date" validate:"datetime=2006-01-02"`
	DueDate *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
}

// Shop is the issuing business
type Shop struct {
	Name    string  `json:"name"`
	Logo    *string `json:"logo"` // image data URL
	Address string  `json:"address"`
	Phone   string  `json:"phone"`
	Email   string  `json:"email"`
	Website string  `json:"website"`
}

// Customer is the billed party
type Customer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Footer controls the text printed below the totals
type Footer struct {
	Text            string `json:"text"`
	ThankyouMessage bool   `json:"thankyouMessage"`
	ShowPoweredBy   bool   `json:"showPoweredBy"`
}

// LineItem is one billable entry on a receipt
type LineItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    float64 `json:"quantity"`
	Image       *string `json:"image"` // image data URL
}

// Amount returns price × quantity
func (i LineItem) Amount() float64 {
	return i.Price * i.Quantity
}

// Receipt is the document being authored
type Receipt struct {
	ID             string       `json:"id,omitempty"` // assigned on first save
	ReceiptDetails Details      `json:"receiptDetails"`
	Shop           Shop         `json:"shop"`
	Customer       Customer     `json:"customer"`
	Items          []LineItem   `json:"items"`
	TaxRate        float64      `json:"taxRate" validate:"gte=0"`
	Discount       float64      `json:"discount" validate:"gte=0"`
	DiscountType   DiscountType `json:"discountType" validate:"oneof=percentage amount"`
	Notes          string       `json:"notes"`
	Theme          string       `json:"theme"`
	PaymentMethod  string       `json:"paymentMethod"`
	Footer         Footer       `json:"footer"`
}

// New returns a receipt with default values, dated on the UTC day of now
func New(now time.Time) Receipt {
	return Receipt{
		ReceiptDetails: Details{
			Date: now.UTC().Format(dateLayout),
		},
		Items:         []LineItem{},
		DiscountType:  DiscountPercentage,
		Theme:         defaultTheme,
		PaymentMethod: defaultPaymentMethod,
		Footer: Footer{
			ThankyouMessage: true,
		},
	}
}

// Subtotal is the sum of price × quantity over all items
func (r Receipt) Subtotal() float64 {
	var total float64
	for _, item := range r.Items {
		total += item.Amount()
	}
	return total
}

// DiscountValue is the discount expressed as an amount
func (r Receipt) DiscountValue() float64 {
	if r.DiscountType == DiscountPercentage {
		return r.Discount / 100 * r.Subtotal()
	}
	return r.Discount
}

// TaxValue is the tax charged on the discounted subtotal
func (r Receipt) TaxValue() float64 {
	return r.TaxRate / 100 * (r.Subtotal() - r.DiscountValue())
}

// Total is subtotal - discount + tax
func (r Receipt) Total() float64 {
	return r.Subtotal() - r.DiscountValue() + r.TaxValue()
}

// Clone returns a deep copy of r
func (r Receipt) Clone() Receipt {
	c := r
	c.ReceiptDetails.DueDate = cloneString(r.ReceiptDetails.DueDate)
	c.Shop.Logo = cloneString(r.Shop.Logo)
	c.Items = make([]LineItem, len(r.Items))
	for i, item := range r.Items {
		item.Image = cloneString(item.Image)
		c.Items[i] = item
	}
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Snapshot is a receipt with its totals frozen at save time
type Snapshot struct {
	Receipt
	Subtotal      float64 `json:"subtotal"`
	DiscountValue float64 `json:"discountValue"`
	TaxValue      float64 `json:"taxValue"`
	Total         float64 `json:"total"`
}

// NewSnapshot copies r and computes its totals
func NewSnapshot(r Receipt) Snapshot {
	return Snapshot{
		Receipt:       r.Clone(),
		Subtotal:      r.Subtotal(),
		DiscountValue: r.DiscountValue(),
		TaxValue:      r.TaxValue(),
		Total:         r.Total(),
	}
}
