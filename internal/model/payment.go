package model

// Payment mirrors a row of the `Pricing` table.  Every booking owns
// exactly one payment; the payment is created with the booking and
// deleted when the booking is cancelled.
//
// Fields:
//  PaymentID   – primary key, generated on insert.
//  PaymentType – free text such as "UPI" or "Credit Card".
//  IsDone      – whether the payment has been settled.
//  Price       – gross amount.
//  Discount    – percentage in [0, 100].
type Payment struct {
    PaymentID   int64   `json:"PaymentID"`   // Pricing.PaymentID
    PaymentType string  `json:"PaymentType"` // Pricing.PaymentType
    IsDone      bool    `json:"isDone"`      // Pricing.isDone
    Price       float64 `json:"price"`       // Pricing.price
    Discount    float64 `json:"discount"`    // Pricing.discount
}

// FinalAmount is the price after discount.
func (p Payment) FinalAmount() float64 {
    return p.Price * (1 - p.Discount/100)
}

// MaxDiscount is the upper bound of a discount percentage.
const MaxDiscount = 100.0

// ValidDiscount reports whether d is a percentage in [0, 100].
func ValidDiscount(d float64) bool { return d >= 0 && d <= MaxDiscount }
