package receipt

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Receipt", func() {
	var r Receipt

	BeforeEach(func() {
		r = New(time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC))
		r.Items = []LineItem{
			{ID: "a", Price: 10, Quantity: 3},
			{ID: "b", Price: 2.5, Quantity: 4},
		}
	})

	Describe("Subtotal", func() {
		It("should sum price times quantity", func() {
			Expect(r.Subtotal()).To(Equal(40.0))
		})

		When("there are no items", func() {
			BeforeEach(func() {
				r.Items = nil
				r.TaxRate = 10
			})

			It("should be zero along with every other total", func() {
				Expect(r.Subtotal()).To(BeZero())
				Expect(r.DiscountValue()).To(BeZero())
				Expect(r.TaxValue()).To(BeZero())
				Expect(r.Total()).To(BeZero())
			})

			When("an amount discount is set", func() {
				It("should go negative", func() {
					r.Discount = 5
					r.DiscountType = DiscountAmount
					Expect(r.Subtotal()).To(BeZero())
					Expect(r.TaxValue()).To(BeNumerically("~", -0.5, 1e-9))
					Expect(r.Total()).To(BeNumerically("~", -5.5, 1e-9))
				})
			})
		})
	})

	Describe("DiscountValue", func() {
		BeforeEach(func() {
			r.Discount = 25
		})

		When("the discount is a percentage", func() {
			It("should take that share of the subtotal", func() {
				r.DiscountType = DiscountPercentage
				Expect(r.DiscountValue()).To(Equal(10.0))
			})
		})

		When("the discount is an amount", func() {
			It("should use the discount verbatim", func() {
				r.DiscountType = DiscountAmount
				Expect(r.DiscountValue()).To(Equal(25.0))
			})
		})
	})

	Describe("TaxValue and Total", func() {
		It("should tax the discounted subtotal", func() {
			r.Discount = 10
			r.DiscountType = DiscountAmount
			r.TaxRate = 7
			Expect(r.TaxValue()).To(BeNumerically("~", 2.1, 1e-9))
			Expect(r.Total()).To(BeNumerically("~", 32.1, 1e-9))
		})

		It("should equal the subtotal with no tax or discount", func() {
			Expect(r.TaxValue()).To(BeZero())
			Expect(r.Total()).To(Equal(r.Subtotal()))
		})
	})

	Describe("New", func() {
		It("should date the receipt on the UTC day", func() {
			local := time.FixedZone("UTC+7", 7*60*60)
			fresh := New(time.Date(2024, 1, 16, 3, 0, 0, 0, local))
			Expect(fresh.ReceiptDetails.Date).To(Equal("2024-01-15"))
		})
	})

	Describe("Clone", func() {
		It("should not share items or images", func() {
			r.Items[0].Image = strPtr("img")
			r.Shop.Logo = strPtr("logo")
			c := r.Clone()
			c.Items[0].Price = 99
			*c.Items[0].Image = "other"
			*c.Shop.Logo = "other"
			Expect(r.Items[0].Price).To(Equal(10.0))
			Expect(*r.Items[0].Image).To(Equal("img"))
			Expect(*r.Shop.Logo).To(Equal("logo"))
		})
	})

	Describe("NewSnapshot", func() {
		It("should freeze the totals", func() {
			r.TaxRate = 10
			s := NewSnapshot(r)
			r.Items = nil
			Expect(s.Subtotal).To(Equal(40.0))
			Expect(s.TaxValue).To(Equal(4.0))
			Expect(s.Total).To(Equal(44.0))
			Expect(s.Items).To(HaveLen(2))
		})
	})

	Describe("Validate", func() {
		It("should accept a default receipt", func() {
			Expect(r.Validate()).To(Succeed())
		})

		It("should reject a negative tax rate", func() {
			r.TaxRate = -1
			Expect(r.Validate()).To(MatchError(ContainSubstring("TaxRate")))
		})

		It("should reject an unknown discount type", func() {
			r.DiscountType = "coupon"
			Expect(r.Validate()).To(MatchError(ContainSubstring("DiscountType")))
		})

		It("should reject two items with the same ID", func() {
			r.Items[1].ID = "a"
			Expect(r.Validate()).To(MatchError(ContainSubstring("unique")))
		})

		It("should accept items without an ID", func() {
			r.Items[0].ID = ""
			r.Items[1].ID = ""
			Expect(r.Validate()).To(Succeed())
		})

		It("should reject a malformed due date", func() {
			r.ReceiptDetails.DueDate = strPtr("15/01/2024")
			Expect(r.Validate()).To(MatchError(ContainSubstring("DueDate")))
		})
	})
})
