package receipt

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-builder/internal/storage"
)

var _ = Describe("ImportFromCSV", func() {
	var (
		editor   *Editor
		csvData  string
		imported bool
	)

	BeforeEach(func() {
		editor = NewEditorWithDeps(storage.NewMemoryStore(), &sequentialIDs{}, &fixedClock{now: time.Now()})
		editor.AddItem(ItemInput{Name: "Existing", Price: 100})
	})

	JustBeforeEach(func() {
		imported = editor.ImportFromCSV(csvData)
	})

	When("the first line is a Name,Price header", func() {
		BeforeEach(func() {
			csvData = "Name,Price\nWidget,10.5\nGadget,abc,2"
		})

		It("should report success", func() {
			Expect(imported).To(BeTrue())
		})

		It("should skip the header and map columns by name", func() {
			items := editor.Receipt().Items
			Expect(items).To(HaveLen(2))
			Expect(items[0].Name).To(Equal("Widget"))
			Expect(items[0].Price).To(Equal(10.5))
			Expect(items[0].Quantity).To(Equal(1.0))
			Expect(items[1].Name).To(Equal("Gadget"))
			Expect(items[1].Price).To(BeZero())
			Expect(items[1].Quantity).To(Equal(1.0))
		})
	})

	When("there is no header", func() {
		BeforeEach(func() {
			csvData = "Coffee,Large,3.25,2\nTea,,2\n,Mystery,1.5,0\r\n"
		})

		It("should map name, description, price and quantity by position", func() {
			items := editor.Receipt().Items
			Expect(items).To(HaveLen(3))
			Expect(items[0]).To(Equal(LineItem{ID: "item-2", Name: "Coffee", Description: "Large", Price: 3.25, Quantity: 2}))
			Expect(items[1]).To(Equal(LineItem{ID: "item-3", Name: "Tea", Description: "", Price: 2, Quantity: 1}))
			Expect(items[2]).To(Equal(LineItem{ID: "item-4", Name: "Unnamed Item", Description: "Mystery", Price: 1.5, Quantity: 1}))
		})

		It("should update the subtotal", func() {
			Expect(editor.Subtotal()).To(Equal(10.0))
		})
	})

	When("the header lists every column", func() {
		BeforeEach(func() {
			csvData = "Qty,Item Name,Unit Price,Description\n3,Bolt,0.25,M6\n"
		})

		It("should follow the header order", func() {
			items := editor.Receipt().Items
			Expect(items).To(HaveLen(1))
			Expect(items[0].Name).To(Equal("Bolt"))
			Expect(items[0].Description).To(Equal("M6"))
			Expect(items[0].Price).To(Equal(0.25))
			Expect(items[0].Quantity).To(Equal(3.0))
		})
	})

	When("a field is quoted", func() {
		BeforeEach(func() {
			csvData = `"Acme, Inc.",Desc,5,1`
		})

		It("should keep commas inside quotes", func() {
			items := editor.Receipt().Items
			Expect(items).To(HaveLen(1))
			Expect(items[0].Name).To(Equal("Acme, Inc."))
			Expect(items[0].Description).To(Equal("Desc"))
			Expect(items[0].Price).To(Equal(5.0))
		})
	})

	When("a quoted field contains doubled quotes", func() {
		BeforeEach(func() {
			csvData = `"12"" Pizza",Large,9`
		})

		It("should unescape them", func() {
			Expect(editor.Receipt().Items[0].Name).To(Equal(`12" Pizza`))
		})
	})

	When("numbers have trailing text", func() {
		BeforeEach(func() {
			csvData = "Rope,10m,4.5kg,2.9 pcs"
		})

		It("should read the leading number", func() {
			items := editor.Receipt().Items
			Expect(items[0].Price).To(Equal(4.5))
			Expect(items[0].Quantity).To(Equal(2.0))
		})
	})

	When("rows have a single field", func() {
		BeforeEach(func() {
			csvData = "lonely\nPen,Blue,1"
		})

		It("should skip them", func() {
			items := editor.Receipt().Items
			Expect(items).To(HaveLen(1))
			Expect(items[0].Name).To(Equal("Pen"))
		})
	})

	When("the input is empty", func() {
		BeforeEach(func() {
			csvData = ""
		})

		It("should report failure", func() {
			Expect(imported).To(BeFalse())
		})

		It("should leave the items empty", func() {
			Expect(editor.Receipt().Items).To(BeEmpty())
		})
	})

	When("every line is blank", func() {
		BeforeEach(func() {
			csvData = "\n   \n\t\n"
		})

		It("should report failure", func() {
			Expect(imported).To(BeFalse())
		})

		// Existing items are discarded before parsing and not restored.
		It("should discard the existing items", func() {
			Expect(editor.Receipt().Items).To(BeEmpty())
		})
	})

	When("only a header is given", func() {
		BeforeEach(func() {
			csvData = "name,description,price,quantity\n"
		})

		It("should report failure", func() {
			Expect(imported).To(BeFalse())
		})
	})
})

var _ = Describe("splitCSVLine", func() {
	It("should toggle quoting on each quote", func() {
		Expect(splitCSVLine(`a,"b,c",d`)).To(Equal([]string{"a", "b,c", "d"}))
	})

	It("should trim fields", func() {
		Expect(splitCSVLine(` a , b ,`)).To(Equal([]string{"a", "b", ""}))
	})

	It("should keep an unterminated quote open to the end", func() {
		Expect(splitCSVLine(`"a,b`)).To(Equal([]string{"a,b"}))
	})
})
