package receipt

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/zombor/receipt-builder/internal/storage"
)

var _ = Describe("Workbooks", func() {
	var editor *Editor

	BeforeEach(func() {
		editor = NewEditorWithDeps(storage.NewMemoryStore(), &sequentialIDs{}, &fixedClock{now: time.Now()})
	})

	Describe("ExportXLSX", func() {
		var (
			buf bytes.Buffer
			err error
		)

		BeforeEach(func() {
			buf.Reset()
			editor.AddItem(ItemInput{Name: "Widget", Description: "Blue", Price: 4, Quantity: 2})
			editor.AddItem(ItemInput{Name: "Gadget", Price: 2})
			editor.Update(func(r *Receipt) { r.TaxRate = 10 })
		})

		JustBeforeEach(func() {
			err = editor.ExportXLSX(&buf)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should write the items and totals", func() {
			f, openErr := excelize.OpenReader(&buf)
			Expect(openErr).NotTo(HaveOccurred())
			defer f.Close()

			rows, rowsErr := f.GetRows("Items")
			Expect(rowsErr).NotTo(HaveOccurred())
			Expect(rows[0]).To(Equal([]string{"Name", "Description", "Price", "Quantity", "Amount"}))
			Expect(rows[1]).To(Equal([]string{"Widget", "Blue", "4", "2", "8"}))
			Expect(rows[2][0]).To(Equal("Gadget"))
			Expect(rows).To(HaveLen(3))

			totals, totalsErr := f.GetRows("Totals")
			Expect(totalsErr).NotTo(HaveOccurred())
			Expect(totals).To(Equal([][]string{
				{"Subtotal", "10"},
				{"Discount", "0"},
				{"Tax", "1"},
				{"Total", "11"},
			}))
		})

		It("should import back into the same items", func() {
			other := NewEditorWithDeps(storage.NewMemoryStore(), &sequentialIDs{}, &fixedClock{now: time.Now()})
			Expect(other.ImportFromXLSX(&buf)).To(BeTrue())

			items := other.Receipt().Items
			Expect(items).To(HaveLen(2))
			Expect(items[0].Name).To(Equal("Widget"))
			Expect(items[0].Price).To(Equal(4.0))
			Expect(items[0].Quantity).To(Equal(2.0))
			Expect(items[1].Name).To(Equal("Gadget"))
		})
	})

	Describe("ImportFromXLSX", func() {
		var (
			workbook *bytes.Buffer
			imported bool
		)

		BeforeEach(func() {
			editor.AddItem(ItemInput{Name: "Existing"})

			f := excelize.NewFile()
			defer f.Close()
			rows := [][]interface{}{
				{"Description", "Name", "Price"},
				{"Large", "Coffee", "3.5"},
				{},
				{"", "Muffin", "2"},
			}
			for i, row := range rows {
				cell, cellErr := excelize.CoordinatesToCellName(1, i+1)
				Expect(cellErr).NotTo(HaveOccurred())
				Expect(f.SetSheetRow("Sheet1", cell, &row)).To(Succeed())
			}
			workbook = new(bytes.Buffer)
			Expect(f.Write(workbook)).To(Succeed())
		})

		JustBeforeEach(func() {
			imported = editor.ImportFromXLSX(workbook)
		})

		When("the workbook is valid", func() {
			It("should report success", func() {
				Expect(imported).To(BeTrue())
			})

			It("should replace the items using the header columns", func() {
				items := editor.Receipt().Items
				Expect(items).To(HaveLen(2))
				Expect(items[0].Name).To(Equal("Coffee"))
				Expect(items[0].Description).To(Equal("Large"))
				Expect(items[0].Price).To(Equal(3.5))
				Expect(items[1].Name).To(Equal("Muffin"))
				Expect(items[1].Quantity).To(Equal(1.0))
			})
		})

		When("the input is not a workbook", func() {
			BeforeEach(func() {
				workbook = bytes.NewBufferString("Name,Price\nWidget,1")
			})

			It("should report failure", func() {
				Expect(imported).To(BeFalse())
			})

			It("should keep the existing items", func() {
				items := editor.Receipt().Items
				Expect(items).To(HaveLen(1))
				Expect(items[0].Name).To(Equal("Existing"))
			})
		})
	})
})
