package extract

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Total", func() {
	DescribeTable("finds totals",
		func(text, expected string) {
			value, found := Total(text).Get()
			Expect(found).To(BeTrue())
			Expect(value).To(Equal(expected))
		},
		Entry("total keyword beats subtotal", "Subtotal: 10.00 Total Due: $45.50", "45.50"),
		Entry("keyword match is case insensitive", "GRAND TOTAL $ 120.00", "120.00"),
		Entry("amount without cents after a keyword", "Total: 45", "45"),
		Entry("amount due", "Amount due: 99.10\nline 500.00", "99.10"),
		Entry("balance due", "balance   due ... $7.25", "7.25"),
		Entry("comma decimal separator", "Total 12,50", "12.50"),
		Entry("thousands separator is misread", "Total 1,234.56", "1.23"),
		Entry("subtotal when no total keyword", "Subtotal 30.00 tax 2.00", "30.00"),
		Entry("sub total spelled apart matches the total keyword", "Sub Total 15.00 shipping 80.00", "15.00"),
		Entry("largest amount fallback", "line 12.00 line 99.99 line 5.00", "99.99"),
		Entry("fallback ignores integers", "qty 1000 price 3.50", "3.50"),
		Entry("keyword glued to a non-ASCII letter is not a keyword", "étotal 7.00 other 8.00", "8.00"),
		Entry("keyword glued to a digit is not a keyword", "total5.00 fee 2.00", "5.00"),
		Entry("dollar sign directly after the keyword", "TOTAL$12.50", "12.50"),
		Entry("keyword after accented word", "montant dû total: 9.90", "9.90"),
		Entry("amount too large for a float wins the fallback", "fee 5.00 ref "+strings.Repeat("9", 400)+".00", strings.Repeat("9", 400)+".00"),
	)

	DescribeTable("misses",
		func(text string) {
			Expect(Total(text)).To(Equal(Miss))
		},
		Entry("no numbers", "no numbers here"),
		Entry("empty text", ""),
		Entry("keyword without any amount", "Total: pending, see attached"),
	)
})
