package cli

import (
	"fmt"
	"io"
	"time"

	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader(header)
	return table
}

// renderKV prints a two-column field/value table.
func renderKV(w io.Writer, rows [][2]string) {
	table := newTable(w, "Field", "Value")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range rows {
		table.Append([]string{row[0], row[1]})
	}
	table.Render()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// tokens formats base units as a token amount.
func tokens(baseUnits decimal.Decimal, decimals uint64) string {
	return farms.ToDecimal(baseUnits, decimals).String()
}

func seconds(v uint64) string {
	if v == 0 {
		return "0s"
	}
	return (time.Duration(v) * time.Second).String()
}

func unixTime(v uint64) string {
	if v == 0 {
		return "-"
	}
	return time.Unix(int64(v), 0).UTC().Format(time.RFC3339)
}

func printSignature(w io.Writer, sig fmt.Stringer) {
	fmt.Fprintf(w, "Signature: %s\n", sig)
}
