// orc-meta prints the metadata of ORC files: file summary, schema, stripe
// layout and per-stripe column encodings.
//
// Usage:
//
//	orc-meta [-encodings] file.orc ...
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	orc "github.com/orc-go/orc-go"
)

var encodings = flag.Bool("encodings", false, "print per-stripe column encodings")

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: orc-meta [-encodings] file.orc ...")
		os.Exit(2)
	}
	for _, path := range flag.Args() {
		if err := printMetadata(path); err != nil {
			fmt.Fprintf(os.Stderr, "orc-meta: %s: %v\n", path, err)
			os.Exit(1)
		}
	}
}

func printMetadata(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	stat, err := file.Stat()
	if err != nil {
		return err
	}
	f, err := orc.OpenFile(file, stat.Size())
	if err != nil {
		return err
	}

	fmt.Printf("file: %s\n", path)
	fmt.Printf("rows: %d\n", f.NumRows())
	fmt.Printf("compression: %s\n", f.Compression())
	fmt.Printf("writer version: %d\n", f.WriterVersion())
	fmt.Printf("schema: %s\n\n", f.Schema())

	if metadata := f.Metadata(); len(metadata) > 0 {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Key", "Value")
		for _, item := range metadata {
			table.Append([]string{item.Name, string(item.Value)})
		}
		table.Render()
		fmt.Println()
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Stripe", "Offset", "Index", "Data", "Footer", "Rows", "Timezone")
	for i := 0; i < f.NumStripes(); i++ {
		stripe, err := f.Stripe(i)
		if err != nil {
			return err
		}
		info := f.StripeInfo(i)
		tz := "UTC"
		if loc := stripe.WriterTimezone(); loc != nil {
			tz = loc.String()
		}
		table.Append([]string{
			strconv.Itoa(i),
			strconv.FormatUint(info.Offset, 10),
			strconv.FormatUint(info.IndexLength, 10),
			strconv.FormatUint(info.DataLength, 10),
			strconv.FormatUint(info.FooterLength, 10),
			strconv.FormatUint(info.NumberOfRows, 10),
			tz,
		})
	}
	table.Render()

	if *encodings {
		for i := 0; i < f.NumStripes(); i++ {
			stripe, err := f.Stripe(i)
			if err != nil {
				return err
			}
			fmt.Printf("\nstripe %d column encodings:\n", i)
			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Column", "Encoding", "Dictionary Size")
			for col, encoding := range stripe.Footer().Columns {
				table.Append([]string{
					strconv.Itoa(col),
					encoding.Kind.String(),
					strconv.FormatUint(uint64(encoding.DictionarySize), 10),
				})
			}
			table.Render()
		}
	}
	return nil
}
